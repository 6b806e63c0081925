// Package prog defines the program model of the language: variables,
// labels, basic and synthetic instructions, function-argument expression
// trees and the Program and Function containers, along with the static
// cycle-cost model and the human-readable listing form. Programs are
// immutable once resolved and safely shareable by reference.
package prog
