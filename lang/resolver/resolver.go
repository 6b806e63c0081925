// Package resolver computes the label and variable annotations of a parsed
// program: the label→index map of each instruction sequence, the maximum
// label and work-variable indexes that seed the expander's fresh-name
// allocators, and the set of input variables referenced by each sequence.
// It also verifies that every jump target is defined.
package resolver

import (
	"fmt"
	"go/scanner"
	"go/token"
	"sort"

	"github.com/semulang/semu/lang/prog"
)

// Resolve annotates the program's main body and every function body in
// place and validates label references. The error, if non-nil, is a
// scanner.ErrorList.
func Resolve(p *prog.Program) error {
	var el scanner.ErrorList
	resolveCode(&p.Code, "", &el)
	for _, f := range p.Functions {
		resolveCode(&f.Code, f.Name, &el)
	}
	el.Sort()
	return el.Err()
}

func resolveCode(c *prog.Code, fname string, el *scanner.ErrorList) {
	c.LabelMap = make(map[prog.Label]int)
	c.MaxLabelIndex = 0
	c.MaxWorkVarIndex = 0

	inputs := make(map[int]bool)

	// first pass: label definitions, earliest occurrence wins.
	for i, in := range c.Instructions {
		if in.Label == "" {
			continue
		}
		if _, ok := c.LabelMap[in.Label]; !ok {
			c.LabelMap[in.Label] = i
		}
		noteLabel(c, in.Label)
	}

	// second pass: references.
	for i, in := range c.Instructions {
		noteVar(c, inputs, in.Target)

		if l, ok := in.JumpLabel(); ok {
			noteLabel(c, l)
			if !l.IsExit() {
				if _, defined := c.LabelMap[l]; !defined {
					el.Add(token.Position{}, posMsg(fname, i, fmt.Sprintf("jump to undefined label %s", l)))
				}
			}
		}

		if src, ok, err := in.SourceVar(); err == nil && ok {
			noteVar(c, inputs, src)
		}

		if in.Op == prog.Quote {
			// variables named in the argument expression are read from the
			// calling frame, so they count toward this sequence's inputs and
			// work-variable maximum.
			terms, err := prog.ParseArgTerms(in.FunctionArgs())
			if err != nil {
				continue // reported by the parser
			}
			prog.WalkArgVars(terms, func(v prog.VarRef) {
				noteQuoteVar(c, inputs, v)
			})
		}
	}

	c.InputVars = make([]int, 0, len(inputs))
	for n := range inputs {
		c.InputVars = append(c.InputVars, n)
	}
	sort.Ints(c.InputVars)
}

func noteLabel(c *prog.Code, l prog.Label) {
	if n := l.Index(); n > c.MaxLabelIndex {
		c.MaxLabelIndex = n
	}
}

func noteVar(c *prog.Code, inputs map[int]bool, v prog.VarRef) {
	switch v.Kind {
	case prog.VarZ:
		if v.Index > c.MaxWorkVarIndex {
			c.MaxWorkVarIndex = v.Index
		}
	case prog.VarX:
		inputs[v.Index] = true
	}
}

// noteQuoteVar records a variable referenced inside a functionArguments
// expression. Both z and x indexes bound the work-variable maximum there,
// so that frames sized from it cover every name the expression can touch.
func noteQuoteVar(c *prog.Code, inputs map[int]bool, v prog.VarRef) {
	noteVar(c, inputs, v)
	if v.Kind == prog.VarX && v.Index > c.MaxWorkVarIndex {
		c.MaxWorkVarIndex = v.Index
	}
}

func posMsg(fname string, idx int, msg string) string {
	if fname != "" {
		return fmt.Sprintf("function %s: instruction #%d: %s", fname, idx+1, msg)
	}
	return fmt.Sprintf("instruction #%d: %s", idx+1, msg)
}
