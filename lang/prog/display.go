package prog

import (
	"fmt"
	"sort"
	"strings"
)

// Display renders the program in its human-readable listing form:
//
//	Program: NAME
//	Inputs: x1, x2
//	Labels: L1, L2
//	#1 (B) [L1   ] IF x1 != 0 GOTO L2 (2)
//	#2 (S) [     ] y <- 3 (21)
//
// Lines produced by the expander carry an ancestry suffix pointing at the
// 1-based index of the synthetic line they derive from:
//
//	#3 (B) [     ] z5 <- z5 + 1 (1) <<< #2
func Display(p *Program) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Program: %s\n", p.Name)
	writeHeader(&b, "Inputs", displayInputs(p.InputVars))
	writeHeader(&b, "Labels", displayLabels(&p.Code))
	for _, in := range p.Instructions {
		b.WriteString(DisplayLine(in))
		b.WriteByte('\n')
	}
	return b.String()
}

// DisplayLine renders a single instruction listing line.
func DisplayLine(in *Instruction) string {
	kind := "B"
	if !in.Op.Basic() {
		kind = "S"
	}
	line := fmt.Sprintf("#%d (%s) [%-5s] %s (%d)", in.Index, kind, in.Label, in.Command(), in.Cost())
	if in.Origin > 0 {
		line += fmt.Sprintf(" <<< #%d", in.Origin)
	}
	return line
}

func writeHeader(b *strings.Builder, name, val string) {
	if val == "" {
		fmt.Fprintf(b, "%s:\n", name)
		return
	}
	fmt.Fprintf(b, "%s: %s\n", name, val)
}

func displayInputs(vars []int) string {
	names := make([]string, len(vars))
	for i, n := range vars {
		names[i] = InputVar(n).String()
	}
	return strings.Join(names, ", ")
}

// displayLabels lists the defined labels in order of definition.
func displayLabels(c *Code) string {
	type def struct {
		label Label
		index int
	}
	defs := make([]def, 0, len(c.LabelMap))
	for l, idx := range c.LabelMap {
		defs = append(defs, def{l, idx})
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].index != defs[j].index {
			return defs[i].index < defs[j].index
		}
		return defs[i].label < defs[j].label
	})
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = string(d.label)
	}
	return strings.Join(names, ", ")
}
