package prog

// Code is an instruction sequence together with the annotations computed by
// the resolver. Program bodies and function bodies share this shape.
type Code struct {
	Instructions []*Instruction

	// LabelMap maps each defined label to the 0-based index of the earliest
	// instruction bearing it.
	LabelMap map[Label]int
	// MaxLabelIndex is the largest n over all L{n} labels defined or
	// referenced in the sequence.
	MaxLabelIndex int
	// MaxWorkVarIndex is the largest n over all z{n} references in the
	// sequence, including variable arguments and variables named inside
	// functionArguments expressions.
	MaxWorkVarIndex int
	// InputVars is the sorted set of x{n} indexes referenced by the
	// sequence, including inside functionArguments expressions.
	InputVars []int
}

// Target resolves a jump label to an instruction index: EXIT and labels
// past the sequence resolve to len(Instructions). An undefined label
// resolves to from+1, falling through.
func (c *Code) Target(l Label, from int) int {
	if l.IsExit() {
		return len(c.Instructions)
	}
	if idx, ok := c.LabelMap[l]; ok {
		return idx
	}
	return from + 1
}

// Function is a named sub-program. It shares the variable naming scheme of
// the main program but executes in an isolated frame.
type Function struct {
	Name       string
	UserString string
	Code
}

// Program is a fully parsed and resolved document. It is immutable after
// construction and safely shareable by reference.
type Program struct {
	Name string
	Code
	Functions []*Function
}

// Function returns the named user-defined function, or nil.
func (p *Program) Function(name string) *Function {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasQuote reports whether any QUOTE instruction appears in the main body
// or in any function body.
func (p *Program) HasQuote() bool {
	if hasQuote(p.Instructions) {
		return true
	}
	for _, f := range p.Functions {
		if hasQuote(f.Instructions) {
			return true
		}
	}
	return false
}

func hasQuote(ins []*Instruction) bool {
	for _, in := range ins {
		if in.Op == Quote {
			return true
		}
	}
	return false
}
