package prog

import (
	"fmt"
	"strconv"
)

// Argument keys recognized per operation. Key lookup is exact: the document
// format fixes the casing of each key.
const (
	ArgJNZLabel        = "JNZLabel"
	ArgGotoLabel       = "gotoLabel"
	ArgJZLabel         = "JZLabel"
	ArgJEConstantLabel = "JEConstantLabel"
	ArgJEVariableLabel = "JEVariableLabel"
	ArgConstantValue   = "constantValue"
	ArgVariableName    = "variableName"
	ArgAssignedVar     = "assignedVariable"
	ArgFunctionName    = "functionName"
	ArgFunctionArgs    = "functionArguments"
)

// jumpArgKeys maps each jumping operation to the argument key holding its
// target label.
var jumpArgKeys = map[Op]string{
	JumpNotZero:       ArgJNZLabel,
	GotoLabel:         ArgGotoLabel,
	JumpZero:          ArgJZLabel,
	JumpEqualConstant: ArgJEConstantLabel,
	JumpEqualVariable: ArgJEVariableLabel,
}

// Instruction is a single line of a program or function body. Both basic
// and synthetic operations share this shape; Op discriminates.
type Instruction struct {
	Op     Op
	Target VarRef
	Label  Label             // defining label, empty if none
	Args   map[string]string // operation arguments, nil if none

	// Index is the 1-based position of the line in its sequence.
	Index int
	// Origin is 0 for an original line; on lines produced by the expander
	// it is the 1-based index of the synthetic line they derive from.
	Origin int
}

// Arg returns the raw value of the named argument.
func (in *Instruction) Arg(key string) (string, bool) {
	v, ok := in.Args[key]
	return v, ok
}

// JumpArgKey returns the argument key holding the jump target of the
// operation, or "" if the operation does not jump.
func (in *Instruction) JumpArgKey() string { return jumpArgKeys[in.Op] }

// JumpLabel returns the normalized jump target of a jumping instruction.
func (in *Instruction) JumpLabel() (Label, bool) {
	key := in.JumpArgKey()
	if key == "" {
		return "", false
	}
	v, ok := in.Args[key]
	if !ok || v == "" {
		return "", false
	}
	return NormalizeLabel(v), true
}

// ConstantValue returns the integer constant argument of the instruction.
func (in *Instruction) ConstantValue() (int64, error) {
	v, ok := in.Args[ArgConstantValue]
	if !ok {
		return 0, fmt.Errorf("missing argument %s", ArgConstantValue)
	}
	k, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %s: invalid integer %q", ArgConstantValue, v)
	}
	return k, nil
}

// SourceVar returns the source variable of an ASSIGNMENT or the comparison
// variable of a JUMP_EQUAL_VARIABLE. The second return value is false when
// the argument is absent or empty (for ASSIGNMENT this means a zero
// source).
func (in *Instruction) SourceVar() (VarRef, bool, error) {
	key := ArgAssignedVar
	if in.Op == JumpEqualVariable {
		key = ArgVariableName
	}
	v, ok := in.Args[key]
	if !ok || v == "" {
		return VarRef{}, false, nil
	}
	ref, err := ParseVarRef(v)
	if err != nil {
		return VarRef{}, false, err
	}
	return ref, true, nil
}

// FunctionName returns the callee name of a QUOTE instruction.
func (in *Instruction) FunctionName() (string, bool) {
	v, ok := in.Args[ArgFunctionName]
	return v, ok && v != ""
}

// FunctionArgs returns the raw argument expression of a QUOTE instruction.
// An absent argument is the empty expression.
func (in *Instruction) FunctionArgs() string {
	return in.Args[ArgFunctionArgs]
}

// Cost returns the static cycle cost of the instruction. The constants for
// synthetic operations equal the summed cost of their depth-1 expansion, so
// total cost is preserved across levels.
func (in *Instruction) Cost() uint64 {
	switch in.Op {
	case Increase, Decrease, Neutral:
		return 1
	case JumpNotZero:
		return 2
	case ZeroVariable, Assignment:
		return 17
	case ConstantAssignment:
		return 17 + in.costConstant() + 1
	case GotoLabel:
		return 3
	case JumpZero:
		return 6
	case JumpEqualConstant:
		return 17 + in.costConstant() + 2 + 3 + 1
	case JumpEqualVariable:
		return 49
	case Quote:
		return 1
	}
	return 0
}

// costConstant is the k term of the constant-dependent cost formulas,
// clamped at zero for negative constants.
func (in *Instruction) costConstant() uint64 {
	k, err := in.ConstantValue()
	if err != nil || k < 0 {
		return 0
	}
	return uint64(k)
}

// Command renders the human-readable command text of the instruction, e.g.
// "y <- y + 1" or "IF x1 != 0 GOTO L2".
func (in *Instruction) Command() string {
	t := in.Target.String()
	switch in.Op {
	case Increase:
		return fmt.Sprintf("%s <- %s + 1", t, t)
	case Decrease:
		return fmt.Sprintf("%s <- %s - 1", t, t)
	case Neutral:
		return fmt.Sprintf("%s <- %s", t, t)
	case JumpNotZero:
		l, _ := in.JumpLabel()
		return fmt.Sprintf("IF %s != 0 GOTO %s", t, l)
	case ZeroVariable:
		return fmt.Sprintf("%s <- 0", t)
	case Assignment:
		src, ok, err := in.SourceVar()
		if err != nil || !ok {
			return fmt.Sprintf("%s <- 0", t)
		}
		return fmt.Sprintf("%s <- %s", t, src)
	case ConstantAssignment:
		k, _ := in.ConstantValue()
		return fmt.Sprintf("%s <- %d", t, k)
	case GotoLabel:
		l, _ := in.JumpLabel()
		return fmt.Sprintf("GOTO %s", l)
	case JumpZero:
		l, _ := in.JumpLabel()
		return fmt.Sprintf("IF %s = 0 GOTO %s", t, l)
	case JumpEqualConstant:
		k, _ := in.ConstantValue()
		l, _ := in.JumpLabel()
		return fmt.Sprintf("IF %s = %d GOTO %s", t, k, l)
	case JumpEqualVariable:
		src, _, _ := in.SourceVar()
		l, _ := in.JumpLabel()
		return fmt.Sprintf("IF %s = %s GOTO %s", t, src, l)
	case Quote:
		name, _ := in.FunctionName()
		if args := in.FunctionArgs(); args != "" {
			return fmt.Sprintf("%s <- (%s,%s)", t, name, args)
		}
		return fmt.Sprintf("%s <- (%s)", t, name)
	}
	return in.Op.String()
}

// Clone returns a deep copy of the instruction.
func (in *Instruction) Clone() *Instruction {
	c := *in
	if in.Args != nil {
		c.Args = make(map[string]string, len(in.Args))
		for k, v := range in.Args {
			c.Args[k] = v
		}
	}
	return &c
}
