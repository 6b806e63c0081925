// Package expand rewrites a program one level: every synthetic instruction
// of the main body is replaced by an observably-equivalent sequence of
// basic instructions. Fresh labels and work variables are drawn past the
// program's resolved maxima, and every emitted line records the 1-based
// index of the synthetic line it derives from. The static costs of each
// emitted sequence sum exactly to the synthetic instruction's cost
// constant, so total static cost is preserved across levels.
package expand

import (
	"errors"
	"fmt"

	"github.com/semulang/semu/lang/prog"
	"github.com/semulang/semu/lang/resolver"
)

// ErrQuoteExpansion is returned when depth 1 is requested on a program
// containing QUOTE instructions: no expansion is defined for function
// composition, so such programs only support depth 0.
var ErrQuoteExpansion = errors.New("programs with QUOTE instructions cannot be expanded")

// MaxDepth returns the maximum expansion depth supported by the program: 0
// when any QUOTE appears, 1 otherwise.
func MaxDepth(p *prog.Program) int {
	if p.HasQuote() {
		return 0
	}
	return 1
}

// Expand returns the program at the requested depth. Depth 0 returns the
// program unchanged (programs are immutable, sharing is safe). Depth 1
// returns a new program whose main body contains only basic instructions.
func Expand(p *prog.Program, depth int) (*prog.Program, error) {
	switch depth {
	case 0:
		return p, nil
	case 1:
		if p.HasQuote() {
			return nil, ErrQuoteExpansion
		}
		return expandProgram(p)
	default:
		return nil, fmt.Errorf("unsupported expansion depth %d", depth)
	}
}

type expander struct {
	nextLabel int
	nextVar   int
	out       []*prog.Instruction
}

func expandProgram(p *prog.Program) (*prog.Program, error) {
	e := &expander{
		nextLabel: p.MaxLabelIndex + 1,
		nextVar:   p.MaxWorkVarIndex + 1,
	}
	for _, in := range p.Instructions {
		if in.Op.Basic() {
			e.emitExisting(in)
			continue
		}
		if err := e.expandSynthetic(in); err != nil {
			return nil, err
		}
	}
	for i, in := range e.out {
		in.Index = i + 1
	}

	np := &prog.Program{Name: p.Name, Functions: p.Functions}
	np.Instructions = e.out
	if err := resolver.Resolve(np); err != nil {
		return nil, err
	}
	return np, nil
}

// freshVar allocates the next unused work variable.
func (e *expander) freshVar() prog.VarRef {
	v := prog.WorkVar(e.nextVar)
	e.nextVar++
	return v
}

// freshLabel allocates the next unused L{n} label.
func (e *expander) freshLabel() prog.Label {
	l := prog.FreshLabel(e.nextLabel)
	e.nextLabel++
	return l
}

// headLabel returns the original line's defining label when present so
// that jumps to the synthetic line land on the first emitted instruction,
// otherwise a fresh label.
func (e *expander) headLabel(in *prog.Instruction) prog.Label {
	if in.Label != "" {
		return in.Label
	}
	return e.freshLabel()
}

func (e *expander) emitExisting(in *prog.Instruction) {
	e.out = append(e.out, in.Clone())
}

func (e *expander) expandSynthetic(in *prog.Instruction) error {
	switch in.Op {
	case prog.ZeroVariable:
		e.zeroVariable(in, in.Target)

	case prog.Assignment:
		src, ok, err := in.SourceVar()
		if err != nil {
			return err
		}
		if !ok {
			e.zeroVariable(in, in.Target)
			break
		}
		if src == in.Target {
			// v <- v: copy into a discarded temp, preserving v, so the cost
			// model still charges a full copy.
			e.copyInto(in, e.freshVar(), src, e.headLabel(in))
			break
		}
		e.copyInto(in, in.Target, src, e.headLabel(in))

	case prog.ConstantAssignment:
		k, err := in.ConstantValue()
		if err != nil {
			return err
		}
		e.zeroVariable(in, in.Target)
		for i := int64(0); i < k; i++ {
			e.emit(in, prog.Increase, in.Target, "")
		}
		e.emit(in, prog.Neutral, in.Target, "")

	case prog.GotoLabel:
		l, _ := in.JumpLabel()
		g := e.freshVar()
		e.emitLabeled(in, prog.Increase, g, in.Label, "")
		e.emit(in, prog.JumpNotZero, g, l)

	case prog.JumpZero:
		l, _ := in.JumpLabel()
		skip := e.freshLabel()
		g := e.freshVar()
		e.emitLabeled(in, prog.JumpNotZero, in.Target, in.Label, skip)
		e.emit(in, prog.Increase, g, "")
		e.emit(in, prog.JumpNotZero, g, l)
		e.emitLabeled(in, prog.Neutral, in.Target, skip, "")

	case prog.JumpEqualConstant:
		k, err := in.ConstantValue()
		if err != nil {
			return err
		}
		l, _ := in.JumpLabel()
		t1 := e.freshVar()
		e.copyInto(in, t1, in.Target, e.headLabel(in))
		for i := int64(0); i < k; i++ {
			e.emit(in, prog.Decrease, t1, "")
		}
		skip := e.freshLabel()
		g := e.freshVar()
		e.emit(in, prog.JumpNotZero, t1, skip)
		e.emit(in, prog.Increase, g, "")
		e.emit(in, prog.JumpNotZero, g, l)
		e.emitLabeled(in, prog.Neutral, in.Target, skip, "")

	case prog.JumpEqualVariable:
		src, ok, err := in.SourceVar()
		if err != nil || !ok {
			return fmt.Errorf("instruction #%d: missing %s argument", in.Index, prog.ArgVariableName)
		}
		l, _ := in.JumpLabel()
		t1, t2 := e.freshVar(), e.freshVar()
		e.copyInto(in, t1, in.Target, e.headLabel(in))
		e.copyInto(in, t2, src, e.freshLabel())
		e.equalLoop(in, t1, t2, l)

	default:
		return fmt.Errorf("instruction #%d: %w", in.Index, ErrQuoteExpansion)
	}
	return nil
}

// zeroVariable clears v by copying a fresh, known-zero work variable into
// it.
func (e *expander) zeroVariable(in *prog.Instruction, v prog.VarRef) {
	e.copyInto(in, v, e.freshVar(), e.headLabel(in))
}

// copyInto emits the copy primitive: drain dest, then transfer src into
// dest while counting into a temp, and restore src from the temp. The
// sequence costs 17 cycles statically, preserves src and leaves the temp
// at zero.
func (e *expander) copyInto(in *prog.Instruction, dest, src prog.VarRef, head prog.Label) {
	t, g := e.freshVar(), e.freshVar()
	body, check := e.freshLabel(), e.freshLabel()
	rest, done := e.freshLabel(), e.freshLabel()

	e.emitLabeled(in, prog.Decrease, dest, head, "")
	e.emit(in, prog.JumpNotZero, dest, head)
	e.emit(in, prog.Increase, g, "")
	e.emit(in, prog.JumpNotZero, g, check)
	e.emitLabeled(in, prog.Decrease, src, body, "")
	e.emit(in, prog.Increase, dest, "")
	e.emit(in, prog.Increase, t, "")
	e.emitLabeled(in, prog.JumpNotZero, src, check, body)
	e.emit(in, prog.JumpNotZero, g, done)
	e.emitLabeled(in, prog.Decrease, t, rest, "")
	e.emit(in, prog.Increase, src, "")
	e.emitLabeled(in, prog.JumpNotZero, t, done, rest)
}

// equalLoop emits the synchronized decrement loop deciding t1 = t2,
// jumping to l on equality. It consumes both copies.
func (e *expander) equalLoop(in *prog.Instruction, t1, t2 prog.VarRef, l prog.Label) {
	g := e.freshVar()
	deg, cmp := e.freshLabel(), e.freshLabel()
	more, skip := e.freshLabel(), e.freshLabel()

	e.emit(in, prog.Increase, g, "")
	e.emit(in, prog.JumpNotZero, g, cmp)
	e.emitLabeled(in, prog.Decrease, t1, deg, "")
	e.emit(in, prog.Decrease, t2, "")
	e.emitLabeled(in, prog.JumpNotZero, t1, cmp, more)
	e.emit(in, prog.JumpNotZero, t2, skip)
	e.emit(in, prog.JumpNotZero, g, l)
	e.emitLabeled(in, prog.JumpNotZero, t2, more, deg)
	e.emitLabeled(in, prog.Neutral, in.Target, skip, "")
	e.emit(in, prog.Neutral, in.Target, "")
}

// emit appends an unlabeled basic instruction derived from in.
func (e *expander) emit(in *prog.Instruction, op prog.Op, target prog.VarRef, jump prog.Label) {
	e.emitLabeled(in, op, target, "", jump)
}

// emitLabeled appends a basic instruction derived from in, bearing the
// given defining label.
func (e *expander) emitLabeled(in *prog.Instruction, op prog.Op, target prog.VarRef, label, jump prog.Label) {
	ni := &prog.Instruction{
		Op:     op,
		Target: target,
		Label:  label,
		Origin: in.Index,
	}
	if jump != "" {
		ni.Args = map[string]string{ni.JumpArgKey(): string(jump)}
	}
	e.out = append(e.out, ni)
}
