// Package interp implements the interpreter of the language: a machine
// executes one instruction sequence on one frame, dispatching QUOTE
// instructions to builtin or user-defined functions run on fresh frames.
// Execution is single-threaded and synchronous; cost accounting follows the
// static per-instruction cycle model, with synthetic instructions consumed
// atomically at their full cost.
package interp

import (
	"context"
	"fmt"

	"github.com/semulang/semu/lang/prog"
)

// RunResult is the observable outcome of a run: the output variable, a
// snapshot of every touched variable and the consumed cycles.
type RunResult struct {
	Y         int64
	Variables map[string]int64
	Cycles    uint64
}

// Machine executes one instruction sequence on one frame. It is exclusively
// owned by one goroutine for the duration of a run or between debugger
// steps.
type Machine struct {
	prog  *prog.Program
	code  *prog.Code
	frame *Frame
	opts  Options
	depth int // QUOTE call nesting

	finished bool
	last     *prog.Instruction
}

// NewMachine builds a machine positioned at the first instruction of the
// program's main body.
func NewMachine(p *prog.Program, inputs []int64, opts Options) *Machine {
	return &Machine{
		prog:  p,
		code:  &p.Code,
		frame: NewFrame(&p.Code, inputs),
		opts:  opts,
	}
}

// Frame exposes the machine's current frame.
func (m *Machine) Frame() *Frame { return m.frame }

// SetFrame replaces the machine's frame. The debugger uses it to restore a
// snapshot when stepping backward.
func (m *Machine) SetFrame(fr *Frame) {
	m.frame = fr
	m.finished = fr.pc >= len(m.code.Instructions)
}

// Finished reports whether execution ran past the last instruction.
func (m *Machine) Finished() bool { return m.finished }

// LastInstruction returns the most recently executed instruction, nil
// before the first step.
func (m *Machine) LastInstruction() *prog.Instruction { return m.last }

// Result builds the run result from the current frame.
func (m *Machine) Result() *RunResult {
	return &RunResult{
		Y:         m.frame.Lookup(prog.OutputVar()),
		Variables: m.frame.Snapshot(),
		Cycles:    m.frame.cycles,
	}
}

// Run executes the sequence to termination or error.
func Run(ctx context.Context, p *prog.Program, inputs []int64, opts Options) (*RunResult, error) {
	return NewMachine(p, inputs, opts).Run(ctx)
}

// Run steps the machine until it terminates, the cycle budget is exceeded
// or the context is cancelled.
func (m *Machine) Run(ctx context.Context) (*RunResult, error) {
	for !m.finished {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.Step(ctx); err != nil {
			return nil, err
		}
	}
	return m.Result(), nil
}

// Step executes exactly one instruction. Termination is reached by natural
// fallthrough past the last instruction or a jump to EXIT; stepping a
// finished machine is a no-op.
func (m *Machine) Step(ctx context.Context) error {
	if m.finished {
		return nil
	}
	ins := m.code.Instructions
	if m.frame.pc >= len(ins) {
		m.finished = true
		return nil
	}

	in := ins[m.frame.pc]
	m.frame.cycles += in.Cost()
	if m.frame.cycles > m.opts.maxCycles() {
		return &CycleLimitError{Limit: m.opts.maxCycles(), Frame: m.frame}
	}
	m.last = in

	next := m.frame.pc + 1
	switch in.Op {
	case prog.Increase:
		m.frame.Set(in.Target, m.frame.Lookup(in.Target)+1)

	case prog.Decrease:
		v := m.frame.Lookup(in.Target)
		if v > 0 || m.opts.AllowNegative {
			v--
		}
		m.frame.Set(in.Target, v)

	case prog.Neutral:
		// no-op

	case prog.JumpNotZero:
		if m.frame.Lookup(in.Target) != 0 {
			next = m.jumpTarget(in)
		}

	case prog.ZeroVariable:
		m.frame.Set(in.Target, 0)

	case prog.Assignment:
		src, ok, err := in.SourceVar()
		if err != nil {
			return err
		}
		var v int64
		if ok {
			v = m.frame.Lookup(src)
		}
		m.frame.Set(in.Target, v)

	case prog.ConstantAssignment:
		k, err := in.ConstantValue()
		if err != nil {
			return err
		}
		m.frame.Set(in.Target, k)

	case prog.GotoLabel:
		next = m.jumpTarget(in)

	case prog.JumpZero:
		if m.frame.Lookup(in.Target) == 0 {
			next = m.jumpTarget(in)
		}

	case prog.JumpEqualConstant:
		k, err := in.ConstantValue()
		if err != nil {
			return err
		}
		if m.frame.Lookup(in.Target) == k {
			next = m.jumpTarget(in)
		}

	case prog.JumpEqualVariable:
		src, ok, err := in.SourceVar()
		if err != nil || !ok {
			return fmt.Errorf("instruction #%d: missing %s argument", in.Index, prog.ArgVariableName)
		}
		if m.frame.Lookup(in.Target) == m.frame.Lookup(src) {
			next = m.jumpTarget(in)
		}

	case prog.Quote:
		v, err := m.execQuote(ctx, in)
		if err != nil {
			return err
		}
		m.frame.Set(in.Target, v)

	default:
		return fmt.Errorf("instruction #%d: invalid operation", in.Index)
	}

	m.frame.pc = next
	if next >= len(ins) {
		m.finished = true
	}
	return nil
}

func (m *Machine) jumpTarget(in *prog.Instruction) int {
	l, ok := in.JumpLabel()
	if !ok {
		return m.frame.pc + 1
	}
	return m.code.Target(l, m.frame.pc)
}

// execQuote evaluates the argument expression in the current frame and
// dispatches the call.
func (m *Machine) execQuote(ctx context.Context, in *prog.Instruction) (int64, error) {
	name, ok := in.FunctionName()
	if !ok {
		return 0, fmt.Errorf("instruction #%d: missing %s argument", in.Index, prog.ArgFunctionName)
	}
	terms, err := prog.ParseArgTerms(in.FunctionArgs())
	if err != nil {
		return 0, err
	}
	return m.dispatch(ctx, name, terms)
}

// dispatch resolves a function name and applies it to the evaluated
// argument terms. User-defined functions are checked before builtins.
func (m *Machine) dispatch(ctx context.Context, name string, terms []prog.ArgTerm) (int64, error) {
	args, err := m.evalTerms(ctx, terms)
	if err != nil {
		return 0, err
	}
	if fn := m.prog.Function(name); fn != nil {
		return m.callFunction(ctx, fn, args)
	}
	return callBuiltin(name, args, m.opts)
}

// evalTerms evaluates argument terms left-to-right, depth-first, in the
// current frame.
func (m *Machine) evalTerms(ctx context.Context, terms []prog.ArgTerm) ([]int64, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	args := make([]int64, len(terms))
	for i, t := range terms {
		switch {
		case t.Var != nil:
			args[i] = m.frame.Lookup(*t.Var)
		case t.Call != nil:
			v, err := m.dispatch(ctx, t.Call.Name, t.Call.Args)
			if err != nil {
				return nil, err
			}
			args[i] = v
		default:
			return nil, fmt.Errorf("invalid argument term")
		}
	}
	return args, nil
}

// callFunction runs a user-defined function on a fresh frame: the argument
// values bind x1..xk, y and the work variables start at zero. The callee
// runs under its own cycle budget; its cycles are not added to the caller's
// counter.
func (m *Machine) callFunction(ctx context.Context, fn *prog.Function, args []int64) (int64, error) {
	if m.depth+1 > m.opts.maxCallDepth() {
		return 0, &CallDepthError{Limit: m.opts.maxCallDepth()}
	}
	callee := &Machine{
		prog:  m.prog,
		code:  &fn.Code,
		frame: NewFrame(&fn.Code, args),
		opts:  m.opts,
		depth: m.depth + 1,
	}
	res, err := callee.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("function %s: %w", fn.Name, err)
	}
	return res.Y, nil
}
