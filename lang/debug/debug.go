// Package debug implements the step debugger: a context wrapping a live
// interpreter suspension with a history of frame snapshots, so execution
// can be stepped forward one instruction at a time and stepped backward by
// restoring snapshots. Step operations are ordinary state transitions on
// the context; no goroutines are involved.
package debug

import (
	"context"
	"fmt"

	"github.com/semulang/semu/lang/interp"
	"github.com/semulang/semu/lang/prog"
)

// MaxSteps is the ceiling on forward steps per session, guarding against
// interactive-loop runaways.
const MaxSteps = 1000

// Context is a live debugging session. It owns its machine and frame; the
// caller must confine it to one goroutine at a time.
type Context struct {
	machine   *interp.Machine
	history   []*interp.Frame
	lastTexts []string
	lastText  string
	steps     int
}

// New builds a debugging context positioned before the first instruction.
func New(p *prog.Program, inputs []int64, opts interp.Options) *Context {
	m := interp.NewMachine(p, inputs, opts)
	return &Context{
		machine:   m,
		history:   []*interp.Frame{m.Frame().Clone()},
		lastTexts: []string{""},
	}
}

// StepForward executes exactly one instruction, snapshotting the current
// frame first so the step can be undone. Stepping a finished session is a
// no-op. QUOTE-dispatched function calls execute atomically within the
// step.
func (c *Context) StepForward(ctx context.Context) error {
	if c.machine.Finished() {
		return nil
	}
	if c.steps >= MaxSteps {
		return &StepLimitError{Limit: MaxSteps}
	}
	snap := c.machine.Frame().Clone()
	if err := c.machine.Step(ctx); err != nil {
		return err
	}
	c.history = append(c.history, snap)
	c.lastTexts = append(c.lastTexts, c.lastText)
	if in := c.machine.LastInstruction(); in != nil {
		c.lastText = in.Command()
	}
	c.steps++
	return nil
}

// StepBackward restores the most recent snapshot. It reports false when
// the session is already at its initial state.
func (c *Context) StepBackward() bool {
	if len(c.history) <= 1 {
		return false
	}
	n := len(c.history) - 1
	c.machine.SetFrame(c.history[n])
	c.history = c.history[:n]
	c.lastText = c.lastTexts[n]
	c.lastTexts = c.lastTexts[:n]
	if c.steps > 0 {
		c.steps--
	}
	return true
}

// PC returns the current program counter.
func (c *Context) PC() int { return c.machine.Frame().PC() }

// Cycles returns the cycles consumed so far.
func (c *Context) Cycles() uint64 { return c.machine.Frame().Cycles() }

// Variables returns a snapshot of the current variable values.
func (c *Context) Variables() map[string]int64 { return c.machine.Frame().Snapshot() }

// Finished reports whether execution ran past the last instruction.
func (c *Context) Finished() bool { return c.machine.Finished() }

// LastInstruction returns the command text of the most recently executed
// instruction, "" before the first step.
func (c *Context) LastInstruction() string { return c.lastText }

// Result builds a run result from the current frame, whether or not the
// session is finished.
func (c *Context) Result() *interp.RunResult { return c.machine.Result() }

// StepLimitError reports that a session exceeded the forward-step ceiling.
type StepLimitError struct {
	Limit int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("debug session exceeded %d steps", e.Limit)
}
