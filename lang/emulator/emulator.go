// Package emulator exposes the request/response surface of the language
// core: parse a document, display or expand a program, run it on an input
// vector and open debugging sessions. An Env value also records the
// history of its runs. The package holds no process-wide state; every Env
// is an independent value owned by its caller.
package emulator

import (
	"context"

	"github.com/semulang/semu/lang/debug"
	"github.com/semulang/semu/lang/expand"
	"github.com/semulang/semu/lang/interp"
	"github.com/semulang/semu/lang/parser"
	"github.com/semulang/semu/lang/prog"
)

// HistoryEntry records one completed run.
type HistoryEntry struct {
	RunNo  int
	Depth  int
	Inputs []int64
	Y      int64
	Cycles uint64
}

// Env is one emulator environment: execution options plus the history of
// runs performed through it. It must be confined to one goroutine at a
// time.
type Env struct {
	Options interp.Options

	history []HistoryEntry
}

// New returns an environment with the given options.
func New(opts interp.Options) *Env {
	return &Env{Options: opts}
}

// Parse builds a validated program from a document.
func (e *Env) Parse(filename string, src []byte) (*prog.Program, error) {
	return parser.ParseProgram(context.Background(), filename, src)
}

// MaxDepth returns the maximum expansion depth of the program.
func (e *Env) MaxDepth(p *prog.Program) int { return expand.MaxDepth(p) }

// Expand returns the program at the requested depth.
func (e *Env) Expand(p *prog.Program, depth int) (*prog.Program, error) {
	return expand.Expand(p, depth)
}

// Display renders the program listing at the requested depth.
func (e *Env) Display(p *prog.Program, depth int) (string, error) {
	ep, err := expand.Expand(p, depth)
	if err != nil {
		return "", err
	}
	return prog.Display(ep), nil
}

// Run expands the program to the requested depth, executes it on the
// input vector and records a history entry on success.
func (e *Env) Run(ctx context.Context, p *prog.Program, inputs []int64, depth int) (*interp.RunResult, error) {
	ep, err := expand.Expand(p, depth)
	if err != nil {
		return nil, err
	}
	res, err := interp.Run(ctx, ep, inputs, e.Options)
	if err != nil {
		return nil, err
	}
	e.history = append(e.history, HistoryEntry{
		RunNo:  len(e.history) + 1,
		Depth:  depth,
		Inputs: append([]int64(nil), inputs...),
		Y:      res.Y,
		Cycles: res.Cycles,
	})
	return res, nil
}

// Debug expands the program to the requested depth and opens a stepping
// session on it.
func (e *Env) Debug(p *prog.Program, inputs []int64, depth int) (*debug.Context, error) {
	ep, err := expand.Expand(p, depth)
	if err != nil {
		return nil, err
	}
	return debug.New(ep, inputs, e.Options), nil
}

// History returns a copy of the recorded runs, oldest first.
func (e *Env) History() []HistoryEntry {
	return append([]HistoryEntry(nil), e.history...)
}
