package maincmd

import (
	"context"
	"fmt"
	"go/scanner"

	"github.com/mna/mainer"

	"github.com/semulang/semu/lang/debug"
)

// Debug implements the debug command: it steps the program forward until
// it finishes or --steps steps were taken (debug.MaxSteps when --steps is
// not set), optionally undoes --back steps, then prints the state of the
// session.
func (c *Cmd) Debug(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p, env, err := c.load(args[0])
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	inputs, err := c.inputs()
	if err != nil {
		return printError(stdio, err)
	}

	dbg, err := env.Debug(p, inputs, c.Depth)
	if err != nil {
		return printError(stdio, err)
	}

	steps := c.Steps
	if !c.flags["steps"] {
		steps = debug.MaxSteps
	}
	for i := 0; i < steps && !dbg.Finished(); i++ {
		if err := dbg.StepForward(ctx); err != nil {
			return printError(stdio, err)
		}
	}
	for i := 0; i < c.Back; i++ {
		if !dbg.StepBackward() {
			break
		}
	}

	fmt.Fprintf(stdio.Stdout, "pc = %d\n", dbg.PC())
	fmt.Fprintf(stdio.Stdout, "finished = %t\n", dbg.Finished())
	if last := dbg.LastInstruction(); last != "" {
		fmt.Fprintf(stdio.Stdout, "last = %s\n", last)
	}
	vars := dbg.Variables()
	for _, name := range sortedVarNames(vars) {
		fmt.Fprintf(stdio.Stdout, "%s = %d\n", name, vars[name])
	}
	fmt.Fprintf(stdio.Stdout, "cycles = %d\n", dbg.Cycles())
	return nil
}
