package maincmd

import (
	"context"
	"fmt"
	"go/scanner"
	"sort"

	"github.com/mna/mainer"

	"github.com/semulang/semu/lang/prog"
)

// Run implements the run command: it executes the program on the input
// vector at the selected depth and prints y, the variable snapshot and the
// cycle count.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p, env, err := c.load(args[0])
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	inputs, err := c.inputs()
	if err != nil {
		return printError(stdio, err)
	}

	res, err := env.Run(ctx, p, inputs, c.Depth)
	if err != nil {
		return printError(stdio, err)
	}

	fmt.Fprintf(stdio.Stdout, "y = %d\n", res.Y)
	for _, name := range sortedVarNames(res.Variables) {
		if name == "y" {
			continue
		}
		fmt.Fprintf(stdio.Stdout, "%s = %d\n", name, res.Variables[name])
	}
	fmt.Fprintf(stdio.Stdout, "cycles = %d\n", res.Cycles)
	return nil
}

// sortedVarNames orders variable names for display: y first, then x and z
// by index.
func sortedVarNames(vars map[string]int64) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		vi, erri := prog.ParseVarRef(names[i])
		vj, errj := prog.ParseVarRef(names[j])
		if erri != nil || errj != nil {
			return names[i] < names[j]
		}
		return vi.Less(vj)
	})
	return names
}
