package maincmd

import (
	"context"
	"fmt"
	"go/scanner"
	"os"

	"github.com/mna/mainer"

	"github.com/semulang/semu/lang/emulator"
	"github.com/semulang/semu/lang/prog"
)

// Parse implements the parse command: it loads and validates the document
// and reports diagnostics.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if _, _, err := c.load(args[0]); err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	fmt.Fprintf(stdio.Stdout, "%s: ok\n", args[0])
	return nil
}

// Display implements the display command: it prints the program listing at
// the selected depth.
func (c *Cmd) Display(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return c.display(stdio, args[0], c.Depth)
}

// Expand implements the expand command: it prints the listing at depth 1.
func (c *Cmd) Expand(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return c.display(stdio, args[0], 1)
}

func (c *Cmd) display(stdio mainer.Stdio, file string, depth int) error {
	p, env, err := c.load(file)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	out, err := env.Display(p, depth)
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprint(stdio.Stdout, out)
	return nil
}

// load reads and parses the document and builds the environment from the
// merged options.
func (c *Cmd) load(file string) (*prog.Program, *emulator.Env, error) {
	opts, err := c.options()
	if err != nil {
		return nil, nil, err
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	env := emulator.New(opts)
	p, err := env.Parse(file, b)
	if err != nil {
		return nil, nil, err
	}
	return p, env, nil
}
