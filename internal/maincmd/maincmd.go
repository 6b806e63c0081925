// Package maincmd implements the semu command-line tool on top of the
// emulator core: parsing, listing, expanding, running and step-debugging
// S-Program documents.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"

	"github.com/semulang/semu/lang/interp"
)

const binName = "semu"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <file>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <file>
       %[1]s -h|--help
       %[1]s -v|--version

Emulator and all-in-one tool for S-Program documents.

The <command> can be one of:
       parse                     Parse and validate the document, reporting
                                 diagnostics.
       display                   Print the program listing at the selected
                                 expansion depth.
       expand                    Print the program listing at depth 1, with
                                 the ancestry of each expanded line.
       run                       Execute the program on the input vector
                                 and print the result.
       debug                     Step through the program and print the
                                 final state.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --depth <n>               Expansion depth for display, run and
                                 debug (default 0).
       --input <list>            Comma-separated input values binding
                                 x1, x2, ... (default none).
       --max-cycles <n>          Cycle budget per run (default 1000000,
                                 env %s_MAX_CYCLES).
       --allow-negative          Let DECREASE produce negative values
                                 (env %s_ALLOW_NEGATIVE).
       --steps <n>               Number of forward steps for the debug
                                 command (default: until finished, at
                                 most 1000 steps).
       --back <n>                Steps to undo after stepping forward
                                 (debug command only).
`, binName, strings.ToUpper(binName), strings.ToUpper(binName))
)

// envConfig is the subset of execution options that can be seeded from the
// environment. Flags take precedence.
type envConfig struct {
	MaxCycles     uint64 `env:"SEMU_MAX_CYCLES"`
	AllowNegative bool   `env:"SEMU_ALLOW_NEGATIVE"`
}

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Depth         int    `flag:"depth"`
	Input         string `flag:"input"`
	MaxCycles     uint64 `flag:"max-cycles"`
	AllowNegative bool   `flag:"allow-negative"`
	Steps         int    `flag:"steps"`
	Back          int    `flag:"back"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	if len(c.args[1:]) != 1 {
		return fmt.Errorf("%s: exactly one file must be provided", cmdName)
	}
	if c.Depth < 0 || c.Depth > 1 {
		return fmt.Errorf("%s: invalid depth %d", cmdName, c.Depth)
	}
	if c.flags["steps"] && cmdName != "debug" {
		return fmt.Errorf("%s: invalid flag 'steps'", cmdName)
	}
	if c.flags["back"] && cmdName != "debug" {
		return fmt.Errorf("%s: invalid flag 'back'", cmdName)
	}
	return nil
}

// options merges the environment configuration with the explicit flags,
// flags winning.
func (c *Cmd) options() (interp.Options, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return interp.Options{}, err
	}
	opts := interp.Options{
		MaxCycles:     cfg.MaxCycles,
		AllowNegative: cfg.AllowNegative,
	}
	if c.flags["max-cycles"] {
		opts.MaxCycles = c.MaxCycles
	}
	if c.flags["allow-negative"] {
		opts.AllowNegative = c.AllowNegative
	}
	return opts, nil
}

// inputs parses the --input flag value.
func (c *Cmd) inputs() ([]int64, error) {
	if strings.TrimSpace(c.Input) == "" {
		return nil, nil
	}
	parts := strings.Split(c.Input, ",")
	vals := make([]int64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid input value %q", strings.TrimSpace(part))
		}
		vals[i] = v
	}
	return vals, nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	if c.Help {
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	}
	if c.Version {
		fmt.Fprintf(stdio.Stdout, "%s %s (%s)\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds maps the lowercased name of each exported method of v with the
// signature func(context.Context, mainer.Stdio, []string) error to the
// method itself.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		if !m.IsExported() {
			continue
		}
		fn, ok := vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
		if !ok {
			continue
		}
		cmds[strings.ToLower(m.Name)] = fn
	}
	return cmds
}
