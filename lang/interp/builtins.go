package interp

import (
	"fmt"
	"strings"
)

// A builtin is a function available to QUOTE dispatch without being defined
// in the program. User-defined functions of the same name shadow builtins.
type builtin struct {
	name  string
	arity int // -1 for variadic
	fn    func(args []int64, opts Options) int64
}

// Builtin names are case-insensitive; the table is keyed by the folded
// form.
var builtins = func() map[string]builtin {
	list := []builtin{
		{"CONST0", 0, func([]int64, Options) int64 { return 0 }},
		{"Minus", 2, func(args []int64, opts Options) int64 {
			d := args[0] - args[1]
			if d < 0 && !opts.AllowNegative {
				return 0
			}
			return d
		}},
		{"Smaller_Than", 2, func(args []int64, _ Options) int64 {
			return boolVal(args[0] < args[1])
		}},
		{"Smaller_Equal_Than", 2, func(args []int64, _ Options) int64 {
			return boolVal(args[0] <= args[1])
		}},
		{"EQUAL", 2, func(args []int64, _ Options) int64 {
			return boolVal(args[0] == args[1])
		}},
		{"NOT", 1, func(args []int64, _ Options) int64 {
			return boolVal(args[0] == 0)
		}},
		{"AND", -1, func(args []int64, _ Options) int64 {
			if len(args) == 0 {
				return 0
			}
			for _, a := range args {
				if a == 0 {
					return 0
				}
			}
			return 1
		}},
	}
	m := make(map[string]builtin, len(list))
	for _, b := range list {
		m[strings.ToLower(b.name)] = b
	}
	return m
}()

// IsBuiltin reports whether name is a builtin function name, ignoring
// case. The parser uses it to validate QUOTE references.
func IsBuiltin(name string) bool {
	_, ok := builtins[strings.ToLower(name)]
	return ok
}

func callBuiltin(name string, args []int64, opts Options) (int64, error) {
	b, ok := builtins[strings.ToLower(name)]
	if !ok {
		return 0, &UnknownFunctionError{Name: name}
	}
	if b.arity >= 0 && len(args) != b.arity {
		return 0, fmt.Errorf("builtin %s expects %d arguments, got %d", b.name, b.arity, len(args))
	}
	return b.fn(args, opts), nil
}

func boolVal(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
