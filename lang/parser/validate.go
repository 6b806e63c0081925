package parser

import (
	"fmt"
	"go/scanner"
	"go/token"

	"github.com/semulang/semu/lang/interp"
	"github.com/semulang/semu/lang/prog"
	"github.com/semulang/semu/lang/resolver"
)

// requiredArgs lists the argument keys each operation must carry.
var requiredArgs = map[prog.Op][]string{
	prog.JumpNotZero:        {prog.ArgJNZLabel},
	prog.GotoLabel:          {prog.ArgGotoLabel},
	prog.JumpZero:           {prog.ArgJZLabel},
	prog.JumpEqualConstant:  {prog.ArgJEConstantLabel, prog.ArgConstantValue},
	prog.JumpEqualVariable:  {prog.ArgJEVariableLabel, prog.ArgVariableName},
	prog.ConstantAssignment: {prog.ArgConstantValue},
	prog.Quote:              {prog.ArgFunctionName, prog.ArgFunctionArgs},
}

// validate checks argument requirements and function references on every
// instruction sequence, then runs the resolver for label validation and
// annotation.
func (p *parser) validate(program *prog.Program) {
	p.validateCode(program, program.Instructions)
	for _, f := range program.Functions {
		p.validateCode(program, f.Instructions)
	}
	if len(p.errors) > 0 {
		return
	}
	if err := resolver.Resolve(program); err != nil {
		for _, e := range err.(scanner.ErrorList) {
			p.errors.Add(token.Position{Filename: p.filename}, e.Msg)
		}
	}
}

func (p *parser) validateCode(program *prog.Program, ins []*prog.Instruction) {
	for _, in := range ins {
		pos := p.instrPos[in]

		for _, key := range requiredArgs[in.Op] {
			if _, ok := in.Arg(key); !ok {
				// an empty functionArguments value means "no arguments" and may
				// be omitted entirely.
				if key == prog.ArgFunctionArgs {
					continue
				}
				p.errors.Add(pos, fmt.Sprintf("%s: missing required argument %s", in.Op, key))
			}
		}

		if _, ok := in.Arg(prog.ArgConstantValue); ok {
			if _, err := in.ConstantValue(); err != nil {
				p.errors.Add(pos, fmt.Sprintf("%s: %s", in.Op, err))
			}
		}

		if _, _, err := in.SourceVar(); err != nil {
			p.errors.Add(pos, fmt.Sprintf("%s: %s", in.Op, err))
		}

		if in.Op == prog.Quote {
			p.validateQuote(program, in, pos)
		}
	}
}

// validateQuote checks the callee name and every function named in the
// argument expression against the program's functions and the builtins.
// User-defined functions are checked first, so they may shadow a builtin.
func (p *parser) validateQuote(program *prog.Program, in *prog.Instruction, pos token.Position) {
	name, ok := in.FunctionName()
	if !ok {
		return // missing functionName already reported
	}
	p.checkFunctionRef(program, name, pos)

	terms, err := prog.ParseArgTerms(in.FunctionArgs())
	if err != nil {
		p.errors.Add(pos, fmt.Sprintf("%s: %s", prog.ArgFunctionArgs, err))
		return
	}
	prog.WalkArgCalls(terms, func(c *prog.ArgCall) {
		p.checkFunctionRef(program, c.Name, pos)
	})
}

func (p *parser) checkFunctionRef(program *prog.Program, name string, pos token.Position) {
	if program.Function(name) == nil && !interp.IsBuiltin(name) {
		p.errors.Add(pos, fmt.Sprintf("reference to undefined function %q", name))
	}
}
