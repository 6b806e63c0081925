// Package parser reads the structured S-Program document, builds the
// program AST and validates it: element schema, variable and label syntax,
// required operation arguments, function references and jump targets. On
// failure no partial program is exposed; the error is a scanner.ErrorList
// whose entries carry the document position of the offending element.
package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"go/scanner"
	"go/token"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/semulang/semu/lang/prog"
)

// Element and attribute names of the document format.
const (
	elemProgram    = "S-Program"
	elemInstrs     = "S-Instructions"
	elemInstr      = "S-Instruction"
	elemVariable   = "S-Variable"
	elemLabel      = "S-Label"
	elemArguments  = "S-Instruction-Arguments"
	elemArgument   = "S-Instruction-Argument"
	elemFunction   = "S-Function"
	attrName       = "name"
	attrType       = "type"
	attrValue      = "value"
	attrUserString = "user-string"
	typeBasic      = "basic"
	typeSynthetic  = "synthetic"
)

// ParseFiles is a helper that parses each file into a program. The error,
// if non-nil, is a scanner.ErrorList covering all files.
func ParseFiles(ctx context.Context, files ...string) ([]*prog.Program, error) {
	var el scanner.ErrorList
	res := make([]*prog.Program, 0, len(files))
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}
		p, err := ParseProgram(ctx, file, b)
		if err != nil {
			el = append(el, err.(scanner.ErrorList)...)
			continue
		}
		res = append(res, p)
	}
	el.Sort()
	return res, el.Err()
}

// ParseProgram parses and validates a single document. The filename is
// used for position reporting only. The error, if non-nil, is a
// scanner.ErrorList.
func ParseProgram(ctx context.Context, filename string, src []byte) (*prog.Program, error) {
	var p parser
	p.init(filename, src)

	program := p.parseDocument()
	if program != nil && len(p.errors) == 0 {
		p.validate(program)
	}
	p.errors.Sort()
	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return program, nil
}

type parser struct {
	filename string
	dec      *xml.Decoder
	lines    []int // byte offset of each line start
	errors   scanner.ErrorList

	// instrPos records the document position of each parsed instruction for
	// validation diagnostics.
	instrPos map[*prog.Instruction]token.Position
}

func (p *parser) init(filename string, src []byte) {
	p.filename = filename
	p.dec = xml.NewDecoder(bytes.NewReader(src))
	p.instrPos = make(map[*prog.Instruction]token.Position)
	p.lines = []int{0}
	for i, c := range src {
		if c == '\n' {
			p.lines = append(p.lines, i+1)
		}
	}
}

// pos converts the decoder's current input offset to a line/column
// position.
func (p *parser) pos() token.Position {
	off := int(p.dec.InputOffset())
	i := sort.SearchInts(p.lines, off+1) - 1
	return token.Position{
		Filename: p.filename,
		Offset:   off,
		Line:     i + 1,
		Column:   off - p.lines[i] + 1,
	}
}

// parseDocument walks the token stream down from the root element.
func (p *parser) parseDocument() *prog.Program {
	root, ok := p.nextStart(nil)
	if !ok || root.Name.Local != elemProgram {
		p.errors.Add(p.pos(), "missing "+elemProgram+" root element")
		return nil
	}

	program := &prog.Program{Name: attr(root, attrName)}
	if program.Name == "" {
		p.errors.Add(p.pos(), "missing program name")
	}

	var haveMain bool
	for {
		el, ok := p.nextStart(&root)
		if !ok {
			break
		}
		switch el.Name.Local {
		case elemInstrs:
			if haveMain {
				p.errors.Add(p.pos(), "duplicate "+elemInstrs+" section")
				p.skip(el)
				continue
			}
			haveMain = true
			program.Instructions = p.parseInstructions(el)
		case elemFunction:
			if f := p.parseFunction(el); f != nil {
				program.Functions = append(program.Functions, f)
			}
		default:
			p.skip(el)
		}
	}
	if !haveMain {
		p.errors.Add(token.Position{Filename: p.filename}, "missing "+elemInstrs+" section")
	}
	return program
}

// parseInstructions collects the direct-child S-Instruction elements of an
// S-Instructions element. It does not descend into other children, so
// instruction lists belonging to nested elements are never picked up.
func (p *parser) parseInstructions(parent xml.StartElement) []*prog.Instruction {
	var ins []*prog.Instruction
	for {
		el, ok := p.nextStart(&parent)
		if !ok {
			return ins
		}
		if el.Name.Local != elemInstr {
			p.skip(el)
			continue
		}
		if in := p.parseInstruction(el); in != nil {
			in.Index = len(ins) + 1
			ins = append(ins, in)
		}
	}
}

func (p *parser) parseFunction(el xml.StartElement) *prog.Function {
	f := &prog.Function{
		Name:       attr(el, attrName),
		UserString: attr(el, attrUserString),
	}
	if f.Name == "" {
		p.errors.Add(p.pos(), "missing function name")
	}
	var haveBody bool
	for {
		child, ok := p.nextStart(&el)
		if !ok {
			break
		}
		if child.Name.Local == elemInstrs && !haveBody {
			haveBody = true
			f.Instructions = p.parseInstructions(child)
		} else {
			p.skip(child)
		}
	}
	if !haveBody {
		p.errors.Add(token.Position{Filename: p.filename}, "function "+f.Name+": missing "+elemInstrs+" section")
	}
	return f
}

func (p *parser) parseInstruction(el xml.StartElement) *prog.Instruction {
	pos := p.pos()

	op, err := prog.ParseOp(attr(el, attrName))
	if err != nil {
		p.errors.Add(pos, err.Error())
		p.skip(el)
		return nil
	}
	switch typ := attr(el, attrType); typ {
	case typeBasic, typeSynthetic:
		if (typ == typeBasic) != op.Basic() {
			p.errors.Add(pos, "instruction type "+strconv.Quote(typ)+" does not match operation "+op.String())
		}
	default:
		p.errors.Add(pos, "invalid instruction type "+strconv.Quote(typ))
	}

	in := &prog.Instruction{Op: op}
	var varCount int

	for {
		child, ok := p.nextStart(&el)
		if !ok {
			break
		}
		switch child.Name.Local {
		case elemVariable:
			varCount++
			text := p.text(child)
			if varCount > 1 {
				continue
			}
			ref, err := prog.ParseVarRef(text)
			if err != nil {
				p.errors.Add(pos, err.Error())
				continue
			}
			in.Target = ref
		case elemLabel:
			in.Label = prog.NormalizeLabel(p.text(child))
			if in.Label.IsExit() {
				p.errors.Add(pos, "label EXIT is reserved and cannot be defined")
			}
		case elemArguments:
			in.Args = p.parseArguments(child, in.Args)
		default:
			p.skip(child)
		}
	}

	if varCount != 1 {
		p.errors.Add(pos, "instruction "+op.String()+": expected exactly one "+elemVariable+" element, got "+strconv.Itoa(varCount))
		return nil
	}
	p.instrPos[in] = pos
	return in
}

func (p *parser) parseArguments(el xml.StartElement, args map[string]string) map[string]string {
	for {
		child, ok := p.nextStart(&el)
		if !ok {
			return args
		}
		if child.Name.Local != elemArgument {
			p.skip(child)
			continue
		}
		if args == nil {
			args = make(map[string]string)
		}
		args[attr(child, attrName)] = attr(child, attrValue)
		p.skip(child)
	}
}

// nextStart returns the next StartElement that is a direct child of
// parent, or false when parent's EndElement (or EOF for a nil parent) is
// reached.
func (p *parser) nextStart(parent *xml.StartElement) (xml.StartElement, bool) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			if err != io.EOF {
				p.errors.Add(p.pos(), err.Error())
			}
			return xml.StartElement{}, false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, true
		case xml.EndElement:
			if parent != nil && t.Name.Local == parent.Name.Local {
				return xml.StartElement{}, false
			}
		}
	}
}

// text reads the character data content of el and consumes its end tag.
func (p *parser) text(el xml.StartElement) string {
	var b strings.Builder
	depth := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return b.String()
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 0 {
				b.Write(t)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return strings.TrimSpace(b.String())
			}
			depth--
		}
	}
}

// skip consumes el's entire subtree.
func (p *parser) skip(el xml.StartElement) {
	depth := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
