package interp

import (
	"github.com/dolthub/swiss"

	"github.com/semulang/semu/lang/prog"
)

// Frame is the transient execution state of one sequence: the variable
// map, the program counter and the cycle counter. Variable names are stored
// in canonical lowercase form.
type Frame struct {
	vars   *swiss.Map[string, int64]
	pc     int
	cycles uint64
}

// NewFrame builds the initial frame for the given sequence: y is zero, the
// provided inputs bind x1..xk (missing inputs default to zero) and the work
// variables z1..MaxWorkVarIndex are pre-initialized to zero.
func NewFrame(c *prog.Code, inputs []int64) *Frame {
	size := 1 + len(inputs) + len(c.InputVars) + c.MaxWorkVarIndex
	fr := &Frame{vars: swiss.NewMap[string, int64](uint32(size))}

	fr.vars.Put("y", 0)
	for i, v := range inputs {
		fr.vars.Put(prog.InputVar(i+1).String(), v)
	}
	for _, n := range c.InputVars {
		if n > len(inputs) {
			fr.vars.Put(prog.InputVar(n).String(), 0)
		}
	}
	for n := 1; n <= c.MaxWorkVarIndex; n++ {
		fr.vars.Put(prog.WorkVar(n).String(), 0)
	}
	return fr
}

// Lookup returns the value of the variable, zero if it was never touched.
func (fr *Frame) Lookup(v prog.VarRef) int64 {
	val, _ := fr.vars.Get(v.String())
	return val
}

// Set assigns the variable.
func (fr *Frame) Set(v prog.VarRef, val int64) {
	fr.vars.Put(v.String(), val)
}

// PC returns the current program counter.
func (fr *Frame) PC() int { return fr.pc }

// Cycles returns the cycles consumed so far.
func (fr *Frame) Cycles() uint64 { return fr.cycles }

// Snapshot returns a copy of the variable map keyed by canonical name.
func (fr *Frame) Snapshot() map[string]int64 {
	m := make(map[string]int64, fr.vars.Count())
	fr.vars.Iter(func(k string, v int64) bool {
		m[k] = v
		return false
	})
	return m
}

// Clone returns a deep copy of the frame.
func (fr *Frame) Clone() *Frame {
	c := &Frame{
		vars:   swiss.NewMap[string, int64](uint32(fr.vars.Count())),
		pc:     fr.pc,
		cycles: fr.cycles,
	}
	fr.vars.Iter(func(k string, v int64) bool {
		c.vars.Put(k, v)
		return false
	})
	return c
}
