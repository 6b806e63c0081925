package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/semulang/semu/lang/prog"
)

func TestNewFrame(t *testing.T) {
	c := &prog.Code{
		MaxWorkVarIndex: 2,
		InputVars:       []int{1, 3},
	}
	fr := NewFrame(c, []int64{5})

	assert.Equal(t, int64(0), fr.Lookup(prog.OutputVar()))
	assert.Equal(t, int64(5), fr.Lookup(prog.InputVar(1)))
	// declared but unprovided inputs default to zero.
	assert.Equal(t, int64(0), fr.Lookup(prog.InputVar(3)))
	assert.Equal(t, int64(0), fr.Lookup(prog.WorkVar(1)))
	assert.Equal(t, int64(0), fr.Lookup(prog.WorkVar(2)))

	snap := fr.Snapshot()
	assert.Equal(t, map[string]int64{
		"y": 0, "x1": 5, "x3": 0, "z1": 0, "z2": 0,
	}, snap)
}

func TestFrameSetLookup(t *testing.T) {
	fr := NewFrame(&prog.Code{}, nil)
	v := prog.WorkVar(4)

	assert.Equal(t, int64(0), fr.Lookup(v), "untouched variable reads zero")
	fr.Set(v, 42)
	assert.Equal(t, int64(42), fr.Lookup(v))
}

func TestFrameClone(t *testing.T) {
	fr := NewFrame(&prog.Code{MaxWorkVarIndex: 1}, []int64{2})
	fr.pc = 3
	fr.cycles = 11

	c := fr.Clone()
	assert.Equal(t, fr.Snapshot(), c.Snapshot())
	assert.Equal(t, fr.pc, c.pc)
	assert.Equal(t, fr.cycles, c.cycles)

	c.Set(prog.OutputVar(), 9)
	c.pc = 7
	assert.Equal(t, int64(0), fr.Lookup(prog.OutputVar()), "clone is independent")
	assert.Equal(t, 3, fr.pc)
}
