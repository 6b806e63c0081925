package prog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay(t *testing.T) {
	p := &Program{Name: "demo"}
	p.Instructions = []*Instruction{
		{
			Op:     JumpNotZero,
			Target: InputVar(1),
			Label:  "L1",
			Args:   map[string]string{ArgJNZLabel: "L2"},
			Index:  1,
		},
		{
			Op:     ConstantAssignment,
			Target: OutputVar(),
			Args:   map[string]string{ArgConstantValue: "3"},
			Index:  2,
		},
		{
			Op:     Increase,
			Target: OutputVar(),
			Label:  "L2",
			Index:  3,
			Origin: 2,
		},
	}
	p.LabelMap = map[Label]int{"L1": 0, "L2": 2}
	p.InputVars = []int{1, 2}

	want := `Program: demo
Inputs: x1, x2
Labels: L1, L2
#1 (B) [L1   ] IF x1 != 0 GOTO L2 (2)
#2 (S) [     ] y <- 3 (21)
#3 (B) [L2   ] y <- y + 1 (1) <<< #2
`
	assert.Equal(t, want, Display(p))
}

func TestDisplayLinePadsLabel(t *testing.T) {
	in := &Instruction{Op: Neutral, Target: OutputVar(), Label: "LOOPX", Index: 1}
	assert.Equal(t, "#1 (B) [LOOPX] y <- y (1)", DisplayLine(in))

	in = &Instruction{Op: Neutral, Target: OutputVar(), Index: 1}
	assert.Equal(t, "#1 (B) [     ] y <- y (1)", DisplayLine(in))
}
