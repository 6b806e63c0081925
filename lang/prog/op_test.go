package prog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOp(t *testing.T) {
	op, err := ParseOp("increase")
	require.NoError(t, err)
	assert.Equal(t, Increase, op)

	op, err = ParseOp("Jump_Not_Zero")
	require.NoError(t, err)
	assert.Equal(t, JumpNotZero, op)

	op, err = ParseOp("CONSTANT_ASSIGNMENT")
	require.NoError(t, err)
	assert.Equal(t, ConstantAssignment, op)

	_, err = ParseOp("NOPE")
	assert.Error(t, err)
	_, err = ParseOp("")
	assert.Error(t, err)
}

func TestOpBasic(t *testing.T) {
	basics := []Op{Increase, Decrease, JumpNotZero, Neutral}
	for _, op := range basics {
		assert.True(t, op.Basic(), op.String())
	}
	synthetics := []Op{
		ZeroVariable, Assignment, ConstantAssignment, GotoLabel,
		JumpZero, JumpEqualConstant, JumpEqualVariable, Quote,
	}
	for _, op := range synthetics {
		assert.False(t, op.Basic(), op.String())
	}
	assert.False(t, InvalidOp.Basic())
}
