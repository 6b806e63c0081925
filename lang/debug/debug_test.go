package debug_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semulang/semu/lang/debug"
	"github.com/semulang/semu/lang/interp"
	"github.com/semulang/semu/lang/parser"
)

const stepDoc = `
<S-Program name="steps">
  <S-Instructions>
    <S-Instruction type="basic" name="INCREASE">
      <S-Variable>y</S-Variable>
    </S-Instruction>
    <S-Instruction type="synthetic" name="CONSTANT_ASSIGNMENT">
      <S-Variable>z1</S-Variable>
      <S-Instruction-Arguments>
        <S-Instruction-Argument name="constantValue" value="2"/>
      </S-Instruction-Arguments>
    </S-Instruction>
    <S-Instruction type="basic" name="INCREASE">
      <S-Variable>y</S-Variable>
    </S-Instruction>
  </S-Instructions>
</S-Program>
`

const loopDoc = `
<S-Program name="loop">
  <S-Instructions>
    <S-Instruction type="basic" name="INCREASE">
      <S-Variable>z1</S-Variable>
      <S-Label>L1</S-Label>
    </S-Instruction>
    <S-Instruction type="basic" name="JUMP_NOT_ZERO">
      <S-Variable>z1</S-Variable>
      <S-Instruction-Arguments>
        <S-Instruction-Argument name="JNZLabel" value="L1"/>
      </S-Instruction-Arguments>
    </S-Instruction>
  </S-Instructions>
</S-Program>
`

func load(t *testing.T, doc string) *debug.Context {
	t.Helper()
	p, err := parser.ParseProgram(context.Background(), "debug.xml", []byte(doc))
	require.NoError(t, err)
	return debug.New(p, nil, interp.Options{})
}

func TestStepForward(t *testing.T) {
	ctx := context.Background()
	dbg := load(t, stepDoc)

	assert.Equal(t, 0, dbg.PC())
	assert.Equal(t, uint64(0), dbg.Cycles())
	assert.False(t, dbg.Finished())
	assert.Equal(t, "", dbg.LastInstruction())

	require.NoError(t, dbg.StepForward(ctx))
	assert.Equal(t, 1, dbg.PC())
	assert.Equal(t, uint64(1), dbg.Cycles())
	assert.Equal(t, int64(1), dbg.Variables()["y"])
	assert.Equal(t, "y <- y + 1", dbg.LastInstruction())

	// a synthetic instruction executes atomically in one step, at its
	// full static cost.
	require.NoError(t, dbg.StepForward(ctx))
	assert.Equal(t, 2, dbg.PC())
	assert.Equal(t, uint64(1+20), dbg.Cycles())
	assert.Equal(t, int64(2), dbg.Variables()["z1"])

	require.NoError(t, dbg.StepForward(ctx))
	assert.True(t, dbg.Finished())
	assert.Equal(t, int64(2), dbg.Variables()["y"])

	// stepping a finished session is a no-op.
	before := dbg.Cycles()
	require.NoError(t, dbg.StepForward(ctx))
	assert.Equal(t, before, dbg.Cycles())
	assert.True(t, dbg.Finished())
}

func TestStepBackwardRestoresExactState(t *testing.T) {
	ctx := context.Background()
	dbg := load(t, stepDoc)

	require.NoError(t, dbg.StepForward(ctx))
	wantPC, wantCycles := dbg.PC(), dbg.Cycles()
	wantVars := dbg.Variables()
	wantLast := dbg.LastInstruction()

	require.NoError(t, dbg.StepForward(ctx))
	require.True(t, dbg.StepBackward())

	assert.Equal(t, wantPC, dbg.PC())
	assert.Equal(t, wantCycles, dbg.Cycles())
	assert.Equal(t, wantVars, dbg.Variables())
	assert.Equal(t, wantLast, dbg.LastInstruction())
	assert.False(t, dbg.Finished())
}

func TestStepBackwardFromFinished(t *testing.T) {
	ctx := context.Background()
	dbg := load(t, stepDoc)

	for !dbg.Finished() {
		require.NoError(t, dbg.StepForward(ctx))
	}
	require.True(t, dbg.StepBackward())
	assert.False(t, dbg.Finished())

	// stepping forward again reaches the same result.
	for !dbg.Finished() {
		require.NoError(t, dbg.StepForward(ctx))
	}
	assert.Equal(t, int64(2), dbg.Result().Y)
}

func TestStepBackwardAtRoot(t *testing.T) {
	dbg := load(t, stepDoc)
	assert.False(t, dbg.StepBackward())

	require.NoError(t, dbg.StepForward(context.Background()))
	assert.True(t, dbg.StepBackward())
	assert.False(t, dbg.StepBackward(), "back at the initial state")
	assert.Equal(t, 0, dbg.PC())
	assert.Equal(t, uint64(0), dbg.Cycles())
}

func TestStepLimit(t *testing.T) {
	ctx := context.Background()
	dbg := load(t, loopDoc)

	for i := 0; i < debug.MaxSteps; i++ {
		require.NoError(t, dbg.StepForward(ctx))
	}
	err := dbg.StepForward(ctx)
	var sle *debug.StepLimitError
	require.ErrorAs(t, err, &sle)
	assert.Equal(t, debug.MaxSteps, sle.Limit)

	// stepping back frees budget for another forward step.
	require.True(t, dbg.StepBackward())
	assert.NoError(t, dbg.StepForward(ctx))
}
