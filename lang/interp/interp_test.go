package interp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/semulang/semu/lang/interp"
	"github.com/semulang/semu/lang/parser"
	"github.com/semulang/semu/lang/prog"
)

type runTest struct {
	Name          string           `yaml:"name"`
	Doc           string           `yaml:"doc"`
	Inputs        []int64          `yaml:"inputs"`
	MaxCycles     uint64           `yaml:"maxCycles"`
	AllowNegative bool             `yaml:"allowNegative"`
	Y             int64            `yaml:"y"`
	Cycles        *uint64          `yaml:"cycles"`
	Vars          map[string]int64 `yaml:"vars"`
	Error         string           `yaml:"error"`
}

func TestRunScenarios(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("testdata", "run-tests.yaml"))
	require.NoError(t, err)

	var tests []runTest
	require.NoError(t, yaml.Unmarshal(b, &tests))

	ctx := context.Background()
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			p, err := parser.ParseProgram(ctx, tc.Name+".xml", []byte(tc.Doc))
			require.NoError(t, err)

			opts := interp.Options{
				MaxCycles:     tc.MaxCycles,
				AllowNegative: tc.AllowNegative,
			}
			res, err := interp.Run(ctx, p, tc.Inputs, opts)
			if tc.Error != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.Error)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tc.Y, res.Y, "y")
			if tc.Cycles != nil {
				assert.Equal(t, *tc.Cycles, res.Cycles, "cycles")
			}
			for name, want := range tc.Vars {
				assert.Equal(t, want, res.Variables[name], "variable %s", name)
			}
		})
	}
}

func TestDecreaseSaturation(t *testing.T) {
	const doc = `
<S-Program name="dec">
  <S-Instructions>
    <S-Instruction type="basic" name="DECREASE">
      <S-Variable>y</S-Variable>
    </S-Instruction>
  </S-Instructions>
</S-Program>
`
	ctx := context.Background()
	p, err := parser.ParseProgram(ctx, "dec.xml", []byte(doc))
	require.NoError(t, err)

	res, err := interp.Run(ctx, p, nil, interp.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Y, "saturating")

	res, err = interp.Run(ctx, p, nil, interp.Options{AllowNegative: true})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), res.Y, "negative allowed")
}

func TestCycleLimitKeepsPartialFrame(t *testing.T) {
	const doc = `
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
	ctx := context.Background()
	p, err := parser.ParseProgram(ctx, "loop.xml", []byte(doc))
	require.NoError(t, err)

	_, err = interp.Run(ctx, p, nil, interp.Options{MaxCycles: 30})
	var cle *interp.CycleLimitError
	require.ErrorAs(t, err, &cle)
	assert.Equal(t, uint64(30), cle.Limit)
	require.NotNil(t, cle.Frame)
	assert.Greater(t, cle.Frame.Lookup(prog.WorkVar(1)), int64(0))
}

func TestUserFunctionShadowsBuiltin(t *testing.T) {
	const doc = `
<S-Program name="shadow">
  <S-Instructions>
    <S-Instruction type="synthetic" name="QUOTE">
      <S-Variable>y</S-Variable>
      <S-Instruction-Arguments>
        <S-Instruction-Argument name="functionName" value="CONST0"/>
        <S-Instruction-Argument name="functionArguments" value=""/>
      </S-Instruction-Arguments>
    </S-Instruction>
  </S-Instructions>
  <S-Function name="CONST0" user-string="not zero at all">
    <S-Instructions>
      <S-Instruction type="basic" name="INCREASE">
        <S-Variable>y</S-Variable>
      </S-Instruction>
    </S-Instructions>
  </S-Function>
</S-Program>
`
	ctx := context.Background()
	p, err := parser.ParseProgram(ctx, "shadow.xml", []byte(doc))
	require.NoError(t, err)

	res, err := interp.Run(ctx, p, nil, interp.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Y)
}

func TestRecursionDepthLimit(t *testing.T) {
	const doc = `
<S-Program name="recurse">
  <S-Instructions>
    <S-Instruction type="synthetic" name="QUOTE">
      <S-Variable>y</S-Variable>
      <S-Instruction-Arguments>
        <S-Instruction-Argument name="functionName" value="F"/>
        <S-Instruction-Argument name="functionArguments" value="x1"/>
      </S-Instruction-Arguments>
    </S-Instruction>
  </S-Instructions>
  <S-Function name="F" user-string="self-call">
    <S-Instructions>
      <S-Instruction type="synthetic" name="QUOTE">
        <S-Variable>y</S-Variable>
        <S-Instruction-Arguments>
          <S-Instruction-Argument name="functionName" value="F"/>
          <S-Instruction-Argument name="functionArguments" value="x1"/>
        </S-Instruction-Arguments>
      </S-Instruction>
    </S-Instructions>
  </S-Function>
</S-Program>
`
	ctx := context.Background()
	p, err := parser.ParseProgram(ctx, "recurse.xml", []byte(doc))
	require.NoError(t, err)

	_, err = interp.Run(ctx, p, []int64{1}, interp.Options{MaxCallDepth: 5})
	var cde *interp.CallDepthError
	require.ErrorAs(t, err, &cde)
	assert.Equal(t, 5, cde.Limit)
}

func TestUnknownFunctionAtRuntime(t *testing.T) {
	// bypass the parser: a program referencing an unknown function must
	// fail defensively at dispatch.
	p := &prog.Program{Name: "bad"}
	p.Instructions = []*prog.Instruction{{
		Op:     prog.Quote,
		Target: prog.OutputVar(),
		Args: map[string]string{
			prog.ArgFunctionName: "Missing",
			prog.ArgFunctionArgs: "",
		},
		Index: 1,
	}}

	_, err := interp.Run(context.Background(), p, nil, interp.Options{})
	var ufe *interp.UnknownFunctionError
	require.ErrorAs(t, err, &ufe)
	assert.Equal(t, "Missing", ufe.Name)
}
