package compiler_test

import (
	"strings"
	"testing"

	"github.com/aretw0/rover/internal/compiler"
	"github.com/aretw0/rover/pkg/domain"
	"github.com/aretw0/rover/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSchemas provides a fixed command vocabulary for tests.
type stubSchemas map[string]schema.Schema

func (s stubSchemas) SchemaFor(name string) (schema.Schema, bool) {
	sc, ok := s[name]
	return sc, ok
}

func testSchemas() stubSchemas {
	return stubSchemas{
		"attack": {
			"direction":   schema.Enum("left", "right"),
			"repetitions": schema.Optional(schema.Int()),
		},
		"wait": {
			"duration": schema.Float(),
		},
	}
}

func TestCompile_FullRoutine(t *testing.T) {
	src := `
# farming loop
@ name=Start
* x=0.25, y=0.40, frequency=2
    attack, direction=left, repetitions=3
    wait, duration=0.5
$ move_tolerance=0.05
* x=0.80, y=0.40, adjust=true
> label=Start
`
	c := compiler.New(testSchemas())
	routine, diags, err := c.Compile("farm", src)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Equal(t, 5, routine.Len())

	assert.Equal(t, domain.KindLabel, routine.Components[0].Kind())
	assert.Equal(t, domain.KindPoint, routine.Components[1].Kind())
	assert.Equal(t, domain.KindSetting, routine.Components[2].Kind())
	assert.Equal(t, domain.KindPoint, routine.Components[3].Kind())
	assert.Equal(t, domain.KindJump, routine.Components[4].Kind())

	p := routine.Components[1].(*domain.Point)
	assert.Equal(t, 2, p.Frequency)
	require.Len(t, p.Commands, 2)
	assert.Equal(t, "attack", p.Commands[0].Name)
	assert.Equal(t, "left", p.Commands[0].Params["direction"])
	assert.Equal(t, 3, p.Commands[0].Params["repetitions"])
	assert.Equal(t, "wait", p.Commands[1].Name)

	setting := routine.Components[2].(*domain.Setting)
	assert.Equal(t, domain.SettingMoveTolerance, setting.Key)
	assert.Equal(t, 0.05, setting.Value)

	assert.Equal(t, 0, routine.Labels["Start"])
}

func TestCompile_DuplicateLabelIsGlobal(t *testing.T) {
	src := "@ name=Start\n* x=0.5, y=0.5\n@ name=Start\n"
	c := compiler.New(testSchemas())

	routine, _, err := c.Compile("r", src)
	assert.Nil(t, routine)

	var ce *domain.CompileError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Diagnostics, 2)
	assert.Equal(t, 1, ce.Diagnostics[0].Line)
	assert.Equal(t, 3, ce.Diagnostics[1].Line)
	assert.Contains(t, ce.Diagnostics[0].Message, "Start")
}

func TestCompile_UnresolvedJumpIsGlobal(t *testing.T) {
	src := "* x=0.5, y=0.5\n> label=Missing\n"
	c := compiler.New(testSchemas())

	routine, _, err := c.Compile("r", src)
	assert.Nil(t, routine)

	var ce *domain.CompileError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Diagnostics, 1)
	assert.Contains(t, ce.Diagnostics[0].Message, "Missing")
}

func TestCompile_ForwardJumpResolves(t *testing.T) {
	src := "> label=End\n* x=0.5, y=0.5\n@ name=End\n"
	c := compiler.New(testSchemas())

	routine, diags, err := c.Compile("r", src)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, 2, routine.Labels["End"])
}

func TestCompile_MalformedPointIsLocal(t *testing.T) {
	src := "* x=0.1, y=0.1\n* x=nonsense, y=0.5\n* x=0.9, y=0.9\n"
	c := compiler.New(testSchemas())

	routine, diags, err := c.Compile("r", src)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Line)

	pts := routine.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, 0.1, pts[0].Pos.X)
	assert.Equal(t, 0.9, pts[1].Pos.X)
}

func TestCompile_LocalDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown marker", "% x=1\n", "unknown marker"},
		{"unknown command", "* x=0.5, y=0.5\n    teleport, x=1\n", "unknown command"},
		{"param not in schema", "* x=0.5, y=0.5\n    wait, duration=1.0, volume=11\n", "volume"},
		{"missing required param", "* x=0.5, y=0.5\n    wait\n", "required"},
		{"orphan command", "    wait, duration=1.0\n", "no preceding point"},
		{"bad frequency", "* x=0.5, y=0.5, frequency=0\n", "frequency"},
		{"out of bounds", "* x=1.5, y=0.5\n", "outside"},
		{"unknown setting", "$ warp_speed=9\n", "unknown setting"},
		{"bad setting type", "$ record_layout=7\n", "bool"},
		{"malformed pair", "* x=0.5, y=0.5, frequency\n", "key=value"},
	}

	c := compiler.New(testSchemas())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags, err := c.Compile("r", tt.src)
			require.NoError(t, err)
			require.Len(t, diags, 1)
			assert.True(t, strings.Contains(diags[0].Message, tt.want),
				"diagnostic %q should contain %q", diags[0].Message, tt.want)
		})
	}
}

func TestCompile_CommentsAndBlanksIgnored(t *testing.T) {
	src := "\n# header\n\n* x=0.5, y=0.5\n\n# trailing\n"
	c := compiler.New(testSchemas())

	routine, diags, err := c.Compile("r", src)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, 1, routine.Len())
}

func TestCompile_SkipDefaultsAndFlags(t *testing.T) {
	src := "* x=0.5, y=0.5\n* x=0.6, y=0.6, frequency=3, skip=true, adjust=true\n"
	c := compiler.New(testSchemas())

	routine, _, err := c.Compile("r", src)
	require.NoError(t, err)

	pts := routine.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, 1, pts[0].Frequency)
	assert.False(t, pts[0].Skip)
	assert.True(t, pts[1].Skip)
	assert.True(t, pts[1].Adjust)
	assert.Equal(t, 3, pts[1].Frequency)
}
