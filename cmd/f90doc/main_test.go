package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soypat/f90doc/xref"
)

const shapesSource = `module shapes
  !% Shapes module.
  implicit none
  integer, parameter :: n = 3 !% Count.
  type circle
    real :: radius
  end type circle
contains
  !% Area of a circle.
  function area(c) result(a)
    type(circle), intent(in) :: c
    real :: a
    a = 3.14 * c%radius**2
  end function area
end module shapes
`

const driverSource = `module drawing
  use shapes
contains
  ! Draws the shape.
  subroutine draw(c, scale)
    type(circle), intent(in) :: c
    real, dimension(2), intent(in) :: scale
  end subroutine draw
end module drawing
`

func init() {
	color.NoColor = true
}

type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	env := &testEnv{dir: t.TempDir()}
	env.config = filepath.Join(env.dir, "missing.yaml")
	for name, content := range files {
		require.NoError(t, os.WriteFile(env.path(name), []byte(content), 0o644))
	}
	return env
}

func (env *testEnv) path(name string) string { return filepath.Join(env.dir, name) }

func (env *testEnv) run(args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	err = run(append([]string{"--config", env.config}, args...), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), err
}

func TestDumpYAML(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource})
	out, _, err := env.run("dump", env.path("shapes.f90"))
	require.NoError(t, err)
	assert.Contains(t, out, "name: shapes")
	assert.Contains(t, out, "Shapes module.")
	assert.Contains(t, out, "kind: function")
}

func TestDumpJSON(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource})
	out, _, err := env.run("-q", "dump", "--format", "json", env.path("shapes.f90"))
	require.NoError(t, err)

	var files []struct {
		Modules []struct {
			Name      string   `json:"name"`
			Doc       []string `json:"doc"`
			Functions []struct {
				Name        string   `json:"name"`
				Doc         []string `json:"doc"`
				ReturnValue struct {
					Name string `json:"name"`
				} `json:"return_value"`
			} `json:"functions"`
		} `json:"modules"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	require.Len(t, files[0].Modules, 1)
	m := files[0].Modules[0]
	assert.Equal(t, "shapes", m.Name)
	assert.Equal(t, []string{"Shapes module."}, m.Doc)
	require.Len(t, m.Functions, 1)
	assert.Equal(t, []string{"Area of a circle."}, m.Functions[0].Doc)
	assert.Equal(t, "a", m.Functions[0].ReturnValue.Name)
}

func TestDumpTree(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource})
	out, _, err := env.run("dump", "-f", "tree", env.path("shapes.f90"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "File "+env.path("shapes.f90")+" {"), out)
	assert.Contains(t, out, "DerivedType circle {")
	assert.Contains(t, out, "Attributes: [intent(in)]")
	assert.Contains(t, out, "Doc: |\n")
}

func TestDumpGroup(t *testing.T) {
	const source = `module grid
  integer :: nx, ny
  integer :: nz
  real :: h
end module grid
`
	env := newTestEnv(t, map[string]string{"grid.f90": source})
	out, _, err := env.run("dump", "--group", "-f", "json", env.path("grid.f90"))
	require.NoError(t, err)
	var files []struct {
		Modules []struct {
			Variables []struct {
				Name string `json:"name"`
			} `json:"variables"`
		} `json:"modules"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	require.Len(t, files[0].Modules, 1)
	var names []string
	for _, v := range files[0].Modules[0].Variables {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"nx, ny, nz", "h"}, names)
}

func TestDumpGroupArguments(t *testing.T) {
	const source = `module ops
  interface scale
    module procedure scale_one, scale_all
  end interface scale
contains
  subroutine scale_one(x, f)
    real, intent(inout) :: x
    real, intent(in) :: f
  end subroutine scale_one
  subroutine scale_all(x, f)
    real, dimension(:), intent(inout) :: x
    real, intent(in) :: f
  end subroutine scale_all
  subroutine axpy(a, n, b)
    real, intent(in) :: a
    integer, intent(in) :: n
    real, intent(in) :: b
  end subroutine axpy
end module ops
`
	type decl struct {
		Name       string   `json:"name"`
		Attributes []string `json:"attributes"`
		Position   int      `json:"position"`
	}
	env := newTestEnv(t, map[string]string{"ops.f90": source})
	out, _, err := env.run("dump", "--group", "-f", "json", env.path("ops.f90"))
	require.NoError(t, err)
	var files []struct {
		Modules []struct {
			Interfaces []struct {
				MergedArguments []decl `json:"merged_arguments"`
			} `json:"interfaces"`
			Subroutines []struct {
				Arguments []decl `json:"arguments"`
			} `json:"subroutines"`
		} `json:"modules"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	m := files[0].Modules[0]
	require.Len(t, m.Interfaces, 1)
	merged := m.Interfaces[0].MergedArguments
	require.Len(t, merged, 2)
	assert.Equal(t, "x", merged[0].Name)
	assert.Equal(t, []string{"intent(inout)", "scalar or dimension(:)"}, merged[0].Attributes)
	assert.Equal(t, "f", merged[1].Name)

	require.Len(t, m.Subroutines, 1)
	args := m.Subroutines[0].Arguments
	require.Len(t, args, 2)
	assert.Equal(t, "a, b", args[0].Name)
	assert.Equal(t, 0, args[0].Position)
	assert.Equal(t, "n", args[1].Name)
	assert.Equal(t, 1, args[1].Position)
}

func TestDumpInvalidFormat(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource})
	_, _, err := env.run("dump", "--format", "xml", env.path("shapes.f90"))
	require.ErrorIs(t, err, errInvalidFlag)
}

func TestDumpParseError(t *testing.T) {
	env := newTestEnv(t, map[string]string{"broken.f90": "module broken\n  integer :: x\n"})
	_, _, err := env.run("dump", env.path("broken.f90"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated module broken")
}

func TestVars(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource})
	src := env.path("shapes.f90")
	out, _, err := env.run("vars", src)
	require.NoError(t, err)
	expect := fmt.Sprintf(`TYPE(circle) ELEM(real:radius): decl=%[1]s:6
MOD(shapes) VAR(integer:n): decl=%[1]s:4 PARAMETER
FUNC(area) ARG(type(circle):c): decl=%[1]s:11 INTENT(IN)
FUNC(area) RET(real:a): decl=%[1]s:12
`, src)
	assert.Equal(t, expect, out)
}

func TestVarsFilters(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource, "drawing.f90": driverSource})
	out, _, err := env.run("vars", "--type", "type( circle )", env.path("shapes.f90"), env.path("drawing.f90"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "FUNC(area) ARG(type(circle):c)"))
	assert.True(t, strings.HasPrefix(lines[1], "SUB(draw) ARG(type(circle):c)"))

	out, _, err = env.run("-v", "vars", "--filter", "SCALE", "--docs", env.path("drawing.f90"))
	require.NoError(t, err)
	assert.Contains(t, out, "SUB(draw) ARG(real:scale(2)):")
	assert.Contains(t, out, "DIMENSION(2) INTENT(IN)")

	out, _, err = env.run("vars", "--filter", "n", "--docs", env.path("shapes.f90"))
	require.NoError(t, err)
	assert.Contains(t, out, "VAR(integer:n)")
	assert.Contains(t, out, "\tCount.\n")
}

func TestVarsOmit(t *testing.T) {
	const source = `module hidden
  integer :: shown !% Visible.
  integer :: brief
  !% OMIT SHORT
  !% Only in full listings.
  integer :: secret
  !% OMIT
contains
  !% OMIT
  subroutine internal(x)
    integer :: x
  end subroutine internal
end module hidden
`
	env := newTestEnv(t, map[string]string{"hidden.f90": source})
	out, _, err := env.run("vars", "--docs", env.path("hidden.f90"))
	require.NoError(t, err)
	assert.Contains(t, out, "VAR(integer:shown)")
	assert.Contains(t, out, "VAR(integer:brief)")
	assert.Contains(t, out, "\tOnly in full listings.\n")
	assert.NotContains(t, out, "OMIT")
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "ARG(")

	out, _, err = env.run("vars", "--short", env.path("hidden.f90"))
	require.NoError(t, err)
	assert.Contains(t, out, "VAR(integer:shown)")
	assert.NotContains(t, out, "brief")
}

func TestGrep(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource, "drawing.f90": driverSource})
	out, _, err := env.run("grep", "circle", env.path("shapes.f90"))
	require.NoError(t, err)
	assert.Contains(t, out, "5:type circle\n")
	assert.Contains(t, out, "9:!% Area of a circle.\n")

	out, _, err = env.run("grep", "-c", "circle", env.path("shapes.f90"))
	require.NoError(t, err)
	assert.NotContains(t, out, "Area of a circle")

	out, _, err = env.run("grep", "-d", "-i", "SHAPE", env.path("shapes.f90"), env.path("drawing.f90"))
	require.NoError(t, err)
	assert.Equal(t, env.path("shapes.f90")+":2:!% Shapes module.\n", out)

	out, _, err = env.run("grep", "-l", "subroutine", env.path("shapes.f90"), env.path("drawing.f90"))
	require.NoError(t, err)
	assert.Equal(t, env.path("drawing.f90")+"\n", out)
}

func TestGrepNoMatch(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource})
	_, _, err := env.run("grep", "triangle", env.path("shapes.f90"))
	require.ErrorIs(t, err, errNoMatch)

	_, _, err = env.run("grep", "-c", "-d", "circle", env.path("shapes.f90"))
	require.ErrorIs(t, err, errInvalidFlag)
}

func TestGrepContinuation(t *testing.T) {
	env := newTestEnv(t, map[string]string{"cont.f90": "subroutine s(a, &\n    b)\nend subroutine s\n"})
	out, _, err := env.run("grep", `s\(a, b\)`, env.path("cont.f90"))
	require.NoError(t, err)
	assert.Equal(t, "1:subroutine s(a, b)\n", out)
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, map[string]string{"shapes.f90": shapesSource, "drawing.f90": driverSource})
	index := env.path("types.yaml")
	require.NoError(t, os.WriteFile(index, []byte("types:\n  polygon: polygons\n"), 0o644))

	out, stderr, err := env.run("index", "--out", index, "--deps", env.path("shapes.f90"), env.path("drawing.f90"))
	require.NoError(t, err)
	assert.Contains(t, stderr, "Indexed 2 type(s)")
	assert.Equal(t, "shapes: \ndrawing: shapes\n", out)

	ti, err := xref.Load(index)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"circle": "shapes", "polygon": "polygons"}, ti.Types)

	_, _, err = env.run("-q", "index", "--out", index, "--fresh", env.path("shapes.f90"))
	require.NoError(t, err)
	ti, err = xref.Load(index)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"circle": "shapes"}, ti.Types)
}

func TestConfigFile(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"shapes.f90":  "module m\n  !! Marked with bangs.\nend module m\n",
		"f90doc.yaml": "doc_marker: \"!!\"\nformat: json\n",
	})
	env.config = env.path("f90doc.yaml")
	out, _, err := env.run("dump", env.path("shapes.f90"))
	require.NoError(t, err)
	assert.Contains(t, out, `"Marked with bangs."`)

	require.NoError(t, os.WriteFile(env.config, []byte("format: xml\n"), 0o644))
	_, _, err = env.run("dump", env.path("shapes.f90"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t, nil)
	out, _, err := env.run("version")
	require.NoError(t, err)
	assert.Equal(t, "f90doc v0.1.0\n", out)
}
