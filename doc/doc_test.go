package doc

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func testModule() *Module {
	return &Module{
		Name: "m",
		Doc:  DocBlock{"Module docs"},
		DerivedTypes: []*DerivedType{
			{Name: "atoms", Elements: []Declaration{decl("n", "integer"), decl("pos", "real(dp)", "dimension(:,:)", "allocatable")}},
		},
		Variables: []Declaration{decl("x", "integer")},
		Interfaces: []*Interface{
			{Name: "init", ProcedureNames: []string{"init_a"}, Subroutines: []*Procedure{{Name: "init_a"}}},
		},
		Subroutines: []*Procedure{
			{Name: "foo", Doc: DocBlock{"Does a thing"}, Arguments: []Argument{{Declaration: decl("x", "integer", "intent(in)")}}},
		},
		Functions: []*Procedure{
			{Kind: Function, Name: "bar", ReturnValue: &Declaration{Name: "bar", Type: []string{"real"}}},
		},
	}
}

func TestWalkOrder(t *testing.T) {
	var got []string
	Inspect(testModule(), func(n Node) bool {
		if n != nil {
			got = append(got, n.NodeName())
		}
		return true
	})
	want := []string{"m", "atoms", "n", "pos", "x", "init", "init_a", "foo", "x", "bar", "bar"}
	assert.Equal(t, want, got)
}

func TestInspectSkipsChildren(t *testing.T) {
	count := 0
	Inspect(testModule(), func(n Node) bool {
		if n == nil {
			return false
		}
		count++
		_, isType := n.(*DerivedType)
		return !isType
	})
	// The two type elements are skipped.
	assert.Equal(t, 9, count)
}

func TestWalkPathScope(t *testing.T) {
	scopes := map[string]string{}
	WalkPath(testModule(), func(path Path) bool {
		if d, ok := path[len(path)-1].(*Declaration); ok {
			scopes[d.Name] = path.Scope().NodeName()
			assert.Equal(t, "m", path.Module().Name)
		}
		return true
	})
	assert.Equal(t, map[string]string{"n": "atoms", "pos": "atoms", "x": "m", "bar": "bar"}, scopes)
}

func TestInterfaceHas(t *testing.T) {
	iface := &Interface{ProcedureNames: []string{"foo"}, Functions: []*Procedure{{Name: "Baz", Kind: Function}}}
	assert.True(t, iface.Has("FOO"))
	assert.True(t, iface.Has("baz"))
	assert.False(t, iface.Has("qux"))
}

func TestDeclarationAttributes(t *testing.T) {
	d := decl("pos", "real", "dimension(3,n)", "intent(inout)")
	assert.True(t, d.HasAttribute("dimension"))
	assert.True(t, d.HasAttribute("INTENT(INOUT)"))
	assert.False(t, d.HasAttribute("intent(in)"))
	assert.False(t, d.HasAttribute("pointer"))
	assert.Equal(t, "3,n", d.Dimension())
}

func TestOmit(t *testing.T) {
	omit := &Procedure{Name: "a", Doc: DocBlock{"OMIT"}}
	short := &Procedure{Name: "b", Doc: DocBlock{" OMIT SHORT ", "Real docs"}}
	plain := &Procedure{Name: "c", Doc: DocBlock{"Omit nothing"}}

	assert.True(t, Omit(omit, false))
	assert.True(t, Omit(short, true))
	assert.False(t, Omit(short, false))
	assert.False(t, Omit(plain, true))
	assert.Equal(t, DocBlock{"Real docs"}, Purpose(short))
	assert.Equal(t, DocBlock{"Omit nothing"}, Purpose(plain))
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	err := Fprint(&buf, testModule().Functions[0], NotNilFilter)
	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Procedure bar {")
	assert.Contains(t, out, `Name: "bar"`)
	assert.Contains(t, out, "Kind: function")
	assert.Contains(t, out, "ReturnValue: Declaration bar {")
	assert.Contains(t, out, "Type: [real]")
	assert.NotContains(t, out, "Arguments")
	assert.NotContains(t, out, "Recursive")
}

func TestFprintShapesModel(t *testing.T) {
	var buf bytes.Buffer
	proc := testModule().Subroutines[0]
	proc.Doc = DocBlock{"Does a thing", "with \"quotes\""}
	err := Fprint(&buf, proc, NotNilFilter)
	assert.NoError(t, err)
	want := `Procedure foo {
  Kind: subroutine
  Name: "foo"
  Arguments: len=1 [
    0: Argument x {
      Name: "x"
      Type: [integer]
      Attributes: [intent(in)]
      Position: 0
    }
  ]
  Doc: |
    "Does a thing"
    "with \"quotes\""
}`
	assert.Equal(t, want, buf.String())
}

func TestFprintNoFilter(t *testing.T) {
	var buf bytes.Buffer
	err := Fprint(&buf, &Declaration{Name: "x"}, nil)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Attributes: nil")
	assert.Contains(t, buf.String(), `Default: ""`)
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, "atoms_module", FoldName("Atoms_MODULE"))
	assert.Equal(t, "intent(in)", FoldName("INTENT(IN)"))
	assert.True(t, (&Declaration{Attributes: []Attribute{"intent(in)"}}).HasAttribute("INTENT"))
}
