// Package doc holds the documentation model extracted from Fortran 90 source:
// program units, modules, derived types, interfaces, procedures and the
// declarations that make up their public surface.
//
// Nodes form trees. A node is created by the parser on its opening statement,
// filled in until the matching terminator is read and is never modified by the
// parser afterwards.
package doc

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Node is implemented by every entity of the documentation model.
// The set of implementations is closed: *File, *Program, *Module, *DerivedType,
// *Interface, *Procedure, *Argument and *Declaration.
type Node interface {
	// NodeName returns the entity name as written in the source.
	NodeName() string
	// HasDoc reports whether the entity carries any documentation lines.
	HasDoc() bool
	// Children returns the directly owned child nodes in source order.
	Children() []Node
	node()
}

// FoldName returns the case folded form of a Fortran name, type or attribute
// used whenever two of them are compared.
func FoldName(s string) string {
	return cases.Lower(language.Und).String(s)
}

// DocBlock is an ordered sequence of documentation lines with the doc marker removed.
type DocBlock []string

// String joins the block with newlines.
func (d DocBlock) String() string { return strings.Join(d, "\n") }

// Attribute is a lower case declaration attribute such as "pointer" or "intent(in)".
type Attribute string

// IsDimension reports whether a is a dimension(...) attribute.
func (a Attribute) IsDimension() bool { return strings.HasPrefix(string(a), "dimension") }

// ProcedureKind distinguishes subroutines from functions.
type ProcedureKind uint8

const (
	Subroutine ProcedureKind = iota
	Function
)

func (k ProcedureKind) String() string {
	if k == Function {
		return "function"
	}
	return "subroutine"
}

// MarshalText encodes the kind by name so JSON and YAML dumps stay readable.
func (k ProcedureKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// File is the result of parsing a single source file. A file holds program
// units, modules and standalone procedures in the order they were found.
type File struct {
	Source      string       `json:"source" yaml:"source"`
	Programs    []*Program   `json:"programs,omitempty" yaml:"programs,omitempty"`
	Modules     []*Module    `json:"modules,omitempty" yaml:"modules,omitempty"`
	Subroutines []*Procedure `json:"subroutines,omitempty" yaml:"subroutines,omitempty"`
	Functions   []*Procedure `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// Program is a main program unit.
type Program struct {
	Name        string       `json:"name" yaml:"name"`
	Subroutines []*Procedure `json:"subroutines,omitempty" yaml:"subroutines,omitempty"`
	Functions   []*Procedure `json:"functions,omitempty" yaml:"functions,omitempty"`
	Uses        []string     `json:"uses,omitempty" yaml:"uses,omitempty"`
	Doc         DocBlock     `json:"doc,omitempty" yaml:"doc,omitempty"`
	Line        int          `json:"line,omitempty" yaml:"line,omitempty"`
}

// Module is a Fortran module. Procedures that belong to one of the module's
// generic interfaces are stored under that interface and not in Subroutines or Functions.
type Module struct {
	Name         string         `json:"name" yaml:"name"`
	DerivedTypes []*DerivedType `json:"types,omitempty" yaml:"types,omitempty"`
	Variables    []Declaration  `json:"variables,omitempty" yaml:"variables,omitempty"`
	Interfaces   []*Interface   `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Subroutines  []*Procedure   `json:"subroutines,omitempty" yaml:"subroutines,omitempty"`
	Functions    []*Procedure   `json:"functions,omitempty" yaml:"functions,omitempty"`
	Uses         []string       `json:"uses,omitempty" yaml:"uses,omitempty"`
	Doc          DocBlock       `json:"doc,omitempty" yaml:"doc,omitempty"`
	Line         int            `json:"line,omitempty" yaml:"line,omitempty"`
}

// DerivedType is a TYPE ... END TYPE definition.
type DerivedType struct {
	Name     string        `json:"name" yaml:"name"`
	Elements []Declaration `json:"elements,omitempty" yaml:"elements,omitempty"`
	Doc      DocBlock      `json:"doc,omitempty" yaml:"doc,omitempty"`
	Line     int           `json:"line,omitempty" yaml:"line,omitempty"`
}

// Interface is an INTERFACE block. ProcedureNames lists the lower case names
// given in MODULE PROCEDURE statements. MergedArguments is left empty by the
// parser and holds the result of [InterfaceArguments] once set by a caller.
type Interface struct {
	Name           string       `json:"name" yaml:"name"`
	Abstract       bool         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	ProcedureNames []string     `json:"procedure_names,omitempty" yaml:"procedure_names,omitempty"`
	Subroutines    []*Procedure `json:"subroutines,omitempty" yaml:"subroutines,omitempty"`
	Functions      []*Procedure `json:"functions,omitempty" yaml:"functions,omitempty"`
	Doc            DocBlock     `json:"doc,omitempty" yaml:"doc,omitempty"`
	Line           int          `json:"line,omitempty" yaml:"line,omitempty"`

	MergedArguments []Declaration `json:"merged_arguments,omitempty" yaml:"merged_arguments,omitempty"`
}

// Has reports whether a procedure named name is a member of the interface,
// either listed in a MODULE PROCEDURE statement or already collected under it.
// The comparison is case-insensitive.
func (i *Interface) Has(name string) bool {
	for _, pn := range i.ProcedureNames {
		if strings.EqualFold(pn, name) {
			return true
		}
	}
	for _, p := range i.Procedures() {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// Procedures returns the interface functions followed by its subroutines.
func (i *Interface) Procedures() []*Procedure {
	procs := make([]*Procedure, 0, len(i.Functions)+len(i.Subroutines))
	procs = append(procs, i.Functions...)
	return append(procs, i.Subroutines...)
}

// Procedure is a subroutine or function.
type Procedure struct {
	Kind ProcedureKind `json:"kind" yaml:"kind"`
	Name string        `json:"name" yaml:"name"`
	// Recursive is set when RECURSIVE appears among the prefixes.
	Recursive bool `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	// Prefixes holds the lower case prefix keywords (recursive, pure, elemental) in source order.
	Prefixes []string `json:"prefixes,omitempty" yaml:"prefixes,omitempty"`
	// Params is the formal parameter list as written in the header.
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
	// Arguments are the declared formal parameters in header order.
	Arguments []Argument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Doc       DocBlock   `json:"doc,omitempty" yaml:"doc,omitempty"`
	Uses      []string   `json:"uses,omitempty" yaml:"uses,omitempty"`
	// ReturnValue is only set for functions. Its name is empty when the
	// result variable could not be identified.
	ReturnValue    *Declaration `json:"return_value,omitempty" yaml:"return_value,omitempty"`
	ReturnValueDoc DocBlock     `json:"return_value_doc,omitempty" yaml:"return_value_doc,omitempty"`
	// ResultName is the identifier of a RESULT(name) clause.
	ResultName string `json:"result_name,omitempty" yaml:"result_name,omitempty"`
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// IsFunction reports whether p is a function.
func (p *Procedure) IsFunction() bool { return p.Kind == Function }

// Argument returns the argument named name, or nil.
func (p *Procedure) Argument(name string) *Argument {
	for i := range p.Arguments {
		if strings.EqualFold(p.Arguments[i].NodeName(), name) {
			return &p.Arguments[i]
		}
	}
	return nil
}

// Argument is a documented formal parameter. Position is the zero based index
// in the formal parameter list. A non-nil Procedure marks a procedure dummy
// argument whose interface was given in the body; Declaration is then empty
// save for Name.
type Argument struct {
	Declaration `yaml:",inline"`
	Position    int        `json:"position" yaml:"position"`
	Procedure   *Procedure `json:"procedure,omitempty" yaml:"procedure,omitempty"`
}

// IsProcedure reports whether the argument is a callback.
func (a *Argument) IsProcedure() bool { return a.Procedure != nil }

// Declaration is a single named entity of a type declaration statement.
// Type holds more than one entry only for synthetic entries produced by
// merging declarations of the same name with differing types.
type Declaration struct {
	Name       string      `json:"name" yaml:"name"`
	Type       []string    `json:"type" yaml:"type"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Default    string      `json:"default,omitempty" yaml:"default,omitempty"`
	Doc        DocBlock    `json:"doc,omitempty" yaml:"doc,omitempty"`
	Line       int         `json:"line,omitempty" yaml:"line,omitempty"`
}

// TypeString returns the type specification, joining merged types with " or ".
func (d *Declaration) TypeString() string { return strings.Join(d.Type, " or ") }

// HasAttribute reports whether d carries attribute attr. A bare "dimension"
// or "intent" matches any dimension(...) or intent(...) attribute.
func (d *Declaration) HasAttribute(attr string) bool {
	attr = FoldName(attr)
	for _, a := range d.Attributes {
		s := string(a)
		if s == attr || (!strings.Contains(attr, "(") && strings.HasPrefix(s, attr+"(")) {
			return true
		}
	}
	return false
}

// Dimension returns the contents of the dimension attribute, i.e. "3,n" for dimension(3,n).
func (d *Declaration) Dimension() string {
	for _, a := range d.Attributes {
		if a.IsDimension() {
			s := string(a)
			if i := strings.IndexByte(s, '('); i >= 0 && strings.HasSuffix(s, ")") {
				return s[i+1 : len(s)-1]
			}
		}
	}
	return ""
}

func (f *File) NodeName() string { return f.Source }
func (p *Program) NodeName() string { return p.Name }
func (m *Module) NodeName() string { return m.Name }
func (t *DerivedType) NodeName() string { return t.Name }
func (i *Interface) NodeName() string { return i.Name }
func (p *Procedure) NodeName() string { return p.Name }
func (a *Argument) NodeName() string { return a.Name }
func (d *Declaration) NodeName() string { return d.Name }
func (f *File) HasDoc() bool { return false }
func (p *Program) HasDoc() bool { return len(p.Doc) > 0 }
func (m *Module) HasDoc() bool { return len(m.Doc) > 0 }
func (t *DerivedType) HasDoc() bool { return len(t.Doc) > 0 }
func (i *Interface) HasDoc() bool { return len(i.Doc) > 0 }
func (p *Procedure) HasDoc() bool { return len(p.Doc) > 0 || len(p.ReturnValueDoc) > 0 }
func (d *Declaration) HasDoc() bool { return len(d.Doc) > 0 }
func (f *File) node() {}
func (p *Program) node() {}
func (m *Module) node() {}
func (t *DerivedType) node() {}
func (i *Interface) node() {}
func (p *Procedure) node() {}
func (a *Argument) node() {}
func (d *Declaration) node() {}

func (a *Argument) HasDoc() bool {
	if a.Procedure != nil {
		return a.Procedure.HasDoc()
	}
	return a.Declaration.HasDoc()
}

func (f *File) Children() []Node {
	var nodes []Node
	for _, p := range f.Programs {
		nodes = append(nodes, p)
	}
	for _, m := range f.Modules {
		nodes = append(nodes, m)
	}
	return appendProcs(nodes, f.Subroutines, f.Functions)
}

func (p *Program) Children() []Node {
	return appendProcs(nil, p.Subroutines, p.Functions)
}

func (m *Module) Children() []Node {
	var nodes []Node
	for _, t := range m.DerivedTypes {
		nodes = append(nodes, t)
	}
	nodes = appendDecls(nodes, m.Variables)
	for _, i := range m.Interfaces {
		nodes = append(nodes, i)
	}
	return appendProcs(nodes, m.Subroutines, m.Functions)
}

func (t *DerivedType) Children() []Node { return appendDecls(nil, t.Elements) }

func (i *Interface) Children() []Node {
	return appendProcs(nil, i.Subroutines, i.Functions)
}

func (p *Procedure) Children() []Node {
	var nodes []Node
	for i := range p.Arguments {
		nodes = append(nodes, &p.Arguments[i])
	}
	if p.ReturnValue != nil {
		nodes = append(nodes, p.ReturnValue)
	}
	return nodes
}

func (a *Argument) Children() []Node {
	if a.Procedure != nil {
		return []Node{a.Procedure}
	}
	return nil
}

func (d *Declaration) Children() []Node { return nil }

func appendProcs(nodes []Node, subts, functs []*Procedure) []Node {
	for _, s := range subts {
		nodes = append(nodes, s)
	}
	for _, f := range functs {
		nodes = append(nodes, f)
	}
	return nodes
}

func appendDecls(nodes []Node, decls []Declaration) []Node {
	for i := range decls {
		nodes = append(nodes, &decls[i])
	}
	return nodes
}
