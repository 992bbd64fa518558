package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/soypat/f90doc/doc"
)

// VarsCmd prints one line per declaration found in the given files:
//
//	UNIT(name) SCOPE(type:name(dims)): decl=file:line [ATTRIBUTES]
//
// SCOPE is VAR for module variables, ELEM for derived type elements, ARG for
// procedure arguments and RET for function return values. Nodes whose
// documentation starts with an OMIT directive are hidden along with their children.
type VarsCmd struct {
	Files  []string `arg:"" help:"Fortran source files" type:"existingfile"`
	Filter string   `help:"Filter declarations by name (case-insensitive substring)"`
	Type   string   `help:"Filter by type (integer, real, type(atoms), etc.)"`
	Docs   bool     `help:"Print documentation lines below each declaration"`
	Short  bool     `help:"Also hide nodes marked OMIT SHORT"`
}

func (cmd *VarsCmd) Run(ctx *Context) error {
	files, err := ctx.parseFiles(cmd.Files)
	for _, f := range files {
		cmd.printFile(ctx.Stdout, f, ctx.Verbose)
	}
	return err
}

func (cmd *VarsCmd) printFile(w io.Writer, f *doc.File, verbose bool) {
	doc.WalkPath(f, func(path doc.Path) bool {
		if doc.Omit(path[len(path)-1], cmd.Short) {
			return false
		}
		var (
			d     *doc.Declaration
			scope string
		)
		switch n := path[len(path)-1].(type) {
		case *doc.Argument:
			if n.IsProcedure() {
				return true
			}
			d, scope = &n.Declaration, "ARG"
		case *doc.Declaration:
			d = n
			switch path.Scope().(type) {
			case *doc.Module:
				scope = "VAR"
			case *doc.DerivedType:
				scope = "ELEM"
			default:
				scope = "RET"
			}
		default:
			return true
		}
		if d.Name == "" || !cmd.keep(d) {
			return false
		}
		unit := path.Scope()
		fmt.Fprintf(w, "%s(%s) %s(%s): decl=%s:%d%s\n",
			unitKind(unit), unit.NodeName(), scope, formatType(d), f.Source, d.Line, formatAttributes(d, verbose))
		if cmd.Docs {
			for _, line := range doc.Purpose(d) {
				fmt.Fprintf(w, "\t%s\n", line)
			}
		}
		return false
	})
}

func (cmd *VarsCmd) keep(d *doc.Declaration) bool {
	if cmd.Filter != "" && !strings.Contains(strings.ToUpper(d.Name), strings.ToUpper(cmd.Filter)) {
		return false
	}
	if cmd.Type != "" {
		want := strings.ReplaceAll(cmd.Type, " ", "")
		for _, typ := range d.Type {
			if strings.EqualFold(strings.ReplaceAll(typ, " ", ""), want) {
				return true
			}
		}
		return false
	}
	return true
}

func unitKind(n doc.Node) string {
	switch n := n.(type) {
	case *doc.Program:
		return "PROG"
	case *doc.Module:
		return "MOD"
	case *doc.DerivedType:
		return "TYPE"
	case *doc.Procedure:
		if n.IsFunction() {
			return "FUNC"
		}
		return "SUB"
	default:
		return "UNIT"
	}
}

func formatType(d *doc.Declaration) string {
	if dims := d.Dimension(); dims != "" {
		return fmt.Sprintf("%s:%s(%s)", d.TypeString(), d.Name, dims)
	}
	return fmt.Sprintf("%s:%s", d.TypeString(), d.Name)
}

func formatAttributes(d *doc.Declaration, verbose bool) string {
	var parts []string
	for _, a := range d.Attributes {
		if a.IsDimension() && !verbose {
			continue
		}
		parts = append(parts, strings.ToUpper(string(a)))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
