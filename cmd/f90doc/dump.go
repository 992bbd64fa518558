package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/soypat/f90doc/doc"
)

// DumpCmd prints the documentation model of each file.
type DumpCmd struct {
	Files  []string `arg:"" help:"Fortran source files" type:"existingfile"`
	Format string   `help:"Output format (yaml, json, tree). Defaults to the configured format" short:"f"`
	Group  bool     `help:"Merge declarations sharing type, attributes and documentation" short:"g"`
}

func (cmd *DumpCmd) Run(ctx *Context) error {
	format := cmd.Format
	if format == "" {
		format = ctx.Config.Format
	}
	switch format {
	case "yaml", "json", "tree":
	default:
		return fmt.Errorf("%w: unknown format '%s': must be one of yaml, json, tree", errInvalidFlag, format)
	}

	files, err := ctx.parseFiles(cmd.Files)
	if err != nil {
		return err
	}
	if cmd.Group {
		for _, f := range files {
			groupFile(f, *ctx.Config.MergeNameBudget)
		}
	}
	ctx.status("Parsed %d file(s)", len(files))
	return writeFiles(ctx.Stdout, files, format)
}

func writeFiles(w io.Writer, files []*doc.File, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	case "tree":
		for _, f := range files {
			if err := doc.Fprint(w, f, doc.NotNilFilter); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return nil
	}
	data, err := yaml.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// groupFile merges module variables, derived type elements and procedure
// arguments into declaration groups. Interfaces also get the merged arguments
// of their member procedures.
func groupFile(f *doc.File, budget int) {
	procs := append(slices.Clone(f.Subroutines), f.Functions...)
	for _, prog := range f.Programs {
		procs = append(append(procs, prog.Subroutines...), prog.Functions...)
	}
	for _, m := range f.Modules {
		m.Variables = doc.GroupDeclarations(m.Variables, budget)
		for _, t := range m.DerivedTypes {
			t.Elements = doc.GroupDeclarations(t.Elements, budget)
		}
		for _, iface := range m.Interfaces {
			iface.MergedArguments, _ = doc.InterfaceArguments(iface, budget)
			procs = append(procs, iface.Procedures()...)
		}
		procs = append(append(procs, m.Subroutines...), m.Functions...)
	}
	for _, proc := range procs {
		groupArguments(proc, budget)
	}
}

// groupArguments replaces the arguments of proc by their groups. A group
// takes the position of its first member and callbacks keep their own.
func groupArguments(proc *doc.Procedure, budget int) {
	merged, callbacks := doc.GroupArguments(proc.Arguments, budget)
	args := make([]doc.Argument, 0, len(merged)+len(callbacks))
	for _, d := range merged {
		first, _, _ := strings.Cut(d.Name, ", ")
		args = append(args, doc.Argument{Declaration: d, Position: proc.Argument(first).Position})
	}
	for _, cb := range callbacks {
		args = append(args, *proc.Argument(cb.Name))
	}
	slices.SortStableFunc(args, func(a, b doc.Argument) int { return a.Position - b.Position })
	proc.Arguments = args
}
