package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/soypat/f90doc/xref"
)

// IndexCmd records the derived types defined by the modules of the given
// files in the type index so that type(name) declarations can be linked
// to their defining module.
type IndexCmd struct {
	Files []string `arg:"" help:"Fortran source files" type:"existingfile"`
	Out   string   `help:"Index file path. Defaults to the configured type index" short:"o"`
	Fresh bool     `help:"Discard the existing index instead of updating it"`
	Deps  bool     `help:"Print the modules each parsed module depends on through derived types"`
}

func (cmd *IndexCmd) Run(ctx *Context) error {
	out := cmd.Out
	if out == "" {
		out = ctx.Config.TypeIndex
	}
	files, err := ctx.parseFiles(cmd.Files)
	if err != nil {
		return err
	}

	ti := xref.New()
	for _, f := range files {
		ti.Add(f.Modules...)
	}
	if !cmd.Fresh {
		previous, err := xref.Load(out)
		if err != nil {
			return fmt.Errorf("failed to load type index: %w", err)
		}
		ti.Merge(previous)
	}
	if err := ti.Save(out); err != nil {
		return fmt.Errorf("failed to save type index: %w", err)
	}
	if !ctx.Quiet {
		color.New(color.FgGreen).Fprintf(ctx.Stderr, "Indexed %d type(s) in %s\n", len(ti.Types), out)
	}

	if !cmd.Deps {
		return nil
	}
	for _, f := range files {
		for _, m := range f.Modules {
			deps := ti.Dependencies(m)
			modules := make([]string, 0, len(deps))
			for module := range deps {
				if module != "" && module != m.Name {
					modules = append(modules, module)
				}
			}
			slices.Sort(modules)
			fmt.Fprintf(ctx.Stdout, "%s: %s\n", m.Name, strings.Join(modules, " "))
			if unresolved := deps[""]; len(unresolved) > 0 {
				slices.Sort(unresolved)
				ctx.Logger.Warn("unresolved derived types", "module", m.Name, "types", unresolved)
			}
		}
	}
	return nil
}
