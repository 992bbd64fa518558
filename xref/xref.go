// Package xref maps derived types to the modules defining them so that
// declarations of the form type(name) can be linked across files.
package xref

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/soypat/f90doc/doc"
)

// TypeIndex maps lower cased derived type names to the name of their defining module.
type TypeIndex struct {
	Types map[string]string `yaml:"types" json:"types"`
}

// New returns an empty index.
func New() *TypeIndex {
	return &TypeIndex{Types: make(map[string]string)}
}

// Add records the derived types of modules. Entries already in the index
// are replaced.
func (ti *TypeIndex) Add(modules ...*doc.Module) {
	if ti.Types == nil {
		ti.Types = make(map[string]string)
	}
	for _, m := range modules {
		for _, t := range m.DerivedTypes {
			ti.Types[doc.FoldName(t.Name)] = m.Name
		}
	}
}

// Merge adds the entries of other that are missing from ti.
func (ti *TypeIndex) Merge(other *TypeIndex) {
	if other == nil {
		return
	}
	if ti.Types == nil {
		ti.Types = make(map[string]string, len(other.Types))
	}
	for name, module := range other.Types {
		if _, ok := ti.Types[name]; !ok {
			ti.Types[name] = module
		}
	}
}

// Names returns the indexed type names in lexical order.
func (ti *TypeIndex) Names() []string {
	return slices.Sorted(maps.Keys(ti.Types))
}

// Lookup returns the module defining the derived type called name.
func (ti *TypeIndex) Lookup(name string) (module string, ok bool) {
	module, ok = ti.Types[doc.FoldName(strings.TrimSpace(name))]
	return module, ok
}

// Resolve returns the module defining the derived type of a declaration
// type such as "type(Atoms)" or "class(dictionary)".
func (ti *TypeIndex) Resolve(typ string) (module string, ok bool) {
	name, ok := DerivedTypeName(typ)
	if !ok {
		return "", false
	}
	return ti.Lookup(name)
}

// DerivedTypeName extracts the lower cased type name from "type(name)" or
// "class(name)". ok is false for intrinsic types.
func DerivedTypeName(typ string) (name string, ok bool) {
	typ = doc.FoldName(strings.TrimSpace(typ))
	for _, prefix := range []string{"type", "class"} {
		rest, found := strings.CutPrefix(typ, prefix)
		if !found {
			continue
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
			return "", false
		}
		name = strings.TrimSpace(rest[1 : len(rest)-1])
		return name, name != "" && name != "*"
	}
	return "", false
}

// Dependencies returns the derived types used by m grouped by their defining
// module. Types of procedure arguments, return values and type elements are
// considered, as are the types m defines itself. Unindexed types are grouped
// under the empty module name.
func (ti *TypeIndex) Dependencies(m *doc.Module) map[string][]string {
	deps := make(map[string][]string)
	seen := make(map[string]bool)
	add := func(types ...string) {
		for _, typ := range types {
			name, ok := DerivedTypeName(typ)
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			module := ti.Types[name]
			deps[module] = append(deps[module], name)
		}
	}
	procs := append(slices.Clone(m.Subroutines), m.Functions...)
	for _, iface := range m.Interfaces {
		procs = append(procs, iface.Procedures()...)
	}
	for _, proc := range procs {
		for _, arg := range proc.Arguments {
			add(arg.Type...)
		}
		if proc.ReturnValue != nil {
			add(proc.ReturnValue.Type...)
		}
	}
	for _, t := range m.DerivedTypes {
		add("type(" + t.Name + ")")
		for _, el := range t.Elements {
			add(el.Type...)
		}
	}
	return deps
}

// Load reads an index persisted by [TypeIndex.Save]. A missing file yields
// an empty index.
func Load(path string) (*TypeIndex, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	} else if err != nil {
		return nil, err
	}
	ti := New()
	if err := yaml.Unmarshal(data, ti); err != nil {
		return nil, fmt.Errorf("decoding type index %s: %w", path, err)
	}
	if ti.Types == nil {
		ti.Types = make(map[string]string)
	}
	return ti, nil
}

// Save writes the index to path as YAML.
func (ti *TypeIndex) Save(path string) error {
	data, err := yaml.Marshal(ti)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
