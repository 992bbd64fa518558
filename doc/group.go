package doc

import (
	"slices"
	"strings"
)

// DefaultNameBudget is the approximate combined name length at which a
// merged declaration list is split into another entry.
const DefaultNameBudget = 30

// GroupDeclarations merges declarations sharing type, attributes and
// documentation into synthetic entries whose Name is the comma separated list
// of member names. A group's names are split into chunks once their combined
// length reaches budget; budget <= 0 disables chunking. Groups are ordered by
// the first appearance of any member. The input is not modified and a name
// seen twice keeps its first declaration.
func GroupDeclarations(decls []Declaration, budget int) []Declaration {
	type group struct {
		decls []*Declaration
	}
	var (
		groups []*group
		byKey  = make(map[string]*group)
		seen   = make(map[string]bool)
	)
	for i := range decls {
		d := &decls[i]
		lname := FoldName(d.Name)
		if seen[lname] {
			continue
		}
		seen[lname] = true
		key := groupKey(d)
		g := byKey[key]
		if g == nil {
			g = &group{}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.decls = append(g.decls, d)
	}

	var merged []Declaration
	for _, g := range groups {
		names := make([]string, len(g.decls))
		for i, d := range g.decls {
			names[i] = d.Name
		}
		for _, chunk := range chunkNames(names, budget) {
			m := cloneDeclaration(*g.decls[0])
			m.Name = strings.Join(chunk, ", ")
			merged = append(merged, m)
		}
	}
	return merged
}

// GroupArguments merges plain arguments like [GroupDeclarations] and returns
// the procedure dummy arguments separately in their original order.
func GroupArguments(args []Argument, budget int) (merged []Declaration, callbacks []*Procedure) {
	decls := make([]Declaration, 0, len(args))
	for i := range args {
		if args[i].Procedure != nil {
			callbacks = append(callbacks, args[i].Procedure)
			continue
		}
		decls = append(decls, args[i].Declaration)
	}
	return GroupDeclarations(decls, budget), callbacks
}

// InterfaceArguments collects the arguments of every procedure in the
// interface and merges arguments of the same name into a single declaration:
// differing types are kept as alternatives in Type and differing dimension
// attributes are joined with " or ", led by "scalar" when some members are not arrays.
// The result is then grouped as by [GroupDeclarations]. Procedure dummy
// arguments are returned separately.
func InterfaceArguments(iface *Interface, budget int) (merged []Declaration, callbacks []*Procedure) {
	type entry struct {
		name    string
		members []*Declaration
	}
	var (
		entries []*entry
		byName  = make(map[string]*entry)
	)
	for _, proc := range iface.Procedures() {
		for i := range proc.Arguments {
			arg := &proc.Arguments[i]
			if arg.Procedure != nil {
				callbacks = append(callbacks, arg.Procedure)
				continue
			}
			lname := FoldName(arg.Name)
			e := byName[lname]
			if e == nil {
				e = &entry{name: arg.Name}
				byName[lname] = e
				entries = append(entries, e)
			}
			dup := slices.ContainsFunc(e.members, func(d *Declaration) bool {
				return strings.EqualFold(d.TypeString(), arg.TypeString()) && sameAttributes(d.Attributes, arg.Attributes)
			})
			if !dup {
				e.members = append(e.members, &arg.Declaration)
			}
		}
	}

	decls := make([]Declaration, 0, len(entries))
	for _, e := range entries {
		d := cloneDeclaration(*e.members[0])
		d.Type = nil
		d.Attributes = nil
		var dims []Attribute
		hasScalar := false
		for _, m := range e.members {
			for _, t := range m.Type {
				if !slices.ContainsFunc(d.Type, func(s string) bool { return strings.EqualFold(s, t) }) {
					d.Type = append(d.Type, t)
				}
			}
			isArray := false
			for _, a := range m.Attributes {
				if a.IsDimension() {
					isArray = true
					if !slices.Contains(dims, a) {
						dims = append(dims, a)
					}
				} else if !slices.Contains(d.Attributes, a) {
					d.Attributes = append(d.Attributes, a)
				}
			}
			hasScalar = hasScalar || !isArray
		}
		if len(dims) > 0 {
			if hasScalar {
				dims = append([]Attribute{"scalar"}, dims...)
			}
			parts := make([]string, len(dims))
			for i, a := range dims {
				parts[i] = string(a)
			}
			d.Attributes = append(d.Attributes, Attribute(strings.Join(parts, " or ")))
		}
		decls = append(decls, d)
	}
	return GroupDeclarations(decls, budget), callbacks
}

func chunkNames(names []string, budget int) [][]string {
	if budget <= 0 {
		return [][]string{names}
	}
	var chunks [][]string
	for len(names) > 0 {
		n, length := 0, 0
		for length < budget && n < len(names) {
			length += len(names[n])
			n++
		}
		chunks = append(chunks, names[:n:n])
		names = names[n:]
	}
	return chunks
}

func groupKey(d *Declaration) string {
	var sb strings.Builder
	for _, t := range d.Type {
		sb.WriteString(FoldName(t))
		sb.WriteByte('|')
	}
	sb.WriteByte(0)
	// Attributes form a set: "intent(in), optional" equals "optional, intent(in)".
	attrs := make([]string, len(d.Attributes))
	for i, a := range d.Attributes {
		attrs[i] = FoldName(string(a))
	}
	slices.Sort(attrs)
	for _, a := range attrs {
		sb.WriteString(a)
		sb.WriteByte('|')
	}
	sb.WriteByte(0)
	sb.WriteString(d.Doc.String())
	return sb.String()
}

func sameAttributes(a, b []Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := slices.Clone(a), slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

func cloneDeclaration(d Declaration) Declaration {
	d.Type = slices.Clone(d.Type)
	d.Attributes = slices.Clone(d.Attributes)
	d.Doc = slices.Clone(d.Doc)
	return d
}
