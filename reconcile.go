package f90doc

import (
	"slices"
	"strings"

	"github.com/soypat/f90doc/doc"
)

// reconcile keeps the declarations and callback procedures named in the
// formal parameter list of proc as its arguments, in parameter list order,
// and resolves the return value of functions. Other declarations are locals.
func reconcile(proc *doc.Procedure, decls []doc.Declaration, callbacks []*doc.Procedure) {
	position := make(map[string]int, len(proc.Params))
	for i, param := range proc.Params {
		if _, dup := position[lowerString(param)]; !dup {
			position[lowerString(param)] = i
		}
	}
	seen := make(map[string]bool)
	var args []doc.Argument
	add := func(d doc.Declaration, cb *doc.Procedure) {
		key := lowerString(d.Name)
		pos, isParam := position[key]
		if !isParam || seen[key] {
			return
		}
		seen[key] = true
		args = append(args, doc.Argument{Declaration: d, Position: pos, Procedure: cb})
	}
	for _, d := range decls {
		add(d, nil)
	}
	for _, cb := range callbacks {
		add(doc.Declaration{Name: cb.Name, Line: cb.Line}, cb)
	}
	slices.SortStableFunc(args, func(a, b doc.Argument) int { return a.Position - b.Position })
	proc.Arguments = args
	if proc.IsFunction() {
		resolveReturnValue(proc, decls, position)
	}
}

// resolveReturnValue replaces the placeholder return value of a function by
// the declaration of its result variable. The result variable is the one
// named by the RESULT clause when present. Otherwise a declaration named
// like the function is preferred over a local merely containing its name. The
// placeholder, carrying the header type if any, stays when nothing matches.
func resolveReturnValue(proc *doc.Procedure, decls []doc.Declaration, params map[string]int) {
	var found int
	if proc.ResultName != "" {
		found = slices.IndexFunc(decls, func(d doc.Declaration) bool {
			return strings.EqualFold(d.Name, proc.ResultName)
		})
	} else {
		found = slices.IndexFunc(decls, func(d doc.Declaration) bool {
			return strings.EqualFold(d.Name, proc.Name)
		})
		if found < 0 {
			name := lowerString(proc.Name)
			found = slices.IndexFunc(decls, func(d doc.Declaration) bool {
				_, isParam := params[lowerString(d.Name)]
				return !isParam && strings.Contains(lowerString(d.Name), name)
			})
		}
	}
	if found < 0 {
		return
	}
	rv := decls[found]
	rv.Doc = slices.Clone(rv.Doc)
	rv.Attributes = slices.Clone(rv.Attributes)
	proc.ReturnValue = &rv
}
