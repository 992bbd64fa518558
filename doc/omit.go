package doc

import "strings"

// Rendering directives recognized on the first documentation line of a node.
const (
	// DirectiveOmit hides the node from all rendered output.
	DirectiveOmit = "OMIT"
	// DirectiveOmitShort hides the node from abbreviated output only.
	DirectiveOmitShort = "OMIT SHORT"
)

// Omit reports whether a renderer should skip n. short selects the
// abbreviated rendering mode in which OMIT SHORT nodes are skipped too.
func Omit(n Node, short bool) bool {
	switch directive(Doc(n)) {
	case DirectiveOmit:
		return true
	case DirectiveOmitShort:
		return short
	}
	return false
}

// Purpose returns the documentation of n without a leading directive line.
func Purpose(n Node) DocBlock {
	d := Doc(n)
	if directive(d) != "" {
		return d[1:]
	}
	return d
}

// Doc returns the documentation block owned by n.
func Doc(n Node) DocBlock {
	switch n := n.(type) {
	case *Program:
		return n.Doc
	case *Module:
		return n.Doc
	case *DerivedType:
		return n.Doc
	case *Interface:
		return n.Doc
	case *Procedure:
		return n.Doc
	case *Argument:
		if n.Procedure != nil {
			return n.Procedure.Doc
		}
		return n.Doc
	case *Declaration:
		return n.Doc
	}
	return nil
}

func directive(d DocBlock) string {
	if len(d) == 0 {
		return ""
	}
	switch first := strings.TrimSpace(d[0]); first {
	case DirectiveOmit, DirectiveOmitShort:
		return first
	}
	return ""
}
