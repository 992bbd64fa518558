package doc

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a documentation tree in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor
// w for each of the children of node, followed by a call of w.Visit(nil).
//
// Children are visited in the order returned by [Node.Children].
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range node.Children() {
		Walk(v, child)
	}
	v.Visit(nil)
}

// Inspect traverses a documentation tree in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the children of node, followed by a
// call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Path is the chain of nodes from a walk root down to a visited node.
type Path []Node

// Module returns the innermost module on the path, or nil.
func (p Path) Module() *Module {
	for i := len(p) - 1; i >= 0; i-- {
		if m, ok := p[i].(*Module); ok {
			return m
		}
	}
	return nil
}

// Scope returns the innermost program, module, procedure or derived type
// enclosing the last node of the path, or nil.
func (p Path) Scope() Node {
	for i := len(p) - 2; i >= 0; i-- {
		switch n := p[i].(type) {
		case *Program, *Module, *Procedure, *DerivedType:
			return n
		}
	}
	return nil
}

// WalkPath calls f for every node under root together with the path leading
// to it, root included. Returning false from f skips the node's children.
func WalkPath(root Node, f func(path Path) bool) {
	var path Path
	Inspect(root, func(n Node) bool {
		if n == nil {
			path = path[:len(path)-1]
			return false
		}
		path = append(path, n)
		if !f(path) {
			path = path[:len(path)-1]
			return false
		}
		return true
	})
}
