// Package morph compiles a statically parsed test file into Feature/Scenario
// text without executing it.
package morph

import (
	"github.com/whaaaley/cynthia/internal/syntax"
)

// Node is the call tree of a test file: a call name, the string and numeric
// literal arguments as written, and the calls made inside its callbacks.
type Node struct {
	Name     string
	Literals []string
	Children []Node
}

// Build constructs the node for call, recursing into every function-valued
// argument.
func Build(call *syntax.Call) Node {
	n := Node{Name: call.Name()}
	for _, arg := range call.Args {
		switch a := arg.(type) {
		case *syntax.Literal:
			if a.Kind == syntax.LiteralString || a.Kind == syntax.LiteralNumber {
				n.Literals = append(n.Literals, a.Raw())
			}
		case *syntax.Func:
			for _, child := range a.Calls() {
				n.Children = append(n.Children, Build(child))
			}
		}
	}
	return n
}

// BuildFile builds one node per top-level call statement.
func BuildFile(f *syntax.File) []Node {
	calls := f.Calls()
	nodes := make([]Node, 0, len(calls))
	for _, c := range calls {
		nodes = append(nodes, Build(c))
	}
	return nodes
}

func (n Node) literal(i int) string {
	if i < 0 || i >= len(n.Literals) {
		return ""
	}
	return n.Literals[i]
}

func (n Node) find(match func(Node) bool) (Node, bool) {
	for _, c := range n.Children {
		if match(c) {
			return c, true
		}
	}
	return Node{}, false
}
