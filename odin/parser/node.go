package parser

import (
	"strconv"
	"strings"
)

// Node is a concrete syntax tree node. Children are ordered by offset and
// cover the node's byte range together with the whitespace between them.
// Nodes hold no parent pointers.
type Node struct {
	// Kind is the rule or alias name, the literal text of an anonymous
	// token, or "ERROR".
	Kind  string
	Named bool
	// Field is the label the parent rule gives this child, if any.
	Field    string
	Start    int
	End      int
	Children []*Node

	// Error marks text that could not be derived, and zero-width
	// placeholders for missing operands.
	Error bool
	// Missing marks a zero-width token inserted to close a group.
	Missing bool
	// Extra marks comments, which may appear between any two tokens.
	Extra bool

	// Symbol is the grammar symbol the node was built from, or -1.
	Symbol int
	hidden bool
	// flat is the number of children the node contributes once hidden
	// nodes are spliced into their parent.
	flat int
}

const errorKind = "ERROR"

func newNode(kind string, named bool, sym, start, end int, children []*Node, hidden bool) *Node {
	n := &Node{
		Kind:     kind,
		Named:    named,
		Start:    start,
		End:      end,
		Children: children,
		Symbol:   sym,
		hidden:   hidden,
		flat:     1,
	}
	if hidden {
		n.flat = 0
		for _, c := range children {
			n.flat += c.flat
		}
	}
	return n
}

func newError(start, end int, children []*Node) *Node {
	n := newNode(errorKind, true, -1, start, end, children, false)
	n.Error = true
	return n
}

// Text returns the source text the node spans.
func (n *Node) Text(src []byte) string {
	return string(src[n.Start:n.End])
}

// Len is the byte length of the node.
func (n *Node) Len() int { return n.End - n.Start }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// NamedChildren returns the named children, including errors.
func (n *Node) NamedChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Named || c.Error {
			out = append(out, c)
		}
	}
	return out
}

// ChildByField returns the first child labelled field.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child labelled field.
func (n *Node) ChildrenByField(field string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first child of the given kind.
func (n *Node) ChildOfKind(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// HasError reports whether the subtree contains an error or a missing
// token.
func (n *Node) HasError() bool {
	found := false
	n.Walk(func(c *Node) bool {
		if c.Error || c.Missing {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits the subtree in pre-order. Returning false from visit skips
// the node's children.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Leaves returns the nodes without children in source order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.IsLeaf() {
			out = append(out, c)
		}
		return true
	})
	return out
}

// DescendantAt returns the smallest named node containing offset.
func (n *Node) DescendantAt(offset int) *Node {
	cur := n
	for {
		var next *Node
		for _, c := range cur.Children {
			if (c.Named || c.Error) && c.Start <= offset && offset < c.End {
				next = c
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

// Equal compares two subtrees node by node: kind, field, range and
// flags. It is the equality incremental reparsing is checked against.
func (n *Node) Equal(o *Node) bool {
	if n.Kind != o.Kind || n.Named != o.Named || n.Field != o.Field ||
		n.Start != o.Start || n.End != o.End ||
		n.Error != o.Error || n.Missing != o.Missing || n.Extra != o.Extra ||
		len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// shifted copies the subtree moved by delta bytes.
func (n *Node) shifted(delta int) *Node {
	c := *n
	c.Start += delta
	c.End += delta
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, k := range n.Children {
			c.Children[i] = k.shifted(delta)
		}
	}
	return &c
}

// String renders the tree as an S-expression of named nodes:
//
//	(source_file (var_declaration name: (identifier) value: (ERROR)))
func (n *Node) String() string {
	var sb strings.Builder
	n.writeSexp(&sb)
	return sb.String()
}

func (n *Node) writeSexp(sb *strings.Builder) {
	if n.Missing {
		sb.WriteString("(MISSING ")
		if n.Named {
			sb.WriteString(n.Kind)
		} else {
			sb.WriteString(strconv.Quote(n.Kind))
		}
		sb.WriteString(")")
		return
	}
	sb.WriteString("(")
	sb.WriteString(n.Kind)
	for _, c := range n.Children {
		if !c.Named && !c.Error && !c.Missing {
			continue
		}
		sb.WriteString(" ")
		if c.Field != "" {
			sb.WriteString(c.Field)
			sb.WriteString(": ")
		}
		c.writeSexp(sb)
	}
	sb.WriteString(")")
}
