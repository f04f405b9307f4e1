package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

// LineEncoder writes one line per node, indented by depth:
//
//	variable_declaration 1:1-1:7
//	  identifier 1:1-1:2 "x"
//	  ":=" 1:3-1:5
//	  value: number 1:6-1:7 "1"
type LineEncoder struct {
	w     io.Writer
	tree  *parser.Tree
	lines *parser.LineIndex
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tree *parser.Tree) error {
	e.tree = tree
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	e.lines = parser.NewLineIndex(e.tree.Source)
	e.writeNode(&sb, e.tree.Root, 0)
	return []byte(sb.String()), nil
}

func (e *LineEncoder) writeNode(sb *strings.Builder, n *parser.Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if n.Field != "" {
		sb.WriteString(n.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(e.label(n))
	fmt.Fprintf(sb, " %s-%s", e.lines.Position(n.Start), e.lines.Position(n.End))
	if n.IsLeaf() && n.Named && !n.Missing && !n.Error {
		fmt.Fprintf(sb, " %q", n.Text(e.tree.Source))
	}
	sb.WriteString("\n")

	for _, c := range n.Children {
		e.writeNode(sb, c, depth+1)
	}
}

func (e *LineEncoder) label(n *parser.Node) string {
	switch {
	case n.Missing:
		return fmt.Sprintf("MISSING %q", n.Kind)
	case n.Named:
		return n.Kind
	default:
		return fmt.Sprintf("%q", n.Kind)
	}
}
