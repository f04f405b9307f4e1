package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

// TreeJSONEncoder writes a tree as nested JSON objects. Leaves carry
// their source text.
type TreeJSONEncoder struct {
	w    io.Writer
	tree *parser.Tree
}

func NewTreeJSONEncoder(w io.Writer) *TreeJSONEncoder {
	return &TreeJSONEncoder{w: w}
}

func (e *TreeJSONEncoder) Encode(tree *parser.Tree) error {
	e.tree = tree
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *TreeJSONEncoder) MarshalText() ([]byte, error) {
	lines := parser.NewLineIndex(e.tree.Source)
	return json.MarshalIndent(nodeToJSON(e.tree.Root, e.tree.Source, lines), "", "  ")
}

type astJSONNode struct {
	Kind     string         `json:"kind"`
	Field    string         `json:"field,omitempty"`
	Named    bool           `json:"named"`
	Span     astJSONSpan    `json:"span"`
	Text     string         `json:"text,omitempty"`
	Error    bool           `json:"error,omitempty"`
	Missing  bool           `json:"missing,omitempty"`
	Extra    bool           `json:"extra,omitempty"`
	Children []*astJSONNode `json:"children,omitempty"`
}

type astJSONSpan struct {
	Start astJSONPosition `json:"start"`
	End   astJSONPosition `json:"end"`
}

type astJSONPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func toJSONPosition(p parser.Position) astJSONPosition {
	return astJSONPosition{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func nodeToJSON(n *parser.Node, src []byte, lines *parser.LineIndex) *astJSONNode {
	jn := &astJSONNode{
		Kind:    n.Kind,
		Field:   n.Field,
		Named:   n.Named,
		Error:   n.Error,
		Missing: n.Missing,
		Extra:   n.Extra,
		Span: astJSONSpan{
			Start: toJSONPosition(lines.Position(n.Start)),
			End:   toJSONPosition(lines.Position(n.End)),
		},
	}

	if n.IsLeaf() {
		jn.Text = n.Text(src)
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*astJSONNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = nodeToJSON(child, src, lines)
		}
	}

	return jn
}
