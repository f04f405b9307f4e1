package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

// Encoder writes syntax trees in one output format.
type Encoder interface {
	Encode(tree *parser.Tree) error
}

// TextEncoder is an Encoder that can also render a tree without writing
// it.
type TextEncoder interface {
	Encoder
	encoding.TextMarshaler
}

// Formats lists the names NewEncoder accepts.
var Formats = []string{"sexp", "json", "tree"}

// NewEncoder returns the encoder called name writing to w.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "sexp":
		return NewSexpEncoder(w), nil
	case "json":
		return NewTreeJSONEncoder(w), nil
	case "tree":
		return NewLineEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", name)
	}
}

// SexpEncoder writes the S-expression form of a tree, one per line.
type SexpEncoder struct {
	w    io.Writer
	tree *parser.Tree
}

func NewSexpEncoder(w io.Writer) *SexpEncoder {
	return &SexpEncoder{w: w}
}

func (e *SexpEncoder) Encode(tree *parser.Tree) error {
	e.tree = tree
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *SexpEncoder) MarshalText() ([]byte, error) {
	return []byte(e.tree.String() + "\n"), nil
}
