package codebase

import (
	"fmt"
	"strconv"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

// Diagnostic is a syntax problem in a file, as a byte range.
type Diagnostic struct {
	Start   int
	End     int
	Message string
}

const maxQuoted = 24

// Diagnostics reports every ERROR and MISSING node of the file's tree
// in source order.
func (f *File) Diagnostics() []Diagnostic {
	var out []Diagnostic
	f.Tree.Root.Walk(func(n *parser.Node) bool {
		switch {
		case n.Missing:
			out = append(out, Diagnostic{n.Start, n.End, "missing " + strconv.Quote(n.Kind)})
			return false
		case n.Error && n.Len() == 0:
			out = append(out, Diagnostic{n.Start, n.End, "syntax error: expected more input"})
			return false
		case n.Error:
			text := n.Text(f.Content)
			if len(text) > maxQuoted {
				text = text[:maxQuoted] + "..."
			}
			out = append(out, Diagnostic{n.Start, n.End, fmt.Sprintf("syntax error: unexpected %q", text)})
			return false
		}
		return true
	})
	return out
}
