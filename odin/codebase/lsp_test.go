package codebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

func newTestServer(t *testing.T) *LSPServer {
	t.Helper()
	p, err := parser.NewDefault()
	require.NoError(t, err)
	ls := NewLSPServer("test", p)
	ls.codebase = New(".", p)
	return ls
}

func rng(sl, sc, el, ec protocol.UInteger) *protocol.Range {
	return &protocol.Range{
		Start: protocol.Position{Line: sl, Character: sc},
		End:   protocol.Position{Line: el, Character: ec},
	}
}

func TestApplyChanges(t *testing.T) {
	ls := newTestServer(t)
	ls.codebase.UpdateFile("a.odin", []byte("a := 1\nb := 2\n"))

	f := ls.applyChanges("a.odin", []any{
		protocol.TextDocumentContentChangeEvent{Range: rng(1, 5, 1, 6), Text: "20"},
		protocol.TextDocumentContentChangeEvent{Range: rng(2, 0, 2, 0), Text: "c := 3\n"},
	})
	require.NotNil(t, f)
	assert.Equal(t, "a := 1\nb := 20\nc := 3\n", string(f.Content))
	assert.Equal(t, ls.parser.Parse(f.Content).String(), f.Tree.String())

	f = ls.applyChanges("a.odin", []any{protocol.TextDocumentContentChangeEventWhole{Text: "z := 0\n"}})
	assert.Equal(t, "z := 0\n", string(f.Content))

	f = ls.applyChanges("new.odin", []any{protocol.TextDocumentContentChangeEvent{Range: rng(0, 0, 0, 0), Text: "q := 1\n"}})
	assert.Equal(t, "q := 1\n", string(f.Content))
}

func TestProtocolDiagnostics(t *testing.T) {
	ls := newTestServer(t)
	f := ls.codebase.UpdateFile("a.odin", []byte("f :: proc() {\n\tfoo(a\n}\n"))

	diags := toProtocolDiagnostics(f)
	require.Len(t, diags, 1)
	assert.Equal(t, *rng(2, 0, 2, 0), diags[0].Range)
	assert.Equal(t, `missing ")"`, diags[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)

	clean := ls.codebase.UpdateFile("b.odin", []byte("x := 1\n"))
	assert.NotNil(t, toProtocolDiagnostics(clean), "clean files publish an empty list")
}

func TestDocumentSymbols(t *testing.T) {
	ls := newTestServer(t)
	f := ls.codebase.UpdateFile("s.odin", []byte(sample))

	syms := toDocumentSymbols(f, f.Symbols())
	require.Len(t, syms, 6)
	point := syms[2]
	assert.Equal(t, "Point", point.Name)
	assert.Equal(t, protocol.SymbolKindStruct, point.Kind)
	assert.Equal(t, *rng(4, 0, 6, 1), point.Range)
	assert.Equal(t, *rng(4, 0, 4, 5), point.SelectionRange)
	require.Len(t, syms[4].Children, 1)
	assert.Equal(t, protocol.SymbolKindFunction, syms[4].Children[0].Kind)
}

func TestURIToPath(t *testing.T) {
	path, err := uriToPath("file:///tmp/a%20b/x.odin")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a b/x.odin", path)

	path, err = uriToPath("untitled:1")
	require.NoError(t, err)
	assert.Equal(t, "untitled:1", path)
}
