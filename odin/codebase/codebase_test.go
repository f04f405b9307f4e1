package codebase

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

func newCodebase(t *testing.T, root string) *Codebase {
	t.Helper()
	p, err := parser.NewDefault()
	require.NoError(t, err)
	return New(root, p)
}

const sample = "package main\n\nimport \"core:fmt\"\n\nPoint :: struct {\n\tx: int,\n}\n\nmain :: proc() {\n\tfmt.println(\"hi\")\n}\n\nforeign lib {\n\tputs :: proc(s: cstring) ---\n}\n\nN :: 3\n"

func TestEditFile(t *testing.T) {
	c := newCodebase(t, ".")
	c.UpdateFile("a.odin", []byte("a := 1\nb := 2\n"))

	f, err := c.EditFile("a.odin", 12, 13, "20")
	require.NoError(t, err)
	assert.Equal(t, "a := 1\nb := 20\n", string(f.Content))
	assert.Equal(t, c.parser.Parse(f.Content).String(), f.Tree.String())
	assert.Same(t, f, c.GetFile("a.odin"))

	_, err = c.EditFile("missing.odin", 0, 0, "x")
	assert.Error(t, err)
	_, err = c.EditFile("a.odin", 10, 100, "x")
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	c := newCodebase(t, ".")
	c.UpdateFile("b.odin", nil)
	c.UpdateFile("a.odin", nil)
	c.UpdateFile("c.odin", nil)
	c.RemoveFile("c.odin")
	assert.Equal(t, []string{"a.odin", "b.odin"}, c.Paths())
	assert.Nil(t, c.GetFile("c.odin"))
}

func TestDiagnostics(t *testing.T) {
	c := newCodebase(t, ".")
	tests := []struct {
		name string
		src  string
		want []Diagnostic
	}{
		{"clean", "x := 1\n", nil},
		{"missing value", "x := \ny := 2\n", []Diagnostic{{4, 4, "syntax error: expected more input"}}},
		{"missing paren", "f :: proc() {\n\tfoo(a\n}\n", []Diagnostic{{21, 21, `missing ")"`}}},
		{"skipped text", "x := $$ 1\ny := 2\n", []Diagnostic{{0, 16, fmt.Sprintf("syntax error: unexpected %q", "x := $$ 1\ny := 2")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := c.UpdateFile("d.odin", []byte(tt.src))
			assert.Equal(t, tt.want, f.Diagnostics())
		})
	}
}

func TestSymbols(t *testing.T) {
	c := newCodebase(t, ".")
	f := c.UpdateFile("s.odin", []byte(sample))

	type sym struct {
		name string
		kind SymbolKind
	}
	var got []sym
	for _, s := range f.Symbols() {
		got = append(got, sym{s.Name, s.Kind})
	}
	assert.Equal(t, []sym{
		{"main", SymbolPackage},
		{`"core:fmt"`, SymbolImport},
		{"Point", SymbolStruct},
		{"main", SymbolProcedure},
		{"foreign lib", SymbolForeign},
		{"N", SymbolConstant},
	}, got)

	foreign := f.Symbols()[4]
	require.Len(t, foreign.Children, 1)
	assert.Equal(t, "puts", foreign.Children[0].Name)
	assert.Equal(t, SymbolProcedure, foreign.Children[0].Kind)
}

func TestFolds(t *testing.T) {
	c := newCodebase(t, ".")
	f := c.UpdateFile("s.odin", []byte(sample+"/*\n note\n*/\n"))
	assert.Equal(t, []Fold{
		{StartLine: 5, EndLine: 7},
		{StartLine: 9, EndLine: 11},
		{StartLine: 13, EndLine: 15},
		{StartLine: 18, EndLine: 20, Comment: true},
	}, f.Folds())
}

func TestPositions(t *testing.T) {
	c := newCodebase(t, ".")
	f := c.UpdateFile("p.odin", []byte("s := \"é😀x\"\n"))

	line, char := f.Position(12)
	assert.Equal(t, 0, line)
	assert.Equal(t, 9, char)
	assert.Equal(t, 12, f.Offset(0, 9))
	assert.Equal(t, 14, f.Offset(0, 100))
	assert.Equal(t, 15, f.Offset(5, 0))

	line, char = f.Position(15)
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, char)
}

func TestScanAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.odin"), []byte("x := 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "b.odin"), []byte("y := 2\n"), 0o644))

	c := newCodebase(t, dir)
	require.NoError(t, c.ScanAll())
	assert.Equal(t, []string{filepath.Join(dir, "a.odin")}, c.Paths())
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.odin")
	require.NoError(t, os.WriteFile(path, []byte("x := 1\n"), 0o644))

	c := newCodebase(t, dir)
	var notified []string
	w := NewFileWatcher(c, time.Hour, func(p string, f *File) {
		notified = append(notified, p)
	})

	assert.Equal(t, []string{path}, w.Scan())
	require.NotNil(t, c.GetFile(path))
	assert.Empty(t, w.Scan())

	require.NoError(t, os.WriteFile(path, []byte("x := 2\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Equal(t, []string{path}, w.Scan())
	assert.Equal(t, "x := 2\n", string(c.GetFile(path).Content))

	require.NoError(t, os.Remove(path))
	assert.Equal(t, []string{path}, w.Scan())
	assert.Nil(t, c.GetFile(path))
	assert.Equal(t, []string{path, path, path}, notified)
}
