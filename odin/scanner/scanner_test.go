package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/odinsyntax/odin/codebase"
	"github.com/dhamidi/odinsyntax/odin/parser"
)

func newScanner(t *testing.T, root string, workers int) (*Scanner, *codebase.Codebase) {
	t.Helper()
	p, err := parser.NewDefault()
	require.NoError(t, err)
	c := codebase.New(root, p)
	return New(c, workers), c
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func wait(t *testing.T, s *Scanner, id string) *Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := s.Wait(ctx, id)
	require.NoError(t, err)
	return result
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.odin"), "package a\n\nx := 1\n")
	writeFile(t, filepath.Join(dir, "sub", "b.odin"), "package a\n\nf :: proc() {\n\tfoo(a\n}\n")
	writeFile(t, filepath.Join(dir, "sub", "c.odin"), "package a\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# a\n")
	writeFile(t, filepath.Join(dir, ".cache", "d.odin"), "}}}")

	s, c := newScanner(t, dir, 3)
	result := wait(t, s, s.Submit(Request{Path: dir}))

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Progress)
	assert.Equal(t, 100, result.ProgressPercent())
	require.Len(t, result.Files, 3)
	assert.Equal(t, filepath.Join(dir, "a.odin"), result.Files[0].Path)
	assert.True(t, result.Files[0].OK())
	assert.Greater(t, result.Files[0].Nodes, 1)

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, filepath.Join(dir, "sub", "b.odin"), failed[0].Path)
	assert.Equal(t, `missing ")"`, failed[0].Diagnostics[0].Message)

	assert.Len(t, c.Paths(), 3, "scanned files are kept in the codebase")
}

func TestScanFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.odin")
	writeFile(t, good, "x := 1\n")

	s, _ := newScanner(t, dir, 0)
	result := wait(t, s, s.Submit(Request{Files: []string{good, filepath.Join(dir, "gone.odin")}}))

	assert.Equal(t, StatusCompleted, result.Status)
	require.Len(t, result.Files, 2)
	assert.True(t, result.Files[1].OK())
	assert.NotEmpty(t, result.Files[0].Err)
}

func TestScanNothing(t *testing.T) {
	s, _ := newScanner(t, t.TempDir(), 2)
	result := wait(t, s, s.Submit(Request{}))
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "no .odin files to scan", result.Error)
}

func TestListAndGet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.odin"), "x := 1\n")
	s, _ := newScanner(t, dir, 1)

	first := s.Submit(Request{Path: dir})
	second := s.Submit(Request{Path: dir})
	wait(t, s, second)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, second, list[1].ID)

	_, ok := s.Get("nope")
	assert.False(t, ok)
	_, err := s.Wait(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSubmitBeyondQueue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.odin"), "x := 1\n")
	s, _ := newScanner(t, dir, 1)

	const n = 150
	submitted := make(chan []string, 1)
	go func() {
		var ids []string
		for range n {
			ids = append(ids, s.Submit(Request{Path: dir}))
		}
		submitted <- ids
	}()

	var ids []string
	select {
	case ids = <-submitted:
	case <-time.After(30 * time.Second):
		t.Fatal("Submit blocked while the queue was full")
	}
	require.Len(t, ids, n)

	result := wait(t, s, ids[n-1])
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Len(t, s.List(), n)
}
