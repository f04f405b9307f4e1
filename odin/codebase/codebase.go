package codebase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

var log = commonlog.GetLogger("odinsyntax.codebase")

// Ext is the extension of Odin source files.
const Ext = ".odin"

// Codebase holds the parsed Odin files below a root directory, keyed by
// path.
type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	parser  *parser.Parser
	files   *treemap.Map
}

// File is one parsed source file. A File is never modified after it is
// stored; edits replace it.
type File struct {
	Path    string
	Content []byte
	Tree    *parser.Tree
	Lines   *parser.LineIndex
}

func newFile(path string, tree *parser.Tree) *File {
	return &File{
		Path:    path,
		Content: tree.Source,
		Tree:    tree,
		Lines:   parser.NewLineIndex(tree.Source),
	}
}

func New(rootDir string, p *parser.Parser) *Codebase {
	return &Codebase{
		rootDir: rootDir,
		parser:  p,
		files:   treemap.NewWithStringComparator(),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) Parser() *parser.Parser {
	return c.parser
}

// ScanAll parses every .odin file below the root directory, skipping
// hidden directories.
func (c *Codebase) ScanAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != c.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Ext {
			if _, err := c.ScanFile(path); err != nil {
				log.Warningf("scan %s: %s", path, err)
			}
		}
		return nil
	})
}

func (c *Codebase) ScanFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.UpdateFile(path, content), nil
}

// UpdateFile replaces the content of path and parses it from scratch.
func (c *Codebase) UpdateFile(path string, content []byte) *File {
	f := newFile(path, c.parser.Parse(content))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files.Put(path, f)
	return f
}

// EditFile replaces the bytes start..end of path with text and reparses
// incrementally.
func (c *Codebase) EditFile(path string, start, end int, text string) (*File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.files.Get(path)
	if !ok {
		return nil, fmt.Errorf("%s: file not loaded", path)
	}
	old := v.(*File)
	if start < 0 || end < start || end > len(old.Content) {
		return nil, fmt.Errorf("%s: edit %d-%d out of range 0-%d", path, start, end, len(old.Content))
	}

	src, edit := parser.ApplyEdit(old.Content, start, end, text)
	f := newFile(path, c.parser.Reparse(old.Tree, src, edit))
	c.files.Put(path, f)
	log.Debugf("edit %s %d-%d -> %d bytes", path, start, end, len(text))
	return f, nil
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files.Remove(path)
}

func (c *Codebase) GetFile(path string) *File {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.files.Get(path); ok {
		return v.(*File)
	}
	return nil
}

// Paths returns the paths of all loaded files in sorted order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, c.files.Size())
	for _, k := range c.files.Keys() {
		paths = append(paths, k.(string))
	}
	return paths
}
