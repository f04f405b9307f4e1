package parser

import (
	"fmt"
	"sort"
)

// Position is a location in source text. Line and Column are 1-based;
// Column counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// LineIndex converts between byte offsets and line/column positions.
type LineIndex struct {
	starts []int
	size   int
}

// NewLineIndex records the line starts of src.
func NewLineIndex(src []byte) *LineIndex {
	idx := &LineIndex{starts: []int{0}, size: len(src)}
	for i, b := range src {
		if b == '\n' {
			idx.starts = append(idx.starts, i+1)
		}
	}
	return idx
}

// Lines is the number of lines, counting a final line without a
// terminating newline.
func (x *LineIndex) Lines() int { return len(x.starts) }

// LineStart returns the offset of the first byte of the 1-based line.
func (x *LineIndex) LineStart(line int) int {
	if line < 1 {
		return 0
	}
	if line > len(x.starts) {
		return x.size
	}
	return x.starts[line-1]
}

// Position returns the position of offset, clamped to the text.
func (x *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > x.size {
		offset = x.size
	}
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset })
	return Position{Offset: offset, Line: line, Column: offset - x.starts[line-1] + 1}
}

// Offset returns the byte offset of a 1-based line and column, clamped
// to the end of that line.
func (x *LineIndex) Offset(line, column int) int {
	start := x.LineStart(line)
	end := x.size
	if line >= 1 && line < len(x.starts) {
		end = x.starts[line] - 1
	}
	off := start + column - 1
	if off > end {
		off = end
	}
	if off < start {
		off = start
	}
	return off
}
