package codebase

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Editors count columns in UTF-16 code units. These convert between
// byte offsets and 0-based (line, unit) pairs.

// Offset returns the byte offset of a 0-based line and UTF-16 column,
// clamped to the end of that line.
func (f *File) Offset(line, character int) int {
	if line >= f.Lines.Lines() {
		return len(f.Content)
	}
	off := f.Lines.LineStart(line + 1)
	for units := 0; off < len(f.Content) && units < character; {
		r, size := utf8.DecodeRune(f.Content[off:])
		if r == '\n' {
			break
		}
		units += runeUnits(r)
		off += size
	}
	return off
}

// Position returns the 0-based line and UTF-16 column of a byte offset.
func (f *File) Position(offset int) (line, character int) {
	pos := f.Lines.Position(offset)
	start := f.Lines.LineStart(pos.Line)
	for b := f.Content[start:pos.Offset]; len(b) > 0; {
		r, size := utf8.DecodeRune(b)
		character += runeUnits(r)
		b = b[size:]
	}
	return pos.Line - 1, character
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
