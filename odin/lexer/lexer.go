package lexer

import "slices"

// Oracle answers what the parser can accept next. The lexer consults it
// wherever the same characters lex differently depending on context.
type Oracle interface {
	// Valid reports whether a token of kind can be accepted now.
	Valid(kind int) bool
	// ValidAfter reports whether second can follow once first is
	// accepted.
	ValidAfter(first, second int) bool
}

// Suppressed records a line break that did not become a separator.
type Suppressed struct {
	Offset int
	Prev   int
}

const eof = -1

// Lexer splits Odin source into tokens one call at a time. It never
// fails: bytes it cannot classify come back as single-byte Unknown
// tokens.
type Lexer struct {
	src   []byte
	kinds *Kinds
	state State
	pos   int

	watermark  int
	forced     map[int]bool
	suppressed []Suppressed
}

// New creates a lexer at the start of src.
func New(src []byte, kinds *Kinds) *Lexer {
	return NewAt(src, kinds, InitialState(), 0)
}

// NewAt creates a lexer that resumes at pos with a previously saved
// state.
func NewAt(src []byte, kinds *Kinds, state State, pos int) *Lexer {
	return &Lexer{
		src:       src,
		kinds:     kinds,
		state:     state,
		pos:       pos,
		watermark: pos,
		forced:    make(map[int]bool),
	}
}

func (l *Lexer) Pos() int       { return l.pos }
func (l *Lexer) State() State   { return l.state }
func (l *Lexer) Kinds() *Kinds  { return l.kinds }
func (l *Lexer) Watermark() int { return l.watermark }

// SetWatermark overrides the furthest read offset, used when resuming
// from a checkpoint whose reads extend past its offset.
func (l *Lexer) SetWatermark(w int) { l.watermark = w }

// Reset moves the lexer back to pos with state and forgets the line
// breaks it suppressed.
func (l *Lexer) Reset(pos int, state State) {
	l.pos = pos
	l.state = state
	l.suppressed = nil
}

// SetState replaces the state without moving.
func (l *Lexer) SetState(s State) { l.state = s }

// Suppressed returns the line breaks skipped since the last call to
// ClearSuppressed.
func (l *Lexer) Suppressed() []Suppressed { return l.suppressed }

func (l *Lexer) ClearSuppressed() { l.suppressed = nil }

// SetSuppressed replaces the suppressed line breaks, used when resuming
// after a token whose leading breaks were already recorded.
func (l *Lexer) SetSuppressed(s []Suppressed) { l.suppressed = slices.Clone(s) }

// DropSuppressedBefore forgets suppressed line breaks before offset.
func (l *Lexer) DropSuppressedBefore(offset int) {
	kept := l.suppressed[:0]
	for _, s := range l.suppressed {
		if s.Offset >= offset {
			kept = append(kept, s)
		}
	}
	l.suppressed = kept
}

// Force makes the line break at offset a separator from now on.
func (l *Lexer) Force(offset int) { l.forced[offset] = true }

func (l *Lexer) Forced(offset int) bool { return l.forced[offset] }

// ForcedFrom reports whether any line break at or after offset was
// forced.
func (l *Lexer) ForcedFrom(offset int) bool {
	for at := range l.forced {
		if at >= offset {
			return true
		}
	}
	return false
}

// at returns the byte at p, or eof. Every read extends the watermark.
func (l *Lexer) at(p int) int {
	if p >= len(l.src) {
		if l.watermark < len(l.src)+1 {
			l.watermark = len(l.src) + 1
		}
		return eof
	}
	if l.watermark < p+1 {
		l.watermark = p + 1
	}
	return int(l.src[p])
}

func (l *Lexer) peek(i int) int { return l.at(l.pos + i) }

func (l *Lexer) emit(kind, start, end int, extras []Extra, synthetic bool) Token {
	l.pos = end
	l.state = l.kinds.Advance(l.state, kind)
	return Token{Kind: kind, Start: start, End: end, Extras: extras, Synthetic: synthetic}
}

// Next returns the next token. Comments before it are attached as
// extras.
func (l *Lexer) Next(o Oracle) Token {
	switch l.state.Mode {
	case StringInterpreted:
		return l.stringBody()
	case StringRaw:
		return l.rawBody()
	}
	k := l.kinds

	var extras []Extra
	for {
		c := l.peek(0)
		switch {
		case isHorizontalSpace(c):
			l.pos++
			continue
		case c == '\\' && (l.peek(1) == '\n' || (l.peek(1) == '\r' && l.peek(2) == '\n')):
			if l.peek(1) == '\n' {
				l.pos += 2
			} else {
				l.pos += 3
			}
			continue
		case c == '/' && l.peek(1) == '/':
			start := l.pos
			for ch := l.peek(0); ch != eof && ch != '\n'; ch = l.peek(0) {
				l.pos++
			}
			extras = append(extras, Extra{Kind: ExtraComment, Start: start, End: l.pos})
			continue
		case c == '/' && l.peek(1) == '*':
			start := l.pos
			l.blockComment()
			extras = append(extras, Extra{Kind: ExtraBlockComment, Start: start, End: l.pos})
			continue
		case c == '\n':
			p := l.pos
			if l.forced[p] || l.separatorOK(o) {
				return l.emit(k.Newline, p, p+1, extras, false)
			}
			if l.commaOK(o) {
				return l.emit(k.Comma, p, p+1, extras, true)
			}
			l.suppressed = append(l.suppressed, Suppressed{Offset: p, Prev: l.state.Prev})
			l.pos++
			continue
		}
		break
	}

	start := l.pos
	c := l.peek(0)
	switch {
	case c == eof:
		return Token{Kind: k.EOF, Start: start, End: start, Extras: extras}
	case isIdentStart(c):
		end := start
		for isIdentByte(l.at(end)) {
			end++
		}
		kind := k.Identifier
		if kw, ok := k.words[string(l.src[start:end])]; ok {
			switch {
			case kw == k.In && o.Valid(k.ForIn):
				kind = k.ForIn
			case o.Valid(kw) || !o.Valid(kind):
				kind = kw
			}
		}
		return l.emit(kind, start, end, extras, false)
	case isDigit(c) || (c == '.' && isDigit(l.peek(1)) && o.Valid(k.Float)):
		kind, end := l.number(start)
		return l.emit(kind, start, end, extras, false)
	case c == '#':
		return l.directive(start, extras, o)
	case c == '"':
		return l.emit(k.Quote, start, start+1, extras, false)
	case c == '`':
		return l.emit(k.Backtick, start, start+1, extras, false)
	case c == '\'':
		end := l.character(start)
		if end < 0 {
			return l.emit(k.Unknown, start, start+1, extras, false)
		}
		return l.emit(k.Character, start, end, extras, false)
	case c == '-' && l.peek(1) == '-' && l.peek(2) == '-':
		return l.emit(k.Uninitialized, start, start+3, extras, false)
	case c == '{':
		block, value := o.Valid(k.LBrace), o.Valid(k.ValueBrace)
		kind := k.LBrace
		if value && !block {
			kind = k.ValueBrace
		}
		return l.emit(kind, start, start+1, extras, false)
	}

	for _, p := range k.punct {
		if !l.matches(start, p.text) {
			continue
		}
		kind := p.kind
		if kind == k.Bang && !o.Valid(kind) && o.Valid(k.EmptyType) {
			kind = k.EmptyType
		}
		return l.emit(kind, start, start+len(p.text), extras, false)
	}
	return l.emit(k.Unknown, start, start+1, extras, false)
}

// matches compares text at p and reads one byte past it, since the
// longest match depends on that byte.
func (l *Lexer) matches(p int, text string) bool {
	for i := 0; i < len(text); i++ {
		if l.at(p+i) != int(text[i]) {
			return false
		}
	}
	l.at(p + len(text))
	return true
}

// blockComment consumes a /* */ comment, counting nested openers.
// Without a closer it runs to the end of input.
func (l *Lexer) blockComment() {
	l.pos += 2
	for depth := 1; depth > 0; {
		switch ch := l.peek(0); {
		case ch == eof:
			return
		case ch == '/' && l.peek(1) == '*':
			depth++
			l.pos += 2
		case ch == '*' && l.peek(1) == '/':
			depth--
			l.pos += 2
		default:
			l.pos++
		}
	}
}

func (l *Lexer) directive(start int, extras []Extra, o Oracle) Token {
	k := l.kinds
	end := start + 1
	for isWordByte(l.at(end)) {
		end++
	}
	if end == start+1 {
		return l.emit(k.Unknown, start, end, extras, false)
	}
	if string(l.src[start:end]) == "#type" && o.Valid(k.HashType) {
		return l.emit(k.HashType, start, end, extras, false)
	}
	if l.at(end) == '(' {
		q := end + 1
		for isWordByte(l.at(q)) {
			q++
		}
		if l.at(q) == ')' {
			return l.emit(k.Tag, start, q+1, extras, false)
		}
		if o.Valid(k.CallTag) {
			return l.emit(k.CallTag, start, end, extras, false)
		}
	}
	return l.emit(k.Tag, start, end, extras, false)
}

// nextWord returns the word starting at the first non-space byte at or
// after p.
func (l *Lexer) nextWord(p int) string {
	for isSpace(l.at(p)) {
		p++
	}
	s := p
	for isWordByte(l.at(p)) {
		p++
	}
	return string(l.src[s:p])
}

// separatorOK decides whether the line break at the current position
// ends a statement.
func (l *Lexer) separatorOK(o Oracle) bool {
	k := l.kinds
	if k.Continues(l.state.Prev) {
		return false
	}
	if top, ok := l.state.Top(); ok && top != BracketBlock {
		return false
	}
	if !o.Valid(k.Newline) {
		return false
	}
	switch l.nextWord(l.pos + 1) {
	case "else", "where":
		return false
	}
	return true
}

// commaOK decides whether a line break inside a bracketed list stands
// for an omitted comma: only when the next token closes the list, the
// closer cannot follow directly, and it could follow a comma.
func (l *Lexer) commaOK(o Oracle) bool {
	k := l.kinds
	top, ok := l.state.Top()
	if !ok || top == BracketBlock {
		return false
	}
	if !o.Valid(k.Comma) {
		return false
	}
	p := l.pos + 1
	for isSpace(l.at(p)) {
		p++
	}
	closer, ok := k.closerFor(l.at(p))
	if !ok {
		return false
	}
	return !o.Valid(closer) && o.ValidAfter(k.Comma, closer)
}

func isHorizontalSpace(c int) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

func isSpace(c int) bool { return c == '\n' || isHorizontalSpace(c) }

func isDigit(c int) bool { return c >= '0' && c <= '9' }

func isLetter(c int) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isHex(c int) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isOctal(c int) bool { return c >= '0' && c <= '7' }

func isWordStart(c byte) bool { return isLetter(int(c)) || c == '_' }

func isIdentStart(c int) bool { return isLetter(c) || c == '_' || c >= 0x80 }

func isIdentByte(c int) bool { return isIdentStart(c) || isDigit(c) }

func isWordByte(c int) bool { return isIdentByte(c) }
