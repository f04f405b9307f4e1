package lexer

import "unicode/utf8"

// number scans a numeric literal at start and returns its kind and end.
func (l *Lexer) number(start int) (int, int) {
	k := l.kinds
	p := start
	if l.at(p) == '0' {
		var digit func(int) bool
		switch l.at(p + 1) {
		case 'x', 'h':
			digit = isHex
		case 'o':
			digit = isOctal
		case 'b':
			digit = func(c int) bool { return c == '0' || c == '1' }
		}
		if digit != nil {
			p += 2
			for c := l.at(p); digit(c) || c == '_'; c = l.at(p) {
				p++
			}
			return k.Number, l.imaginary(p)
		}
	}

	float := false
	p = l.digits(p)
	if l.at(p) == '.' && l.at(p+1) != '.' {
		float = true
		p = l.digits(p + 1)
	}
	if c := l.at(p); c == 'e' || c == 'E' {
		q := p + 1
		if c := l.at(q); c == '+' || c == '-' {
			q++
		}
		if isDigit(l.at(q)) {
			for isDigit(l.at(q)) {
				q++
			}
			p = q
			float = true
		}
	}
	p = l.imaginary(p)
	if float {
		return k.Float, p
	}
	return k.Number, p
}

func (l *Lexer) digits(p int) int {
	for c := l.at(p); isDigit(c) || c == '_'; c = l.at(p) {
		p++
	}
	return p
}

func (l *Lexer) imaginary(p int) int {
	switch l.at(p) {
	case 'i', 'j', 'k':
		return p + 1
	}
	return p
}

// escape scans the escape sequence whose backslash is at p. It returns
// the end offset, or -1 when the sequence is malformed.
func (l *Lexer) escape(p int) int {
	c := l.at(p + 1)
	switch c {
	case eof:
		return -1
	case 'x', 'u', 'U':
		if c == 'u' && l.at(p+2) == '{' {
			q := p + 3
			for isHex(l.at(q)) {
				q++
			}
			if q > p+3 && l.at(q) == '}' {
				return q + 1
			}
			return -1
		}
		n := map[int]int{'x': 2, 'u': 4, 'U': 8}[c]
		for i := 0; i < n; i++ {
			if !isHex(l.at(p + 2 + i)) {
				return -1
			}
		}
		return p + 2 + n
	case 'a', 'b', 'e', 'f', 'n', 'r', 't', 'v', '\\', '\'', '"', '?':
		return p + 2
	}
	if isOctal(c) {
		q := p + 1
		for q < p+4 && isOctal(l.at(q)) {
			q++
		}
		return q
	}
	return -1
}

// character scans a rune literal at start. It returns -1 when the
// literal is not closed on the same line.
func (l *Lexer) character(start int) int {
	p := start + 1
	switch c := l.at(p); {
	case c == '\\':
		e := l.escape(p)
		if e < 0 {
			if l.at(p+1) == eof {
				return -1
			}
			e = p + 2
		}
		p = e
	case c == eof || c == '\'' || c == '\n':
		return -1
	case c >= utf8.RuneSelf:
		_, size := utf8.DecodeRune(l.src[p:])
		p += size
	default:
		p++
	}
	if l.at(p) == '\'' {
		return p + 1
	}
	return -1
}

// stringBody lexes inside an interpreted string: content runs, escape
// sequences and the closing quote.
func (l *Lexer) stringBody() Token {
	k := l.kinds
	start := l.pos
	p := start
	switch c := l.peek(0); c {
	case eof:
		return Token{Kind: k.EOF, Start: start, End: start}
	case '"':
		return l.emit(k.Quote, start, start+1, nil, false)
	case '\\':
		if e := l.escape(start); e > 0 {
			return l.emit(k.EscapeSequence, start, e, nil, false)
		}
		p++
		if next := l.peek(1); next != eof && next != '\n' {
			p++
		}
	}
	for c := l.at(p); c != eof && c != '"' && c != '\\'; c = l.at(p) {
		p++
	}
	return l.emit(k.StringContent, start, p, nil, false)
}

func (l *Lexer) rawBody() Token {
	k := l.kinds
	start := l.pos
	switch l.peek(0) {
	case eof:
		return Token{Kind: k.EOF, Start: start, End: start}
	case '`':
		return l.emit(k.Backtick, start, start+1, nil, false)
	}
	p := start
	for c := l.at(p); c != eof && c != '`'; c = l.at(p) {
		p++
	}
	return l.emit(k.RawStringContent, start, p, nil, false)
}
