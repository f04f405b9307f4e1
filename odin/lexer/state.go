package lexer

import "strings"

// Bracket is the kind of an open bracket.
type Bracket byte

const (
	BracketParen  Bracket = 'P'
	BracketSquare Bracket = 'B'
	BracketBlock  Bracket = 'K'
	BracketValue  Bracket = 'V'
)

// StringMode tells whether the lexer is inside a string literal.
type StringMode uint8

const (
	StringNone StringMode = iota
	StringInterpreted
	StringRaw
)

// State is everything the lexer carries from one token to the next. It
// is a comparable value, so a saved State can be checked for equality
// and restored to resume lexing at the offset it was taken.
type State struct {
	brackets string
	Prev     int
	Mode     StringMode
}

// InitialState is the state at the start of a file.
func InitialState() State {
	return State{Prev: -1}
}

// Depth is the number of open brackets.
func (s State) Depth() int { return len(s.brackets) }

// Top returns the innermost open bracket.
func (s State) Top() (Bracket, bool) {
	if s.brackets == "" {
		return 0, false
	}
	return Bracket(s.brackets[len(s.brackets)-1]), true
}

func (s State) push(b Bracket) State {
	s.brackets += string(rune(b))
	return s
}

func (s State) pop() State {
	if s.brackets != "" {
		s.brackets = s.brackets[:len(s.brackets)-1]
	}
	return s
}

func (s State) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(s.brackets)
	sb.WriteString("]")
	switch s.Mode {
	case StringInterpreted:
		sb.WriteString(` "`)
	case StringRaw:
		sb.WriteString(" `")
	}
	return sb.String()
}

// Advance returns the state after a token of the given kind.
func (k *Kinds) Advance(s State, kind int) State {
	switch kind {
	case k.LParen:
		s = s.push(BracketParen)
	case k.LBracket:
		s = s.push(BracketSquare)
	case k.LBrace:
		s = s.push(BracketBlock)
	case k.ValueBrace:
		s = s.push(BracketValue)
	case k.RParen, k.RBracket, k.RBrace:
		s = s.pop()
	case k.Quote:
		if s.Mode == StringInterpreted {
			s.Mode = StringNone
		} else {
			s.Mode = StringInterpreted
		}
	case k.Backtick:
		if s.Mode == StringRaw {
			s.Mode = StringNone
		} else {
			s.Mode = StringRaw
		}
	}
	s.Prev = kind
	return s
}
