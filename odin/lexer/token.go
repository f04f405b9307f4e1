package lexer

import "fmt"

// ExtraKind classifies text that sits between tokens but is kept in the
// tree.
type ExtraKind int

const (
	ExtraComment ExtraKind = iota
	ExtraBlockComment
)

func (k ExtraKind) String() string {
	if k == ExtraBlockComment {
		return "block_comment"
	}
	return "comment"
}

// Extra is a comment preceding a token.
type Extra struct {
	Kind  ExtraKind
	Start int
	End   int
}

// Token is a classified span of the source. Kind is a terminal id of the
// grammar, or Kinds.Unknown for bytes no terminal matches. Synthetic
// tokens stand in for text that is not there, such as the comma implied
// by a line break before a closing bracket.
type Token struct {
	Kind      int
	Start     int
	End       int
	Extras    []Extra
	Synthetic bool
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%d, %d:%d)", t.Kind, t.Start, t.End)
}
