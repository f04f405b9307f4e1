package lexer

import (
	"sort"

	"github.com/dhamidi/odinsyntax/lr"
)

// Kinds maps the lexer's vocabulary onto terminal ids of a generated
// grammar.
type Kinds struct {
	EOF     int
	Unknown int

	Identifier       int
	Number           int
	Float            int
	StringContent    int
	EscapeSequence   int
	RawStringContent int
	Character        int
	Tag              int
	CallTag          int
	HashType         int
	Newline          int
	ValueBrace       int
	ForIn            int
	Uninitialized    int
	EmptyType        int

	Quote     int
	Backtick  int
	LParen    int
	RParen    int
	LBracket  int
	RBracket  int
	LBrace    int
	RBrace    int
	Comma     int
	Semicolon int
	Bang      int
	In        int

	g         *lr.Grammar
	words     map[string]int
	punct     []punctuation
	continues map[int]bool
	assigns   map[int]bool
	closers   []int
}

type punctuation struct {
	text string
	kind int
}

// Operators after which a line break continues the statement.
var continuing = []string{
	"=", ":=", "::", ",", "(", "[", "{", "->", ".", "..", "..<", "..=",
	"in", "not_in", "or_else",
	"||", "&&", ">", ">=", "<=", "<", "==", "!=", "|", "~", "&", "&~",
	"<<", ">>", "+", "-", "*", "/", "%", "%%",
}

// Operators that begin the value of a declaration or assignment.
var assigning = []string{"=", ":=", "::"}

var updating = []string{
	"+=", "-=", "*=", "/=", "%=", "%%=", "&=", "|=", "~=", "^=",
	"<<=", ">>=", "||=", "&&=", "&~=",
}

// NewKinds resolves the lexer's terminals in g. It panics if g lacks one
// of them.
func NewKinds(g *lr.Grammar) *Kinds {
	k := &Kinds{
		EOF:     g.EOF,
		Unknown: g.NumTerminals,

		Identifier:       g.MustLookup("identifier"),
		Number:           g.MustLookup("number"),
		Float:            g.MustLookup("float"),
		StringContent:    g.MustLookup("string_content"),
		EscapeSequence:   g.MustLookup("escape_sequence"),
		RawStringContent: g.MustLookup("_raw_string_content"),
		Character:        g.MustLookup("character"),
		Tag:              g.MustLookup("tag"),
		CallTag:          g.MustLookup("_call_tag"),
		HashType:         g.MustLiteral("#type"),
		Newline:          g.MustLookup("_newline"),
		ValueBrace:       g.MustLookup("_value_brace"),
		ForIn:            g.MustLookup("_for_in"),
		Uninitialized:    g.MustLookup("uninitialized"),
		EmptyType:        g.MustLookup("empty_type"),

		Quote:     g.MustLiteral(`"`),
		Backtick:  g.MustLiteral("`"),
		LParen:    g.MustLiteral("("),
		RParen:    g.MustLiteral(")"),
		LBracket:  g.MustLiteral("["),
		RBracket:  g.MustLiteral("]"),
		LBrace:    g.MustLiteral("{"),
		RBrace:    g.MustLiteral("}"),
		Comma:     g.MustLiteral(","),
		Semicolon: g.MustLiteral(";"),
		Bang:      g.MustLiteral("!"),
		In:        g.MustLiteral("in"),

		g:         g,
		words:     make(map[string]int),
		continues: make(map[int]bool),
		assigns:   make(map[int]bool),
	}

	for _, sym := range g.Symbols {
		if !sym.Terminal || !sym.Literal {
			continue
		}
		switch {
		case isWordStart(sym.Name[0]):
			k.words[sym.Name] = sym.ID
		case sym.Name == `"` || sym.Name == "`" || sym.Name == "#type":
		default:
			k.punct = append(k.punct, punctuation{text: sym.Name, kind: sym.ID})
		}
	}
	sort.SliceStable(k.punct, func(i, j int) bool {
		return len(k.punct[i].text) > len(k.punct[j].text)
	})
	k.words["true"] = g.MustLookup("boolean")
	k.words["false"] = g.MustLookup("boolean")
	k.words["nil"] = g.MustLookup("nil")
	k.words["fallthrough"] = g.MustLookup("fallthrough_statement")

	for _, op := range continuing {
		k.continues[g.MustLiteral(op)] = true
	}
	for _, op := range updating {
		k.continues[g.MustLiteral(op)] = true
		k.assigns[g.MustLiteral(op)] = true
	}
	for _, op := range assigning {
		k.assigns[g.MustLiteral(op)] = true
	}
	k.continues[k.ValueBrace] = true
	k.continues[k.ForIn] = true
	k.closers = []int{k.RParen, k.RBracket, k.RBrace, k.Quote, k.Backtick}
	return k
}

// Name returns the printable name of a token kind.
func (k *Kinds) Name(kind int) string {
	if kind == k.Unknown {
		return "unknown"
	}
	return k.g.Name(kind)
}

// Continues reports whether a line break after kind continues the
// current statement.
func (k *Kinds) Continues(kind int) bool { return k.continues[kind] }

// Assigns reports whether kind is an assignment or declaration operator.
func (k *Kinds) Assigns(kind int) bool { return k.assigns[kind] }

// Separator reports whether kind ends a statement.
func (k *Kinds) Separator(kind int) bool {
	return kind == k.Newline || kind == k.Semicolon
}

// Closers returns the tokens that end a bracketed or quoted group, in
// the order recovery tries them.
func (k *Kinds) Closers() []int { return k.closers }

func (k *Kinds) IsCloser(kind int) bool {
	for _, c := range k.closers {
		if c == kind {
			return true
		}
	}
	return false
}

// Word returns the keyword kind for text.
func (k *Kinds) Word(text string) (int, bool) {
	kind, ok := k.words[text]
	return kind, ok
}

func (k *Kinds) closerFor(c int) (int, bool) {
	switch c {
	case ')':
		return k.RParen, true
	case ']':
		return k.RBracket, true
	case '}':
		return k.RBrace, true
	}
	return 0, false
}
