package lr

import (
	"fmt"
	"strings"
)

// Symbol is a terminal or nonterminal of an expanded grammar. Terminals
// are numbered first, followed by the end marker and the nonterminals.
type Symbol struct {
	ID        int
	Name      string
	Terminal  bool
	Literal   bool
	Hidden    bool
	Aux       bool
	Supertype bool
}

// Named reports whether nodes for this symbol are named in the tree.
// Literal tokens and hidden symbols are not.
func (s Symbol) Named() bool {
	return !s.Literal && !s.Hidden
}

func (s Symbol) key() string {
	if s.Literal {
		return literalKey(s.Name)
	}
	return s.Name
}

func literalKey(text string) string {
	return `"` + text + `"`
}

// Step is one right-hand side position of a production together with the
// annotations that applied to it in the rule body.
type Step struct {
	Symbol int
	Field  string
	Alias  string
	Prec   int
	Assoc  Assoc
}

// Production is a flat alternative produced by expanding a rule body.
// Rule names the rule the production was expanded from, which for
// repetition helpers is the enclosing rule.
type Production struct {
	ID    int
	LHS   int
	Steps []Step
	Rule  string
}

func (p Production) Len() int { return len(p.Steps) }

// Grammar is the expanded, context-free form of a Builder's rules.
type Grammar struct {
	Symbols      []Symbol
	Productions  []Production
	Start        int
	EOF          int
	NumTerminals int

	index    map[string]int
	byLHS    [][]int
	order    []string
	bodies   map[string]Expr
	external []string
}

// Lookup returns the id of the named terminal or nonterminal.
func (g *Grammar) Lookup(name string) (int, bool) {
	id, ok := g.index[name]
	return id, ok
}

// LiteralID returns the id of the anonymous token with the given text.
func (g *Grammar) LiteralID(text string) (int, bool) {
	id, ok := g.index[literalKey(text)]
	return id, ok
}

// MustLookup is Lookup for symbols whose presence is a programming error
// to get wrong.
func (g *Grammar) MustLookup(name string) int {
	id, ok := g.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("lr: unknown symbol %q", name))
	}
	return id
}

// MustLiteral is LiteralID for tokens that must exist.
func (g *Grammar) MustLiteral(text string) int {
	id, ok := g.LiteralID(text)
	if !ok {
		panic(fmt.Sprintf("lr: unknown token %q", text))
	}
	return id
}

func (g *Grammar) IsTerminal(id int) bool { return id < g.NumTerminals }

func (g *Grammar) NumNonterminals() int { return len(g.Symbols) - g.NumTerminals }

// Name returns a printable name: literal tokens are quoted.
func (g *Grammar) Name(id int) string {
	if id < 0 || id >= len(g.Symbols) {
		return fmt.Sprintf("#%d", id)
	}
	return g.Symbols[id].key()
}

// ProductionsFor returns the ids of the productions whose left-hand side
// is the nonterminal id.
func (g *Grammar) ProductionsFor(id int) []int {
	if id < g.NumTerminals {
		return nil
	}
	return g.byLHS[id-g.NumTerminals]
}

// Rules returns the rule names in declaration order.
func (g *Grammar) Rules() []string { return g.order }

// FormatItem renders a production with a dot before step dot.
func (g *Grammar) FormatItem(prod, dot int) string {
	p := g.Productions[prod]
	var sb strings.Builder
	sb.WriteString(g.Name(p.LHS))
	sb.WriteString(" ->")
	for i, s := range p.Steps {
		if i == dot {
			sb.WriteString(" .")
		}
		sb.WriteString(" ")
		sb.WriteString(g.Name(s.Symbol))
	}
	if dot >= len(p.Steps) {
		sb.WriteString(" .")
	}
	return sb.String()
}
