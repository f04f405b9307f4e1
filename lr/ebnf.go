package lr

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/ebnf"
)

// StartRule returns the name of the rule the grammar accepts.
func (g *Grammar) StartRule() string {
	return g.Symbols[g.Productions[0].Steps[0].Symbol].Name
}

// EBNF renders the rule bodies in the notation understood by
// golang.org/x/exp/ebnf. Scanner produced terminals become productions
// with a placeholder token. Fields, aliases and precedence do not
// appear in the output.
func (g *Grammar) EBNF() string {
	var sb strings.Builder
	for _, name := range g.order {
		fmt.Fprintf(&sb, "%s = ", name)
		writeEBNF(&sb, g.bodies[name], false)
		sb.WriteString(" .\n")
	}
	for _, sym := range g.Symbols {
		if !sym.Terminal || sym.Literal || sym.ID == g.EOF {
			continue
		}
		fmt.Fprintf(&sb, "%s = %s .\n", sym.Name, strconv.Quote("<"+sym.Name+">"))
	}
	return sb.String()
}

func writeEBNF(sb *strings.Builder, e Expr, grouped bool) {
	switch e.Kind {
	case ExprToken:
		sb.WriteString(strconv.Quote(e.Name))
	case ExprSymbol:
		sb.WriteString(e.Name)
	case ExprSeq:
		if grouped && len(e.Children) > 1 {
			sb.WriteString("( ")
		}
		for i, c := range e.Children {
			if i > 0 {
				sb.WriteString(" ")
			}
			writeEBNF(sb, c, true)
		}
		if grouped && len(e.Children) > 1 {
			sb.WriteString(" )")
		}
	case ExprChoice:
		if grouped {
			sb.WriteString("( ")
		}
		for i, c := range e.Children {
			if i > 0 {
				sb.WriteString(" | ")
			}
			writeEBNF(sb, c, false)
		}
		if grouped {
			sb.WriteString(" )")
		}
	case ExprOptional:
		if inner := e.Children[0]; inner.Kind == ExprRepeat1 {
			sb.WriteString("{ ")
			writeEBNF(sb, inner.Children[0], false)
			sb.WriteString(" }")
			return
		}
		sb.WriteString("[ ")
		writeEBNF(sb, e.Children[0], false)
		sb.WriteString(" ]")
	case ExprRepeat1:
		writeEBNF(sb, e.Children[0], true)
		sb.WriteString(" { ")
		writeEBNF(sb, e.Children[0], false)
		sb.WriteString(" }")
	case ExprField, ExprAlias, ExprPrec:
		writeEBNF(sb, e.Children[0], grouped)
	}
}

// VerifyEBNF parses the rendered grammar with x/exp/ebnf and checks that
// every rule is defined and reachable from the start rule.
func (g *Grammar) VerifyEBNF() error {
	parsed, err := ebnf.Parse("grammar.ebnf", strings.NewReader(g.EBNF()))
	if err != nil {
		return err
	}
	return ebnf.Verify(parsed, g.StartRule())
}
