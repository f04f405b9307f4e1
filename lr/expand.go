package lr

import (
	"fmt"
	"strings"
)

type rawStep struct {
	symbol string
	field  string
	alias  string
	prec   int
	assoc  Assoc
}

func (s rawStep) key() string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%d\x00%d", s.symbol, s.field, s.alias, s.prec, s.assoc)
}

type rawProduction struct {
	lhs   string
	steps []rawStep
	rule  string
}

type exprCtx struct {
	field string
	alias string
	prec  int
	assoc Assoc
}

// expander flattens rule bodies. Optional and choice multiply out into
// alternatives; every distinct repetition becomes a left recursive helper
// rule named <rule>_repeatN.
type expander struct {
	prods     []rawProduction
	auxByKey  map[string]string
	auxRule   map[string]string
	auxCounts map[string]int
}

func newExpander() *expander {
	return &expander{
		auxByKey:  make(map[string]string),
		auxRule:   make(map[string]string),
		auxCounts: make(map[string]int),
	}
}

func (x *expander) expand(e Expr, ctx exprCtx, rule string) [][]rawStep {
	switch e.Kind {
	case ExprToken:
		return [][]rawStep{{{symbol: literalKey(e.Name), field: ctx.field, alias: ctx.alias, prec: ctx.prec, assoc: ctx.assoc}}}
	case ExprSymbol:
		return [][]rawStep{{{symbol: e.Name, field: ctx.field, alias: ctx.alias, prec: ctx.prec, assoc: ctx.assoc}}}
	case ExprSeq:
		result := [][]rawStep{{}}
		for _, c := range e.Children {
			alts := x.expand(c, ctx, rule)
			next := make([][]rawStep, 0, len(result)*len(alts))
			for _, a := range result {
				for _, b := range alts {
					joined := make([]rawStep, 0, len(a)+len(b))
					joined = append(joined, a...)
					joined = append(joined, b...)
					next = append(next, joined)
				}
			}
			result = next
		}
		return result
	case ExprChoice:
		var result [][]rawStep
		for _, c := range e.Children {
			result = append(result, x.expand(c, ctx, rule)...)
		}
		return result
	case ExprOptional:
		return append(x.expand(e.Children[0], ctx, rule), []rawStep{})
	case ExprRepeat1:
		return [][]rawStep{{x.repetition(e.Children[0], ctx, rule)}}
	case ExprField:
		ctx.field = e.Name
		return x.expand(e.Children[0], ctx, rule)
	case ExprAlias:
		ctx.alias = e.Name
		return x.expand(e.Children[0], ctx, rule)
	case ExprPrec:
		ctx.prec = e.Level
		ctx.assoc = e.Assoc
		return x.expand(e.Children[0], ctx, rule)
	}
	panic(fmt.Sprintf("lr: cannot expand %s", e.Kind))
}

func (x *expander) repetition(body Expr, ctx exprCtx, rule string) rawStep {
	alts := x.expand(body, ctx, rule)
	key := alternativesKey(alts)
	name, ok := x.auxByKey[key]
	if !ok {
		x.auxCounts[rule]++
		name = fmt.Sprintf("%s_repeat%d", rule, x.auxCounts[rule])
		x.auxByKey[key] = name
		x.auxRule[name] = rule
		self := rawStep{symbol: name, prec: ctx.prec, assoc: ctx.assoc}
		for _, a := range dedupeAlternatives(alts) {
			recursive := append([]rawStep{self}, a...)
			x.prods = append(x.prods,
				rawProduction{lhs: name, steps: recursive, rule: rule},
				rawProduction{lhs: name, steps: append([]rawStep(nil), a...), rule: rule},
			)
		}
	}
	return rawStep{symbol: name, prec: ctx.prec, assoc: ctx.assoc}
}

func alternativesKey(alts [][]rawStep) string {
	var sb strings.Builder
	for _, a := range alts {
		for _, s := range a {
			sb.WriteString(s.key())
			sb.WriteByte('\x01')
		}
		sb.WriteByte('\x02')
	}
	return sb.String()
}

func dedupeAlternatives(alts [][]rawStep) [][]rawStep {
	seen := make(map[string]bool, len(alts))
	out := alts[:0:0]
	for _, a := range alts {
		k := alternativesKey([][]rawStep{a})
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}
