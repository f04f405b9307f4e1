package lr

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// EarleyParser recognizes token sequences against the expanded grammar
// without using the generated tables. It accepts every derivation the
// context-free rules allow, so it can count how many trees a sentence
// has before precedence and the conflict table pick one.
type EarleyParser struct {
	g        *Grammar
	tokens   []int
	nullable []bool
	chart    []*ItemSet

	counts   map[memoKey]int
	visiting map[span][]countKey
}

// EarleyItem is a production with a dot position and the chart position
// where it was predicted.
type EarleyItem struct {
	Prod   int
	Dot    int
	Origin int
}

// ItemSet is the set of Earley items at one chart position.
type ItemSet struct {
	items    []EarleyItem
	seen     map[EarleyItem]bool
	position int
}

func newItemSet(pos int) *ItemSet {
	return &ItemSet{
		seen:     make(map[EarleyItem]bool),
		position: pos,
	}
}

func (s *ItemSet) Add(item EarleyItem) bool {
	if s.seen[item] {
		return false
	}
	s.seen[item] = true
	s.items = append(s.items, item)
	return true
}

func (s *ItemSet) Items() []EarleyItem { return s.items }

func (s *ItemSet) Has(item EarleyItem) bool { return s.seen[item] }

// maxDerivations caps derivation counts.
const maxDerivations = 1 << 30

type countKey struct {
	prod, dot, from, to int
}

type span struct{ from, to int }

// memoKey pairs a count with the keys of the same span that were in
// progress when it was computed. Only those can cut a cycle below it,
// so the count is exact for that context.
type memoKey struct {
	countKey
	context string
}

func NewEarleyParser(g *Grammar, tokens []int) *EarleyParser {
	return &EarleyParser{
		g:        g,
		tokens:   tokens,
		nullable: analyze(g).nullable,
	}
}

func (p *EarleyParser) Chart() []*ItemSet { return p.chart }

func (p *EarleyParser) isComplete(it EarleyItem) bool {
	return it.Dot >= p.g.Productions[it.Prod].Len()
}

// Parse runs the recognizer for the nonterminal start and reports
// whether the whole token sequence derives from it.
func (p *EarleyParser) Parse(start int) (bool, error) {
	if p.g.IsTerminal(start) {
		return false, fmt.Errorf("%s is not a nonterminal", p.g.Name(start))
	}
	n := len(p.tokens)
	p.chart = make([]*ItemSet, n+1)
	for i := range p.chart {
		p.chart[i] = newItemSet(i)
	}
	p.counts = nil
	for _, prod := range p.g.ProductionsFor(start) {
		p.chart[0].Add(EarleyItem{Prod: prod})
	}

	for i := 0; i <= n; i++ {
		set := p.chart[i]
		for j := 0; j < len(set.items); j++ {
			it := set.items[j]
			if p.isComplete(it) {
				p.complete(i, it)
				continue
			}
			next := p.g.Productions[it.Prod].Steps[it.Dot].Symbol
			if p.g.IsTerminal(next) {
				if i < n && p.tokens[i] == next {
					p.chart[i+1].Add(EarleyItem{Prod: it.Prod, Dot: it.Dot + 1, Origin: it.Origin})
				}
				continue
			}
			p.predict(i, it, next)
		}
	}

	for _, prod := range p.g.ProductionsFor(start) {
		if p.chart[n].Has(EarleyItem{Prod: prod, Dot: p.g.Productions[prod].Len(), Origin: 0}) {
			return true, nil
		}
	}
	furthest := 0
	for i := n; i >= 0; i-- {
		if len(p.chart[i].items) > 0 {
			furthest = i
			break
		}
	}
	if furthest < n {
		return false, fmt.Errorf("unexpected %s at token %d", p.g.Name(p.tokens[furthest]), furthest)
	}
	return false, fmt.Errorf("incomplete input")
}

// predict adds the productions of next. A nullable next also advances
// the predicting item in place.
func (p *EarleyParser) predict(pos int, it EarleyItem, next int) {
	for _, prod := range p.g.ProductionsFor(next) {
		p.chart[pos].Add(EarleyItem{Prod: prod, Origin: pos})
	}
	if p.nullable[next] {
		p.chart[pos].Add(EarleyItem{Prod: it.Prod, Dot: it.Dot + 1, Origin: it.Origin})
	}
}

func (p *EarleyParser) complete(pos int, done EarleyItem) {
	lhs := p.g.Productions[done.Prod].LHS
	origin := p.chart[done.Origin]
	for j := 0; j < len(origin.items); j++ {
		it := origin.items[j]
		steps := p.g.Productions[it.Prod].Steps
		if it.Dot < len(steps) && steps[it.Dot].Symbol == lhs {
			p.chart[pos].Add(EarleyItem{Prod: it.Prod, Dot: it.Dot + 1, Origin: it.Origin})
		}
	}
}

// Derivations counts the distinct derivations of the whole input from
// start found by the last Parse. Cyclic derivations are not counted.
func (p *EarleyParser) Derivations(start int) int {
	if p.chart == nil {
		return 0
	}
	p.counts = make(map[memoKey]int)
	p.visiting = make(map[span][]countKey)
	return p.countSymbol(start, 0, len(p.tokens))
}

func (p *EarleyParser) countSymbol(sym, from, to int) int {
	if p.g.IsTerminal(sym) {
		if to == from+1 && p.tokens[from] == sym {
			return 1
		}
		return 0
	}
	total := 0
	for _, prod := range p.g.ProductionsFor(sym) {
		done := EarleyItem{Prod: prod, Dot: p.g.Productions[prod].Len(), Origin: from}
		if !p.chart[to].Has(done) {
			continue
		}
		total = saturatingAdd(total, p.countSteps(prod, 0, from, to))
	}
	return total
}

func (p *EarleyParser) countSteps(prod, dot, from, to int) int {
	steps := p.g.Productions[prod].Steps
	if dot == len(steps) {
		if from == to {
			return 1
		}
		return 0
	}
	key := countKey{prod: prod, dot: dot, from: from, to: to}
	sp := span{from, to}
	active := p.visiting[sp]
	if slices.Contains(active, key) {
		return 0
	}
	memo := memoKey{countKey: key, context: contextOf(active)}
	if c, ok := p.counts[memo]; ok {
		return c
	}
	p.visiting[sp] = append(active, key)
	defer func() { p.visiting[sp] = active }()

	total := 0
	for mid := from; mid <= to; mid++ {
		head := p.countSymbol(steps[dot].Symbol, from, mid)
		if head == 0 {
			continue
		}
		tail := p.countSteps(prod, dot+1, mid, to)
		if tail == 0 {
			continue
		}
		total = saturatingAdd(total, saturatingMul(head, tail))
	}
	p.counts[memo] = total
	return total
}

func contextOf(active []countKey) string {
	if len(active) == 0 {
		return ""
	}
	keys := make([]string, len(active))
	for i, k := range active {
		keys[i] = strconv.Itoa(k.prod) + "." + strconv.Itoa(k.dot)
	}
	slices.Sort(keys)
	return strings.Join(keys, ",")
}

func saturatingAdd(a, b int) int {
	if a+b > maxDerivations {
		return maxDerivations
	}
	return a + b
}

func saturatingMul(a, b int) int {
	if b != 0 && a > maxDerivations/b {
		return maxDerivations
	}
	return a * b
}
