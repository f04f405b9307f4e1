package lr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Resolution is the action a declared conflict keeps.
type Resolution int

const (
	PreferShift Resolution = iota
	PreferReduce
)

func (r Resolution) String() string {
	if r == PreferReduce {
		return "reduce"
	}
	return "shift"
}

// ConflictRule declares that an ambiguity among productions of Rules is
// expected. Reduce/reduce ties go to the longest production, and a
// remaining shift/reduce choice goes to Prefer.
type ConflictRule struct {
	Rules  []string
	Prefer Resolution
}

func (c ConflictRule) covers(rules map[string]bool) bool {
	for r := range rules {
		found := false
		for _, name := range c.Rules {
			if name == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Builder collects rule definitions and turns them into a Grammar and
// parse tables.
type Builder struct {
	start      string
	rules      map[string]Expr
	order      []string
	terminals  []string
	supertypes map[string]bool
	conflicts  []ConflictRule
	errs       []error
}

// NewBuilder creates a builder whose accepting rule is start.
func NewBuilder(start string) *Builder {
	return &Builder{
		start:      start,
		rules:      make(map[string]Expr),
		supertypes: make(map[string]bool),
	}
}

// Rule defines name. Defining a rule twice is reported by Build.
func (b *Builder) Rule(name string, body Expr) {
	if _, exists := b.rules[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("rule %q defined twice", name))
		return
	}
	b.rules[name] = body
	b.order = append(b.order, name)
}

// Terminal declares named tokens produced by the scanner rather than by a
// rule.
func (b *Builder) Terminal(names ...string) {
	b.terminals = append(b.terminals, names...)
}

// Supertype marks rules that group other rules. They are hidden in the
// tree so the concrete rule's node shows through.
func (b *Builder) Supertype(names ...string) {
	for _, n := range names {
		b.supertypes[n] = true
	}
}

// Conflict declares an expected ambiguity between the given rules.
func (b *Builder) Conflict(prefer Resolution, rules ...string) {
	b.conflicts = append(b.conflicts, ConflictRule{Rules: rules, Prefer: prefer})
}

// Grammar expands the rule bodies into flat productions.
func (b *Builder) Grammar() (*Grammar, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if _, ok := b.rules[b.start]; !ok {
		return nil, fmt.Errorf("start rule %q is not defined", b.start)
	}

	x := newExpander()
	for _, name := range b.order {
		for _, alt := range dedupeAlternatives(x.expand(b.rules[name], exprCtx{}, name)) {
			x.prods = append(x.prods, rawProduction{lhs: name, steps: alt, rule: name})
		}
	}
	startProd := rawProduction{
		lhs:   "$start",
		steps: []rawStep{{symbol: b.start}},
		rule:  "$start",
	}
	x.prods = append([]rawProduction{startProd}, x.prods...)

	return b.assemble(x)
}

func (b *Builder) assemble(x *expander) (*Grammar, error) {
	nonterminals := make(map[string]bool)
	for _, p := range x.prods {
		nonterminals[p.lhs] = true
	}
	declared := make(map[string]bool)
	for _, t := range b.terminals {
		declared[t] = true
	}

	terminalSet := make(map[string]bool)
	for _, t := range b.terminals {
		terminalSet[t] = true
	}
	var errs []error
	for _, p := range x.prods {
		for _, s := range p.steps {
			if nonterminals[s.symbol] {
				continue
			}
			if !strings.HasPrefix(s.symbol, `"`) && !declared[s.symbol] {
				errs = append(errs, fmt.Errorf("rule %q refers to undefined symbol %q", p.rule, s.symbol))
				declared[s.symbol] = true
				continue
			}
			terminalSet[s.symbol] = true
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	terminals := sortedKeys(terminalSet)
	terminals = append(terminals, "$end")
	nts := sortedKeys(nonterminals)

	g := &Grammar{
		index:        make(map[string]int),
		NumTerminals: len(terminals),
		order:        b.order,
		bodies:       b.rules,
		external:     b.terminals,
	}
	for _, t := range terminals {
		sym := Symbol{ID: len(g.Symbols), Terminal: true}
		switch {
		case strings.HasPrefix(t, `"`) && len(t) >= 2:
			sym.Name = t[1 : len(t)-1]
			sym.Literal = true
		default:
			sym.Name = t
			sym.Hidden = strings.HasPrefix(t, "_") || t == "$end"
		}
		g.index[t] = sym.ID
		g.Symbols = append(g.Symbols, sym)
	}
	g.EOF = g.index["$end"]
	for _, n := range nts {
		_, aux := x.auxRule[n]
		sym := Symbol{
			ID:        len(g.Symbols),
			Name:      n,
			Aux:       aux,
			Supertype: b.supertypes[n],
		}
		sym.Hidden = strings.HasPrefix(n, "_") || strings.HasPrefix(n, "$") || sym.Aux || sym.Supertype
		g.index[n] = sym.ID
		g.Symbols = append(g.Symbols, sym)
	}
	g.Start = g.index["$start"]

	g.byLHS = make([][]int, len(nts))
	for i, p := range x.prods {
		prod := Production{ID: i, LHS: g.index[p.lhs], Rule: p.rule}
		prod.Steps = make([]Step, len(p.steps))
		for j, s := range p.steps {
			prod.Steps[j] = Step{
				Symbol: g.index[s.symbol],
				Field:  s.field,
				Alias:  s.alias,
				Prec:   s.prec,
				Assoc:  s.assoc,
			}
		}
		g.Productions = append(g.Productions, prod)
		g.byLHS[prod.LHS-g.NumTerminals] = append(g.byLHS[prod.LHS-g.NumTerminals], i)
	}
	return g, nil
}

// Build expands the grammar and generates LALR(1) tables. Conflicts that
// neither precedence nor a declared ConflictRule settles are returned as
// a *ConflictError and no table is produced.
func (b *Builder) Build() (*Table, error) {
	g, err := b.Grammar()
	if err != nil {
		return nil, err
	}
	return generate(g, b.conflicts)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
