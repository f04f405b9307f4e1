package lr

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("odinsyntax.lr")

type ActionKind uint8

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

func (k ActionKind) String() string {
	switch k {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionAccept:
		return "accept"
	default:
		return "error"
	}
}

// Action is a parse table entry. Target is the next state of a shift and
// the production of a reduce.
type Action struct {
	Kind   ActionKind
	Target int
}

func (a Action) String() string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("s%d", a.Target)
	case ActionReduce:
		return fmt.Sprintf("r%d", a.Target)
	case ActionAccept:
		return "acc"
	default:
		return "err"
	}
}

// Conflict describes a state where more than one action was possible
// on the same lookahead.
type Conflict struct {
	State     int
	Lookahead string
	Shifts    []string
	Reduces   []string
	Rules     []string
	Chosen    Action
}

func (c Conflict) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "state %d on %s (rules %s)", c.State, c.Lookahead, strings.Join(c.Rules, ", "))
	for _, s := range c.Shifts {
		fmt.Fprintf(&sb, "\n  shift  %s", s)
	}
	for _, r := range c.Reduces {
		fmt.Fprintf(&sb, "\n  reduce %s", r)
	}
	return sb.String()
}

// ConflictError is returned by Build when the grammar has ambiguities
// that are neither settled by precedence nor declared.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d undeclared conflicts", len(e.Conflicts))
	for i, c := range e.Conflicts {
		if i == 10 {
			fmt.Fprintf(&sb, "\n... and %d more", len(e.Conflicts)-i)
			break
		}
		sb.WriteString("\n")
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Table holds the dense action and goto tables of a grammar.
type Table struct {
	Grammar   *Grammar
	NumStates int
	// Declared lists the conflicts settled by a ConflictRule.
	Declared []Conflict

	actions []Action
	gotos   []int32
}

// Action returns the action for state on the terminal. Symbols outside
// the terminal range get ActionError.
func (t *Table) Action(state, terminal int) Action {
	if terminal < 0 || terminal >= t.Grammar.NumTerminals {
		return Action{}
	}
	return t.actions[state*t.Grammar.NumTerminals+terminal]
}

// Goto returns the state reached from state over the nonterminal.
func (t *Table) Goto(state, nonterminal int) (int, bool) {
	n := t.Grammar.NumNonterminals()
	g := t.gotos[state*n+nonterminal-t.Grammar.NumTerminals]
	return int(g), g >= 0
}

type generator struct {
	m         *automaton
	g         *Grammar
	conflicts []ConflictRule
	table     *Table
	undecided []Conflict
}

func generate(g *Grammar, conflicts []ConflictRule) (*Table, error) {
	started := time.Now()
	m := newAutomaton(g)
	gen := &generator{
		m:         m,
		g:         g,
		conflicts: conflicts,
		table: &Table{
			Grammar:   g,
			NumStates: len(m.states),
			actions:   make([]Action, len(m.states)*g.NumTerminals),
			gotos:     make([]int32, len(m.states)*g.NumNonterminals()),
		},
	}
	for i := range gen.table.gotos {
		gen.table.gotos[i] = -1
	}
	for id := range m.states {
		gen.fillState(id)
	}
	log.Debugf("generated %d states for %d productions in %s", len(m.states), len(g.Productions), time.Since(started))
	if len(gen.undecided) > 0 {
		return nil, &ConflictError{Conflicts: gen.undecided}
	}
	return gen.table, nil
}

func (gen *generator) fillState(id int) {
	g := gen.g
	st := gen.m.states[id]
	nt := g.NumTerminals

	for sym, to := range st.trans {
		if sym >= nt {
			gen.table.gotos[id*g.NumNonterminals()+sym-nt] = int32(to)
		}
	}

	shifts := make([][]item, nt)
	reduces := make([][]int, nt)
	add := func(it item, la bitset) {
		steps := g.Productions[it.prod].Steps
		if it.dot < len(steps) {
			if sym := steps[it.dot].Symbol; sym < nt {
				shifts[sym] = append(shifts[sym], it)
			}
			return
		}
		la.each(func(t int) {
			reduces[t] = append(reduces[t], it.prod)
		})
	}
	for i, it := range st.kernel {
		add(it, st.la[i])
	}
	for _, e := range st.closure {
		la := e.bits.clone()
		e.origins.each(func(o int) { la.union(st.la[o]) })
		for _, p := range g.ProductionsFor(e.nt) {
			add(item{prod: p, dot: 0}, la)
		}
	}
	for t := 0; t < nt; t++ {
		sh := shifts[t]
		rd := uniqueSorted(reduces[t])
		if len(sh) == 0 && len(rd) == 0 {
			continue
		}
		idx := id*nt + t
		if len(rd) > 0 && rd[0] == 0 {
			gen.table.actions[idx] = Action{Kind: ActionAccept}
			continue
		}
		if len(rd)+boolInt(len(sh) > 0) == 1 {
			if len(sh) > 0 {
				gen.table.actions[idx] = Action{Kind: ActionShift, Target: st.trans[t]}
			} else {
				gen.table.actions[idx] = Action{Kind: ActionReduce, Target: rd[0]}
			}
			continue
		}
		if a, ok := gen.resolve(st, t, sh, rd); ok {
			gen.table.actions[idx] = a
			continue
		}
		c := gen.describe(id, t, sh, rd)
		if rule, ok := gen.declared(rd); ok {
			c.Chosen = gen.resolveDeclared(st, t, sh, rd, rule.Prefer)
			gen.table.actions[idx] = c.Chosen
			gen.table.Declared = append(gen.table.Declared, c)
			continue
		}
		gen.undecided = append(gen.undecided, c)
	}
}

func (gen *generator) stepPrec(prod, dot int) (int, Assoc) {
	steps := gen.g.Productions[prod].Steps
	if dot < len(steps) {
		return steps[dot].Prec, steps[dot].Assoc
	}
	if len(steps) > 0 {
		last := steps[len(steps)-1]
		return last.Prec, last.Assoc
	}
	return 0, AssocNone
}

// resolve applies precedence. A reduce/reduce choice needs one strictly
// higher production; a shift/reduce choice compares the reduced
// production's level with the levels of the items that would shift,
// falling back to associativity when they are all equal.
func (gen *generator) resolve(st *lrState, t int, sh []item, rd []int) (Action, bool) {
	if len(rd) > 1 {
		best := 0
		for i, p := range rd {
			if lvl, _ := gen.stepPrec(p, gen.g.Productions[p].Len()); i == 0 || lvl > best {
				best = lvl
			}
		}
		var top []int
		for _, p := range rd {
			if lvl, _ := gen.stepPrec(p, gen.g.Productions[p].Len()); lvl == best {
				top = append(top, p)
			}
		}
		if len(top) > 1 {
			return Action{}, false
		}
		rd = top
	}
	if len(sh) == 0 {
		return Action{Kind: ActionReduce, Target: rd[0]}, true
	}
	r := rd[0]
	rp, ra := gen.stepPrec(r, gen.g.Productions[r].Len())
	minShift, maxShift := 0, 0
	for i, it := range sh {
		lvl, _ := gen.stepPrec(it.prod, it.dot)
		if i == 0 || lvl < minShift {
			minShift = lvl
		}
		if i == 0 || lvl > maxShift {
			maxShift = lvl
		}
	}
	shift := Action{Kind: ActionShift, Target: st.trans[t]}
	reduce := Action{Kind: ActionReduce, Target: r}
	switch {
	case rp > maxShift:
		return reduce, true
	case rp < minShift:
		return shift, true
	case minShift == maxShift && ra == AssocLeft:
		return reduce, true
	case minShift == maxShift && ra == AssocRight:
		return shift, true
	}
	return Action{}, false
}

func (gen *generator) declared(rd []int) (ConflictRule, bool) {
	rules := make(map[string]bool)
	for _, p := range rd {
		rules[gen.g.Productions[p].Rule] = true
	}
	for _, c := range gen.conflicts {
		if c.covers(rules) {
			return c, true
		}
	}
	return ConflictRule{}, false
}

func (gen *generator) resolveDeclared(st *lrState, t int, sh []item, rd []int, prefer Resolution) Action {
	best := rd[0]
	for _, p := range rd[1:] {
		if gen.g.Productions[p].Len() > gen.g.Productions[best].Len() {
			best = p
		}
	}
	if len(sh) > 0 && prefer == PreferShift {
		return Action{Kind: ActionShift, Target: st.trans[t]}
	}
	return Action{Kind: ActionReduce, Target: best}
}

func (gen *generator) describe(state, t int, sh []item, rd []int) Conflict {
	c := Conflict{State: state, Lookahead: gen.g.Name(t)}
	rules := make(map[string]bool)
	for _, it := range sh {
		c.Shifts = append(c.Shifts, gen.g.FormatItem(it.prod, it.dot))
		rules[gen.g.Productions[it.prod].Rule] = true
	}
	for _, p := range rd {
		c.Reduces = append(c.Reduces, gen.g.FormatItem(p, gen.g.Productions[p].Len()))
		rules[gen.g.Productions[p].Rule] = true
	}
	c.Rules = sortedKeys(rules)
	return c
}

func uniqueSorted(xs []int) []int {
	if len(xs) < 2 {
		return xs
	}
	sort.Ints(xs)
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
