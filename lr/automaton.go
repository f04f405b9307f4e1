package lr

import (
	"encoding/binary"
	"sort"
)

type item struct {
	prod int
	dot  int
}

type target struct {
	state int
	item  int
}

// closureLookahead is the lookahead of the closure items of one
// nonterminal: bits spontaneously generated inside the state plus the
// kernel items whose own lookahead flows through.
type closureLookahead struct {
	nt      int
	bits    bitset
	origins bitset
}

type lrState struct {
	kernel  []item
	index   map[item]int
	trans   map[int]int
	la      []bitset
	prop    [][]target
	closure []*closureLookahead
}

type automaton struct {
	g        *Grammar
	a        *analysis
	states   []*lrState
	byKernel map[string]int
	reach    [][]int
	suffix   [][]bitset
	suffixNl [][]bool
}

func newAutomaton(g *Grammar) *automaton {
	m := &automaton{
		g:        g,
		a:        analyze(g),
		byKernel: make(map[string]int),
	}
	m.computeReach()
	m.computeSuffixes()
	m.buildLR0()
	m.buildLookaheads()
	return m
}

func (m *automaton) isNonterminal(sym int) bool {
	return sym >= m.g.NumTerminals
}

// computeReach finds, for each nonterminal, every nonterminal that can
// begin one of its derivations. Closure of an item set is the union of
// these over the symbols after the dots.
func (m *automaton) computeReach() {
	n := m.g.NumNonterminals()
	corner := make([][]int, n)
	for _, p := range m.g.Productions {
		if len(p.Steps) > 0 && m.isNonterminal(p.Steps[0].Symbol) {
			corner[p.LHS-m.g.NumTerminals] = append(corner[p.LHS-m.g.NumTerminals], p.Steps[0].Symbol)
		}
	}
	m.reach = make([][]int, n)
	for i := 0; i < n; i++ {
		seen := make(map[int]bool)
		start := i + m.g.NumTerminals
		seen[start] = true
		stack := []int{start}
		for len(stack) > 0 {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, y := range corner[x-m.g.NumTerminals] {
				if !seen[y] {
					seen[y] = true
					stack = append(stack, y)
				}
			}
		}
		list := make([]int, 0, len(seen))
		for s := range seen {
			list = append(list, s)
		}
		sort.Ints(list)
		m.reach[i] = list
	}
}

func (m *automaton) computeSuffixes() {
	m.suffix = make([][]bitset, len(m.g.Productions))
	m.suffixNl = make([][]bool, len(m.g.Productions))
	for i, p := range m.g.Productions {
		m.suffix[i] = make([]bitset, len(p.Steps)+1)
		m.suffixNl[i] = make([]bool, len(p.Steps)+1)
		for d := 0; d <= len(p.Steps); d++ {
			m.suffix[i][d], m.suffixNl[i][d] = m.a.firstOf(p.Steps[d:])
		}
	}
}

func kernelKey(kernel []item) string {
	buf := make([]byte, 0, len(kernel)*8)
	for _, it := range kernel {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(it.prod))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(it.dot))
	}
	return string(buf)
}

func (m *automaton) addState(kernel []item) int {
	sort.Slice(kernel, func(i, j int) bool {
		if kernel[i].prod != kernel[j].prod {
			return kernel[i].prod < kernel[j].prod
		}
		return kernel[i].dot < kernel[j].dot
	})
	key := kernelKey(kernel)
	if id, ok := m.byKernel[key]; ok {
		return id
	}
	st := &lrState{
		kernel: kernel,
		index:  make(map[item]int, len(kernel)),
		trans:  make(map[int]int),
	}
	for i, it := range kernel {
		st.index[it] = i
	}
	id := len(m.states)
	m.byKernel[key] = id
	m.states = append(m.states, st)
	return id
}

// closureNonterminals returns the sorted nonterminals whose productions
// are added to the kernel by closure.
func (m *automaton) closureNonterminals(kernel []item) []int {
	seen := make(map[int]bool)
	for _, it := range kernel {
		steps := m.g.Productions[it.prod].Steps
		if it.dot < len(steps) && m.isNonterminal(steps[it.dot].Symbol) {
			for _, n := range m.reach[steps[it.dot].Symbol-m.g.NumTerminals] {
				seen[n] = true
			}
		}
	}
	list := make([]int, 0, len(seen))
	for n := range seen {
		list = append(list, n)
	}
	sort.Ints(list)
	return list
}

func (m *automaton) buildLR0() {
	m.addState([]item{{prod: 0, dot: 0}})
	for i := 0; i < len(m.states); i++ {
		st := m.states[i]
		items := append([]item(nil), st.kernel...)
		for _, n := range m.closureNonterminals(st.kernel) {
			for _, p := range m.g.ProductionsFor(n) {
				items = append(items, item{prod: p, dot: 0})
			}
		}
		next := make(map[int][]item)
		var order []int
		for _, it := range items {
			steps := m.g.Productions[it.prod].Steps
			if it.dot >= len(steps) {
				continue
			}
			sym := steps[it.dot].Symbol
			if _, ok := next[sym]; !ok {
				order = append(order, sym)
			}
			next[sym] = append(next[sym], item{prod: it.prod, dot: it.dot + 1})
		}
		for _, sym := range order {
			st.trans[sym] = m.addState(next[sym])
		}
	}
}

// buildLookaheads computes LALR(1) lookaheads by spontaneous generation
// and propagation along goto edges.
func (m *automaton) buildLookaheads() {
	nt := m.g.NumTerminals
	for _, st := range m.states {
		st.la = make([]bitset, len(st.kernel))
		st.prop = make([][]target, len(st.kernel))
		for i := range st.kernel {
			st.la[i] = newBitset(nt)
		}
	}
	m.states[0].la[0].set(m.g.EOF)

	for _, st := range m.states {
		entries := make(map[int]*closureLookahead)
		get := func(n int) *closureLookahead {
			e, ok := entries[n]
			if !ok {
				e = &closureLookahead{nt: n, bits: newBitset(nt), origins: newBitset(len(st.kernel))}
				entries[n] = e
			}
			return e
		}
		var work []int
		for i, it := range st.kernel {
			steps := m.g.Productions[it.prod].Steps
			if it.dot >= len(steps) || !m.isNonterminal(steps[it.dot].Symbol) {
				continue
			}
			e := get(steps[it.dot].Symbol)
			changed := e.bits.union(m.suffix[it.prod][it.dot+1])
			if m.suffixNl[it.prod][it.dot+1] && !e.origins.has(i) {
				e.origins.set(i)
				changed = true
			}
			if changed {
				work = append(work, e.nt)
			}
		}
		for len(work) > 0 {
			n := work[len(work)-1]
			work = work[:len(work)-1]
			e := entries[n]
			for _, p := range m.g.ProductionsFor(n) {
				steps := m.g.Productions[p].Steps
				if len(steps) == 0 || !m.isNonterminal(steps[0].Symbol) {
					continue
				}
				t := get(steps[0].Symbol)
				changed := t.bits.union(m.suffix[p][1])
				if m.suffixNl[p][1] {
					if t.bits.union(e.bits) {
						changed = true
					}
					if t.origins.union(e.origins) {
						changed = true
					}
				}
				if changed {
					work = append(work, t.nt)
				}
			}
		}

		keys := make([]int, 0, len(entries))
		for n := range entries {
			keys = append(keys, n)
		}
		sort.Ints(keys)
		for _, n := range keys {
			st.closure = append(st.closure, entries[n])
		}

		for i, it := range st.kernel {
			steps := m.g.Productions[it.prod].Steps
			if it.dot < len(steps) {
				tgt := st.trans[steps[it.dot].Symbol]
				next := m.states[tgt].index[item{prod: it.prod, dot: it.dot + 1}]
				st.prop[i] = append(st.prop[i], target{state: tgt, item: next})
			}
		}
		for _, e := range st.closure {
			for _, p := range m.g.ProductionsFor(e.nt) {
				steps := m.g.Productions[p].Steps
				if len(steps) == 0 {
					continue
				}
				tgt := st.trans[steps[0].Symbol]
				next := m.states[tgt].index[item{prod: p, dot: 1}]
				m.states[tgt].la[next].union(e.bits)
				e.origins.each(func(o int) {
					st.prop[o] = append(st.prop[o], target{state: tgt, item: next})
				})
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, st := range m.states {
			for i, targets := range st.prop {
				for _, t := range targets {
					if m.states[t.state].la[t.item].union(st.la[i]) {
						changed = true
					}
				}
			}
		}
	}
}
