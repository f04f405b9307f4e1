package lr

// analysis holds the nullable and FIRST sets of a grammar.
type analysis struct {
	g        *Grammar
	nullable []bool
	first    []bitset
}

func analyze(g *Grammar) *analysis {
	a := &analysis{
		g:        g,
		nullable: make([]bool, len(g.Symbols)),
		first:    make([]bitset, len(g.Symbols)),
	}
	for i := range g.Symbols {
		a.first[i] = newBitset(g.NumTerminals)
		if i < g.NumTerminals {
			a.first[i].set(i)
		}
	}

	for changed := true; changed; {
		changed = false
		for _, p := range g.Productions {
			if a.nullable[p.LHS] {
				continue
			}
			all := true
			for _, s := range p.Steps {
				if !a.nullable[s.Symbol] {
					all = false
					break
				}
			}
			if all {
				a.nullable[p.LHS] = true
				changed = true
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, p := range g.Productions {
			for _, s := range p.Steps {
				if a.first[p.LHS].union(a.first[s.Symbol]) {
					changed = true
				}
				if !a.nullable[s.Symbol] {
					break
				}
			}
		}
	}
	return a
}

// firstOf returns FIRST of steps and whether the whole sequence is
// nullable.
func (a *analysis) firstOf(steps []Step) (bitset, bool) {
	f := newBitset(a.g.NumTerminals)
	for _, s := range steps {
		f.union(a.first[s.Symbol])
		if !a.nullable[s.Symbol] {
			return f, false
		}
	}
	return f, true
}
