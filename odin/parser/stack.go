package parser

// entry is one frame of the persistent parse stack. Frames are never
// mutated once pushed, so a saved *entry is a snapshot of the whole stack.
// Extras sit on the stack with the state of the frame below them.
type entry struct {
	state int
	node  *Node
	extra bool
	prev  *entry
	depth int
}

func push(prev *entry, state int, node *Node, extra bool) *entry {
	e := &entry{state: state, node: node, extra: extra, prev: prev}
	if prev != nil {
		e.depth = prev.depth
	}
	if !extra {
		e.depth++
	}
	return e
}

func (e *entry) skipExtras() *entry {
	for e.extra {
		e = e.prev
	}
	return e
}

// validFrom simulates the reductions terminal would trigger from e and
// reports whether it is eventually shifted or accepted. No nodes are
// built and the stack is left untouched.
func (s *session) validFrom(e *entry, terminal int) bool {
	var states []int
	base := e
	top := func() int {
		if len(states) > 0 {
			return states[len(states)-1]
		}
		return base.state
	}
	for {
		a := s.table.Action(top(), terminal)
		switch a.Kind {
		case actionError:
			return false
		case actionShift, actionAccept:
			return true
		}
		prod := s.g.Productions[a.Target]
		for n := prod.Len(); n > 0; n-- {
			if len(states) > 0 {
				states = states[:len(states)-1]
			} else {
				base = base.skipExtras().prev
			}
		}
		base = base.skipExtras()
		next, _ := s.table.Goto(top(), prod.LHS)
		states = append(states, next)
	}
}

// reduceStates pops a production's frames without building its node.
func (s *session) reduceStates(e *entry, prod int) *entry {
	p := s.g.Productions[prod]
	for n := p.Len(); n > 0; n-- {
		e = e.skipExtras().prev
	}
	e = e.skipExtras()
	next, _ := s.table.Goto(e.state, p.LHS)
	return push(e, next, nil, false)
}

// oracle answers the lexer's questions against the current stack.
type oracle struct {
	s     *session
	stack *entry
}

func (o oracle) Valid(kind int) bool { return o.s.validFrom(o.stack, kind) }

func (o oracle) ValidAfter(first, second int) bool {
	if !o.s.validFrom(o.stack, first) {
		return false
	}
	e := o.stack
	for {
		a := o.s.table.Action(e.state, first)
		switch a.Kind {
		case actionShift:
			return o.s.validFrom(push(e, a.Target, nil, false), second)
		case actionAccept, actionError:
			return false
		}
		e = o.s.reduceStates(e, a.Target)
	}
}

// recoveryOracle accepts a token if any frame of the stack could take
// it. It is used while skipping input so that the lexer classifies the
// skipped text the way an enclosing construct would.
type recoveryOracle struct {
	s     *session
	stack *entry
}

func (o recoveryOracle) Valid(kind int) bool {
	for e := o.stack; e != nil; e = e.prev {
		if !e.extra && o.s.validFrom(e, kind) {
			return true
		}
	}
	return false
}

func (o recoveryOracle) ValidAfter(first, second int) bool { return false }
