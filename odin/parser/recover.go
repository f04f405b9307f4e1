package parser

import "github.com/dhamidi/odinsyntax/odin/lexer"

// Insertion attempts allowed at one offset before falling back to
// skipping input. At the end of input every unclosed group may need a
// closer, so the limit is higher there.
const (
	insertLimit    = 4
	insertLimitEOF = 64
)

// recover is called when tok has no action in the current state. It
// tries, in order: a zero-width ERROR node standing for a missing
// expression, type or statement; turning a line break after an
// assignment operator back into a separator; a MISSING closer; and
// finally panic mode, which skips to a token some enclosing construct
// accepts and wraps everything dropped in an ERROR node.
func (s *session) recover(stack *entry, tok lexer.Token) (*entry, lexer.Token) {
	limit := insertLimit
	if tok.Kind == s.kinds.EOF {
		limit = insertLimitEOF
	}
	if s.guard[tok.Start] < limit {
		s.guard[tok.Start]++

		for _, nt := range s.missing {
			state, ok := s.table.Goto(stack.state, nt)
			if !ok {
				continue
			}
			if s.validFrom(push(stack, state, nil, false), tok.Kind) {
				log.Debugf("recover: missing %s at %d", s.g.Name(nt), s.lastEnd)
				return push(stack, state, newError(s.lastEnd, s.lastEnd, nil), false), tok
			}
		}

		if e, t, ok := s.retrySeparator(); ok {
			return e, t
		}

		if s.syncToken(tok.Kind) {
			o := oracle{s: s, stack: stack}
			for _, c := range s.kinds.Closers() {
				if s.validFrom(stack, c) && (tok.Kind == s.kinds.EOF || o.ValidAfter(c, tok.Kind)) {
					log.Debugf("recover: missing %s at %d", s.g.Name(c), tok.Start)
					return s.shiftMissing(stack, c, tok), tok
				}
			}
		}
	}
	return s.skipInput(stack, tok)
}

// syncToken reports whether kind is a token panic mode stops at.
func (s *session) syncToken(kind int) bool {
	return kind == s.kinds.EOF || s.kinds.Separator(kind) || s.kinds.IsCloser(kind)
}

// retrySeparator handles a statement that ran into the next line because
// its value was missing, as in "x :=" followed by another statement. The
// line break after the assignment operator is forced to be a separator
// and lexing restarts from the last snapshot.
func (s *session) retrySeparator() (*entry, lexer.Token, bool) {
	for _, sup := range s.lx.Suppressed() {
		if !s.kinds.Assigns(sup.Prev) || s.lx.Forced(sup.Offset) || sup.Offset < s.snap.pos {
			continue
		}
		log.Debugf("recover: separator at %d, restarting at %d", sup.Offset, s.snap.pos)
		s.lx.Force(sup.Offset)
		s.lx.Reset(s.snap.pos, s.snap.state)
		for _, k := range s.cps.Keys() {
			if k.(int) > s.snap.pos {
				s.cps.Remove(k)
			}
		}
		if s.record != nil {
			toks := *s.record
			for len(toks) > 0 && toks[len(toks)-1].Start >= s.snap.pos {
				toks = toks[:len(toks)-1]
			}
			*s.record = toks
		}
		s.lastEnd = 0
		if n := s.snap.stack.node; n != nil {
			s.lastEnd = n.End
		}
		return s.snap.stack, s.lex(s.snap.stack, false), true
	}
	return nil, lexer.Token{}, false
}

// shiftMissing performs the reductions closer triggers and shifts a
// zero-width MISSING token for it at tok.
func (s *session) shiftMissing(stack *entry, closer int, tok lexer.Token) *entry {
	for {
		a := s.table.Action(stack.state, closer)
		if a.Kind != actionShift {
			stack = s.reduce(stack, a.Target)
			continue
		}
		n := s.leaf(lexer.Token{Kind: closer, Start: tok.Start, End: tok.Start})
		n.Missing = true
		st := s.lx.State()
		switch closer {
		case s.kinds.Quote, s.kinds.Backtick:
			st.Prev = closer
			st.Mode = lexer.StringNone
		default:
			st = s.kinds.Advance(st, closer)
		}
		s.lx.SetState(st)
		return push(stack, a.Target, n, false)
	}
}

// skipInput skips tokens until one of them can be taken by some frame of
// the stack, then pops to that frame. Popped and skipped nodes are
// wrapped in an ERROR node pushed as an extra.
func (s *session) skipInput(stack *entry, tok lexer.Token) (*entry, lexer.Token) {
	var skipped []*Node
	for {
		if s.syncToken(tok.Kind) {
			e := stack
			for e != nil && (e.extra || !s.validFrom(e, tok.Kind)) {
				e = e.prev
			}
			if e != nil {
				var dropped []*Node
				for x := stack; x != e; x = x.prev {
					dropped = append(dropped, x.node)
				}
				for i, j := 0, len(dropped)-1; i < j; i, j = i+1, j-1 {
					dropped[i], dropped[j] = dropped[j], dropped[i]
				}
				dropped = append(dropped, skipped...)
				if len(dropped) == 0 {
					return e, tok
				}
				var kids []*Node
				for _, n := range dropped {
					switch {
					case s.spliceable(n):
						kids = append(kids, s.flatten(n)...)
					case n.hidden && !n.Error:
					default:
						kids = append(kids, n)
					}
				}
				errNode := newError(dropped[0].Start, dropped[len(dropped)-1].End, kids)
				log.Debugf("recover: skipped %d-%d", errNode.Start, errNode.End)
				return push(e, e.state, errNode, true), tok
			}
		}
		for _, x := range tok.Extras {
			skipped = append(skipped, extraNode(x))
		}
		if tok.Kind != s.kinds.EOF {
			skipped = append(skipped, s.leaf(tok))
		}
		s.lastEnd = tok.End
		tok = s.lex(stack, true)
	}
}
