package parser

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/odinsyntax/lr"
	"github.com/dhamidi/odinsyntax/odin/grammar"
	"github.com/dhamidi/odinsyntax/odin/lexer"
)

var log = commonlog.GetLogger("odinsyntax.parser")

const (
	actionError  = lr.ActionError
	actionShift  = lr.ActionShift
	actionReduce = lr.ActionReduce
	actionAccept = lr.ActionAccept
)

// Parser turns Odin source into syntax trees. It holds only immutable
// tables and is safe for concurrent use.
type Parser struct {
	table *lr.Table
	g     *lr.Grammar
	kinds *lexer.Kinds

	// the repetition that collects top-level statements; each of its
	// reductions at the bottom of the stack is a checkpoint
	topRepeat      int
	topRepeatState int
	sourceFile     int
	missing        []int
	prods          []production
}

// production caches what building a node needs to know per step.
type production struct {
	lhs     int
	kind    string
	named   bool
	hidden  bool
	steps   []lr.Step
	nonterm []bool
	// aliased reports per step whether an alias names a node rather
	// than a keyword.
	aliased []bool
}

// New prepares a parser for tables generated from the Odin grammar.
func New(table *lr.Table) (*Parser, error) {
	g := table.Grammar
	p := &Parser{table: table, g: g, kinds: lexer.NewKinds(g)}

	var ok bool
	if p.sourceFile, ok = g.Lookup("source_file"); !ok {
		return nil, fmt.Errorf("parser: grammar has no source_file rule")
	}
	p.topRepeat = -1
	for _, sym := range g.Symbols {
		if sym.Aux && sym.Name == "source_file_repeat1" {
			p.topRepeat = sym.ID
		}
	}
	if p.topRepeat < 0 {
		return nil, fmt.Errorf("parser: grammar has no top-level repetition")
	}
	if p.topRepeatState, ok = table.Goto(0, p.topRepeat); !ok {
		return nil, fmt.Errorf("parser: no goto on %s from the start state", g.Name(p.topRepeat))
	}
	for _, name := range []string{"expression", "type", "statement"} {
		if id, ok := g.Lookup(name); ok && !g.IsTerminal(id) {
			p.missing = append(p.missing, id)
		}
	}

	p.prods = make([]production, len(g.Productions))
	for i, prod := range g.Productions {
		lhs := g.Symbols[prod.LHS]
		pr := production{
			lhs:     prod.LHS,
			kind:    lhs.Name,
			named:   lhs.Named(),
			hidden:  lhs.Hidden,
			steps:   prod.Steps,
			nonterm: make([]bool, len(prod.Steps)),
			aliased: make([]bool, len(prod.Steps)),
		}
		for j, st := range prod.Steps {
			pr.nonterm[j] = !g.IsTerminal(st.Symbol)
			if st.Alias != "" {
				_, keyword := g.LiteralID(st.Alias)
				pr.aliased[j] = isNameStart(st.Alias[0]) && !keyword
			}
		}
		p.prods[i] = pr
	}
	return p, nil
}

// NewDefault returns a parser for the built-in Odin grammar.
func NewDefault() (*Parser, error) {
	t, err := grammar.Load()
	if err != nil {
		return nil, err
	}
	return New(t)
}

// Kinds exposes the token vocabulary of the parser's grammar.
func (p *Parser) Kinds() *lexer.Kinds { return p.kinds }

// Grammar returns the grammar the parser's tables were built from.
func (p *Parser) Grammar() *lr.Grammar { return p.g }

// Parse builds the tree for src. It always returns a tree covering the
// whole input; malformed text shows up as ERROR and MISSING nodes.
func (p *Parser) Parse(src []byte) *Tree {
	return p.newSession(src, nil, Edit{}).run()
}

// Reparse builds the tree for src, the result of applying edit to the
// text old was parsed from. Statements before the edit are reused from
// old, and once lexing after the edit reaches a statement boundary that
// old also had in the same lexer state, the rest of old is shifted in
// place. The result equals Parse(src) node for node.
func (p *Parser) Reparse(old *Tree, src []byte, edit Edit) *Tree {
	return p.newSession(src, old, edit).run()
}

// Tokens parses src and returns the tokens the parser shifted, in order,
// along with the tree. Synthetic tokens are included. For input with
// syntax errors the sequence also holds tokens later dropped by
// recovery.
func (p *Parser) Tokens(src []byte) ([]lexer.Token, *Tree) {
	var toks []lexer.Token
	s := p.newSession(src, nil, Edit{})
	s.record = &toks
	tree := s.run()
	return toks, tree
}

type snapshot struct {
	stack *entry
	pos   int
	state lexer.State
}

// session is the state of one parse.
type session struct {
	*Parser
	src []byte
	lx  *lexer.Lexer

	cps     *treemap.Map
	old     *Tree
	edit    Edit
	initial *entry

	snap    snapshot
	lastEnd int
	guard   map[int]int

	// first lookahead when resuming from a checkpoint
	resume *lexer.Token

	// lexer position before the current lookahead
	prePos        int
	preState      lexer.State
	preWatermark  int
	preRecovering bool
	postState     lexer.State

	// shifted tokens, when recording
	record *[]lexer.Token
}

func (p *Parser) newSession(src []byte, old *Tree, edit Edit) *session {
	s := &session{
		Parser: p,
		src:    src,
		cps:    treemap.NewWithIntComparator(),
		guard:  make(map[int]int),
		old:    old,
		edit:   edit,
	}
	stack := push(nil, 0, nil, false)
	s.lx = lexer.New(src, p.kinds)
	if old != nil {
		if cp, ok := old.checkpointBefore(edit.Start); ok {
			it := old.checkpoints.Iterator()
			for it.Next() && it.Key().(int) <= cp.Offset {
				s.cps.Put(it.Key(), it.Value())
			}
			prefix := newNode(p.g.Name(p.topRepeat), false, p.topRepeat, 0, cp.Offset,
				old.Root.Children[:cp.Index:cp.Index], true)
			stack = push(stack, p.topRepeatState, prefix, false)

			// pick up right after the lookahead that completed the
			// statement before cp, as the original run did
			s.lx = lexer.NewAt(src, p.kinds, cp.lookState, cp.look.End)
			s.lx.SetWatermark(cp.lookWM)
			s.lx.SetSuppressed(cp.suppressed)
			s.snap = snapshot{stack: stack, pos: cp.Offset, state: cp.State}
			s.lastEnd = cp.lastEnd
			s.prePos, s.preState, s.preWatermark = cp.Offset, cp.State, cp.Watermark
			s.postState = cp.lookState
			s.initial = stack
			s.resume = &cp.look
			log.Debugf("reparse: resuming at checkpoint %d after %d top-level nodes", cp.Offset, cp.Index)
			return s
		}
	}
	s.snap = snapshot{stack: stack, pos: s.lx.Pos(), state: s.lx.State()}
	s.lastEnd = s.lx.Pos()
	s.initial = stack
	return s
}

func (s *session) lex(stack *entry, recovering bool) lexer.Token {
	s.prePos, s.preState, s.preWatermark = s.lx.Pos(), s.lx.State(), s.lx.Watermark()
	s.preRecovering = recovering
	var tok lexer.Token
	if recovering {
		tok = s.lx.Next(recoveryOracle{s: s, stack: stack})
	} else {
		tok = s.lx.Next(oracle{s: s, stack: stack})
	}
	s.postState = s.lx.State()
	return tok
}

func (s *session) run() *Tree {
	stack := s.initial
	var tok lexer.Token
	if s.resume != nil {
		tok = *s.resume
	} else {
		tok = s.lex(stack, false)
	}
	for {
		a := s.table.Action(stack.state, tok.Kind)
		switch a.Kind {
		case actionError:
			stack, tok = s.recover(stack, tok)

		case actionShift:
			stack = s.shift(stack, a.Target, tok)
			if s.kinds.Separator(tok.Kind) || tok.Kind == s.kinds.LBrace {
				s.snap = snapshot{stack: stack, pos: s.lx.Pos(), state: s.lx.State()}
				s.lx.ClearSuppressed()
			}
			tok = s.lex(stack, false)

		case actionAccept:
			return s.accept(stack, tok)

		case actionReduce:
			stack = s.reduce(stack, a.Target)
			if stack.node.Symbol == s.topRepeat && stack.depth == 2 && !s.preRecovering {
				if t := s.boundary(stack, tok); t != nil {
					return t
				}
			}
		}
	}
}

func (s *session) shift(stack *entry, state int, tok lexer.Token) *entry {
	for _, x := range tok.Extras {
		stack = push(stack, stack.state, extraNode(x), true)
	}
	stack = push(stack, state, s.leaf(tok), false)
	s.lastEnd = tok.End
	if s.record != nil {
		*s.record = append(*s.record, tok)
	}
	return stack
}

func (s *session) accept(stack *entry, tok lexer.Token) *Tree {
	var below []*Node
	for e := stack.prev; e != nil && e.extra; e = e.prev {
		below = append(below, e.node)
	}
	kids := make([]*Node, 0, len(below)+len(stack.node.Children)+len(tok.Extras))
	for i := len(below) - 1; i >= 0; i-- {
		kids = append(kids, below[i])
	}
	kids = append(kids, stack.node.Children...)
	for _, x := range tok.Extras {
		kids = append(kids, extraNode(x))
	}
	root := newNode(stack.node.Kind, true, stack.node.Symbol, 0, len(s.src), kids, false)
	return s.tree(root)
}

// reduce pops the frames of prod, builds its node and pushes the goto.
// Extras between the popped frames become children of the new node.
func (s *session) reduce(stack *entry, prod int) *entry {
	pr := &s.prods[prod]
	var entries []*entry
	e := stack
	for n := len(pr.steps); n > 0; e = e.prev {
		entries = append(entries, e)
		if !e.extra {
			n--
		}
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	start, end := s.lastEnd, s.lastEnd
	if len(entries) > 0 {
		start, end = entries[0].node.Start, entries[len(entries)-1].node.End
	}
	node := newNode(pr.kind, pr.named, pr.lhs, start, end, s.build(pr, entries), pr.hidden)
	next, _ := s.table.Goto(e.skipExtras().state, pr.lhs)
	return push(e, next, node, false)
}

// build assembles the children of a reduced node. Hidden nonterminals
// are spliced into the parent and hidden tokens dropped. Aliased steps
// are renamed, and fields are attached to the children they label.
func (s *session) build(pr *production, entries []*entry) []*Node {
	var children []*Node
	i := 0
	for _, en := range entries {
		if en.extra {
			children = append(children, en.node)
			continue
		}
		step := pr.steps[i]
		nonterm := pr.nonterm[i]
		named := pr.aliased[i]
		i++
		c := en.node

		if step.Alias != "" {
			var kids []*Node
			if nonterm {
				kids = c.Children
			}
			n := newNode(step.Alias, named, step.Symbol, c.Start, c.End, kids, false)
			n.Error, n.Missing = c.Error, c.Missing
			n.Field = c.Field
			if step.Field != "" {
				n.Field = step.Field
			}
			children = append(children, n)
			continue
		}
		if c.hidden && !c.Error {
			if !nonterm {
				continue
			}
			for _, g := range c.Children {
				if step.Field != "" && g.Field == "" && !g.Extra {
					g.Field = step.Field
				}
				children = append(children, g)
			}
			continue
		}
		if step.Field != "" {
			c.Field = step.Field
		}
		children = append(children, c)
	}
	return children
}

// spliceable reports whether n is a hidden rule whose children take its
// place in the parent.
func (s *session) spliceable(n *Node) bool {
	return n.hidden && !n.Error && n.Symbol >= 0 && !s.g.IsTerminal(n.Symbol)
}

func (s *session) flatten(n *Node) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if s.spliceable(c) {
			out = append(out, s.flatten(c)...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

func (s *session) leaf(tok lexer.Token) *Node {
	if tok.Kind >= s.g.NumTerminals {
		return newNode("_unknown", true, -1, tok.Start, tok.End, nil, true)
	}
	sym := s.g.Symbols[tok.Kind]
	if sym.Literal {
		return newNode(sym.Name, false, sym.ID, tok.Start, tok.End, nil, false)
	}
	return newNode(sym.Name, true, sym.ID, tok.Start, tok.End, nil, sym.Name[0] == '_')
}

func extraNode(x lexer.Extra) *Node {
	n := newNode(x.Kind.String(), true, -1, x.Start, x.End, nil, false)
	n.Extra = true
	return n
}

func (s *session) tree(root *Node) *Tree {
	return &Tree{Root: root, Source: s.src, checkpoints: s.cps}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
