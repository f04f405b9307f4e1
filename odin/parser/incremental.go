package parser

import (
	"slices"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/dhamidi/odinsyntax/odin/lexer"
)

// Edit describes a contiguous replacement: the bytes [Start, OldEnd) of
// the old text became [Start, NewEnd) of the new text.
type Edit struct {
	Start  int
	OldEnd int
	NewEnd int
}

// Delta is the change in length the edit causes.
func (e Edit) Delta() int { return e.NewEnd - e.OldEnd }

// ApplyEdit replaces src[start:end] with text and returns the new buffer
// with the matching Edit.
func ApplyEdit(src []byte, start, end int, text string) ([]byte, Edit) {
	out := make([]byte, 0, len(src)-(end-start)+len(text))
	out = append(out, src[:start]...)
	out = append(out, text...)
	out = append(out, src[end:]...)
	return out, Edit{Start: start, OldEnd: end, NewEnd: start + len(text)}
}

// Checkpoint is a top-level statement boundary. Lexing restarted at
// Offset with State produces the same tokens as the original run, as long
// as no byte before Watermark changed. Index counts the root children
// that end before the boundary.
type Checkpoint struct {
	Offset    int
	State     lexer.State
	Watermark int
	Index     int
}

// checkpoint is a Checkpoint plus what resuming there takes: the
// lookahead that completed the statement, the lexer right after it and
// the end of the last shifted token. A checkpoint is clean when no
// recovery left state at or after its offset; only clean checkpoints
// are resumed from or rejoined at.
type checkpoint struct {
	Checkpoint

	look       lexer.Token
	lookState  lexer.State
	lookWM     int
	suppressed []lexer.Suppressed
	lastEnd    int
	clean      bool
}

func (c *checkpoint) shifted(delta, index int) *checkpoint {
	n := *c
	n.Offset += delta
	n.Watermark += delta
	n.Index = index
	n.look = shiftToken(c.look, delta)
	n.lookWM += delta
	n.lastEnd += delta
	n.suppressed = shiftSuppressed(c.suppressed, delta)
	return &n
}

// joins reports whether a session at c continues exactly like the old
// one did at o, which lies delta bytes earlier.
func (c *checkpoint) joins(o *checkpoint, delta int) bool {
	if !c.clean || !o.clean || c.State != o.State || c.lookState != o.lookState {
		return false
	}
	if c.lastEnd != o.lastEnd+delta || !sameToken(c.look, shiftToken(o.look, delta)) {
		return false
	}
	return slices.Equal(c.suppressed, shiftSuppressed(o.suppressed, delta))
}

func shiftToken(t lexer.Token, delta int) lexer.Token {
	t.Start += delta
	t.End += delta
	if t.Extras != nil {
		extras := make([]lexer.Extra, len(t.Extras))
		for i, x := range t.Extras {
			x.Start += delta
			x.End += delta
			extras[i] = x
		}
		t.Extras = extras
	}
	return t
}

func sameToken(a, b lexer.Token) bool {
	return a.Kind == b.Kind && a.Start == b.Start && a.End == b.End &&
		a.Synthetic == b.Synthetic && slices.Equal(a.Extras, b.Extras)
}

func shiftSuppressed(xs []lexer.Suppressed, delta int) []lexer.Suppressed {
	out := make([]lexer.Suppressed, len(xs))
	for i, x := range xs {
		x.Offset += delta
		out[i] = x
	}
	return out
}

// Tree is the result of a parse.
type Tree struct {
	Root   *Node
	Source []byte

	checkpoints *treemap.Map
}

// Checkpoints returns the tree's statement boundaries in offset order.
func (t *Tree) Checkpoints() []Checkpoint {
	out := make([]Checkpoint, 0, t.checkpoints.Size())
	for _, v := range t.checkpoints.Values() {
		out = append(out, v.(*checkpoint).Checkpoint)
	}
	return out
}

// CheckpointAt returns the last checkpoint at or before offset.
func (t *Tree) CheckpointAt(offset int) (Checkpoint, bool) {
	k, v := t.checkpoints.Floor(offset)
	if k == nil {
		return Checkpoint{}, false
	}
	return v.(*checkpoint).Checkpoint, true
}

// checkpointBefore finds the last clean checkpoint whose lexing,
// including its lookahead, did not look at offset or beyond.
func (t *Tree) checkpointBefore(offset int) (*checkpoint, bool) {
	var best *checkpoint
	it := t.checkpoints.Iterator()
	for it.Next() {
		cp := it.Value().(*checkpoint)
		if cp.clean && cp.lookWM <= offset {
			best = cp
		}
		if cp.Offset > offset {
			break
		}
	}
	return best, best != nil
}

// HasError reports whether the tree contains ERROR or MISSING nodes.
func (t *Tree) HasError() bool { return t.Root.HasError() }

func (t *Tree) String() string { return t.Root.String() }

// boundary records a checkpoint after a top-level statement has been
// reduced on the lookahead tok. When reparsing, it also checks whether
// the old tree had the same boundary past the edit; if so the rest of
// the old tree is reused and the finished tree is returned.
func (s *session) boundary(stack *entry, tok lexer.Token) *Tree {
	off, st, wm := s.prePos, s.preState, s.preWatermark

	var above []*Node
	for e := stack; e.prev != nil; e = e.prev {
		above = append(above, e.node)
	}
	idx := 0
	for i, j := 0, len(above)-1; i < j; i, j = i+1, j-1 {
		above[i], above[j] = above[j], above[i]
	}
	for _, n := range above {
		idx += n.flat
	}
	s.snap = snapshot{stack: stack, pos: off, state: st}
	s.lx.DropSuppressedBefore(off)
	cp := &checkpoint{
		Checkpoint: Checkpoint{Offset: off, State: st, Watermark: wm, Index: idx},
		look:       tok,
		lookState:  s.postState,
		lookWM:     s.lx.Watermark(),
		suppressed: slices.Clone(s.lx.Suppressed()),
		lastEnd:    s.lastEnd,
		clean:      !s.recoveredFrom(off),
	}
	s.cps.Put(off, cp)

	if s.old == nil {
		return nil
	}
	delta := s.edit.Delta()
	if off < s.edit.NewEnd {
		return nil
	}
	v, ok := s.old.checkpoints.Get(off - delta)
	if !ok {
		return nil
	}
	oc := v.(*checkpoint)
	if oc.Offset < s.edit.OldEnd || !cp.joins(oc, delta) {
		return nil
	}

	var kids []*Node
	for _, n := range above {
		if s.spliceable(n) {
			kids = append(kids, s.flatten(n)...)
		} else {
			kids = append(kids, n)
		}
	}
	for _, n := range s.old.Root.Children[oc.Index:] {
		kids = append(kids, n.shifted(delta))
	}
	root := newNode(s.g.Name(s.sourceFile), true, s.sourceFile, 0, len(s.src), kids, false)

	it := s.old.checkpoints.Iterator()
	for it.Next() {
		c := it.Value().(*checkpoint)
		if c.Offset <= oc.Offset {
			continue
		}
		s.cps.Put(c.Offset+delta, c.shifted(delta, c.Index-oc.Index+idx))
	}
	log.Debugf("reparse: rejoined old tree at %d, reused %d top-level nodes", off, len(s.old.Root.Children)-oc.Index)
	return s.tree(root)
}

// recoveredFrom reports whether error recovery left state that affects
// lexing or parsing at or after offset.
func (s *session) recoveredFrom(offset int) bool {
	for at := range s.guard {
		if at >= offset {
			return true
		}
	}
	return s.lx.ForcedFrom(offset)
}
