package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/odinsyntax/lr"
)

func TestLoad(t *testing.T) {
	tbl, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	again, _ := Load()
	if again != tbl {
		t.Error("Load() should return the same table on every call")
	}
	if tbl.NumStates == 0 {
		t.Fatal("NumStates = 0")
	}
	for _, name := range Terminals {
		id, ok := tbl.Grammar.Lookup(name)
		if !ok {
			t.Errorf("terminal %q missing", name)
			continue
		}
		if !tbl.Grammar.IsTerminal(id) {
			t.Errorf("%q is not a terminal", name)
		}
	}
	for _, name := range Supertypes {
		sym := tbl.Grammar.Symbols[tbl.Grammar.MustLookup(name)]
		if !sym.Supertype || sym.Named() {
			t.Errorf("%s: Supertype = %v, Named = %v", name, sym.Supertype, sym.Named())
		}
	}
}

func TestDeclaredConflictsStayInArrayType(t *testing.T) {
	tbl, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tbl.Declared) == 0 {
		t.Fatal("expected the array_type conflict to be exercised")
	}
	for _, c := range tbl.Declared {
		for _, r := range c.Reduces {
			if !strings.HasPrefix(r, "array_type") {
				t.Errorf("declared conflict reduces %s", r)
			}
		}
	}
}

func TestUndeclaredConflictsFailClosed(t *testing.T) {
	_, err := rulesOnly().Build()
	var ce *lr.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("Build() without the conflict table error = %v, want *lr.ConflictError", err)
	}
	for _, c := range ce.Conflicts {
		if len(c.Reduces) == 0 {
			t.Errorf("conflict in state %d has no reduction", c.State)
		}
	}
}

func TestEBNFVerifies(t *testing.T) {
	g, err := NewBuilder().Grammar()
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}
	if err := g.VerifyEBNF(); err != nil {
		t.Errorf("VerifyEBNF() error = %v", err)
	}
	text := g.EBNF()
	for _, want := range []string{"source_file = ", "binary_expression = ", "_newline = "} {
		if !strings.Contains(text, want) {
			t.Errorf("EBNF() missing %q", want)
		}
	}
}

func TestPrecedenceSettlesBinaryChains(t *testing.T) {
	tbl, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	g := tbl.Grammar
	id := g.MustLookup("identifier")
	input := []int{id, g.MustLiteral("+"), id, g.MustLiteral("*"), id}

	p := lr.NewEarleyParser(g, input)
	start := g.MustLookup("expression")
	if ok, err := p.Parse(start); !ok {
		t.Fatalf("Parse() = false, %v", err)
	}
	if got := p.Derivations(start); got < 2 {
		t.Errorf("Derivations() = %d, want the rules alone to be ambiguous", got)
	}
}
