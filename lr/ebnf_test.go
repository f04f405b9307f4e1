package lr

import (
	"strings"
	"testing"
)

func TestEBNF(t *testing.T) {
	b := NewBuilder("call")
	b.Terminal("identifier")
	b.Rule("call", Seq(
		Field("function", Sym("identifier")),
		Token("("),
		Optional(Seq(Sym("identifier"), Repeat(Seq(Token(","), Sym("identifier"))))),
		Token(")"),
	))
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}

	want := `call = identifier "(" [ identifier { "," identifier } ] ")" .
identifier = "<identifier>" .
`
	if got := g.EBNF(); got != want {
		t.Errorf("EBNF() =\n%s\nwant\n%s", got, want)
	}
	if err := g.VerifyEBNF(); err != nil {
		t.Errorf("VerifyEBNF() error = %v", err)
	}
}

func TestEBNFGroupsChoices(t *testing.T) {
	b := NewBuilder("s")
	b.Rule("s", Seq(Choice(Token("a"), Token("b")), Repeat1(Token("c"))))
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}
	want := `s = ( "a" | "b" ) "c" { "c" } .` + "\n"
	if got := g.EBNF(); got != want {
		t.Errorf("EBNF() = %q, want %q", got, want)
	}
}

func TestVerifyEBNFReportsUnusedRules(t *testing.T) {
	b := NewBuilder("s")
	b.Rule("s", Token("a"))
	b.Rule("orphan", Token("b"))
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}
	err = g.VerifyEBNF()
	if err == nil {
		t.Fatal("expected an error for an unreachable rule")
	}
	if !strings.Contains(err.Error(), "orphan") {
		t.Errorf("error = %q, want it to mention orphan", err)
	}
}
