package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dhamidi/odinsyntax/odin/grammar"
	"github.com/dhamidi/odinsyntax/odin/parser"
)

func TestDerivations(t *testing.T) {
	p, err := parser.NewDefault()
	if err != nil {
		t.Fatal(err)
	}

	one, err := derivations(p, "source_file", []byte("x := 1 + 2\n"))
	if err != nil {
		t.Fatalf("derivations() error = %v", err)
	}
	if one < 1 {
		t.Fatalf("derivations(1 + 2) = %d, want at least 1", one)
	}
	two, err := derivations(p, "source_file", []byte("x := 1 + 2 * 3\n"))
	if err != nil {
		t.Fatalf("derivations() error = %v", err)
	}
	if two <= one {
		t.Errorf("derivations(1 + 2 * 3) = %d, want more than %d without precedence", two, one)
	}

	if _, err := derivations(p, "no_such_rule", []byte("x := 1\n")); err == nil {
		t.Error("unknown start rule should fail")
	}
	if _, err := derivations(p, "source_file", []byte("x := $$\n")); err == nil {
		t.Error("snippets with syntax errors should fail")
	}
}

func TestWriteStats(t *testing.T) {
	tbl, err := grammar.Load()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	writeStats(&buf, tbl)
	for _, want := range []string{"rules", "terminals", "states", "declared"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("stats lack %q:\n%s", want, buf.String())
		}
	}
}

func TestMatchRules(t *testing.T) {
	g, err := grammar.NewBuilder().Grammar()
	if err != nil {
		t.Fatal(err)
	}
	got := matchRules(g, "procedure")
	if len(got) == 0 {
		t.Fatal("no rules start with procedure")
	}
	for i, name := range got {
		if !strings.HasPrefix(name, "procedure") {
			t.Errorf("matchRules returned %q", name)
		}
		if i > 0 && got[i-1] > name {
			t.Errorf("rules not sorted: %q before %q", got[i-1], name)
		}
	}
}

func TestCheckEBNF(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		start   string
		want    string
		wantErr bool
	}{
		{name: "syntax only", src: `a = "x" b . b = "y" .`, want: "t.ebnf: 2 productions\n"},
		{name: "verified", src: `a = "x" b . b = "y" .`, start: "a", want: "t.ebnf: 2 productions\n"},
		{name: "undefined production", src: `a = "x" c .`, start: "a", wantErr: true},
		{name: "missing period", src: `a = "x"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := checkEBNF(&out, "t.ebnf", strings.NewReader(tt.src), tt.start)
			if tt.wantErr {
				if err == nil {
					t.Errorf("checkEBNF() should fail, printed %q", out.String())
				} else if out.Len() == 0 {
					t.Error("checkEBNF() failed without printing the errors")
				}
				return
			}
			if err != nil {
				t.Fatalf("checkEBNF() error = %v", err)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("checkEBNF() printed %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuiltinGrammarChecks(t *testing.T) {
	name, src, err := ebnfSource(nil)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := checkEBNF(&out, name, src, "source_file"); err != nil {
		t.Fatalf("checkEBNF(%s) error = %v\n%s", name, err, out.String())
	}
}
