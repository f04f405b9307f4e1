package lr

import "testing"

func TestEarleyDerivations(t *testing.T) {
	g, err := ambiguousSum().Grammar()
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}
	start := g.MustLookup("expression")

	tests := []struct {
		input string
		want  int
	}{
		{"n", 1},
		{"n + n", 1},
		{"n + n + n", 2},
		{"n + n + n + n", 5},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := NewEarleyParser(g, tokens(t, g, tt.input))
			ok, err := p.Parse(start)
			if !ok || err != nil {
				t.Fatalf("Parse() = %v, %v, want true, nil", ok, err)
			}
			if got := p.Derivations(start); got != tt.want {
				t.Errorf("Derivations() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEarleyRejects(t *testing.T) {
	g, err := ambiguousSum().Grammar()
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}
	start := g.MustLookup("expression")
	for _, input := range []string{"n +", "+ n", "n n"} {
		t.Run(input, func(t *testing.T) {
			p := NewEarleyParser(g, tokens(t, g, input))
			ok, err := p.Parse(start)
			if ok || err == nil {
				t.Errorf("Parse() = %v, %v, want false with error", ok, err)
			}
			if got := p.Derivations(start); got != 0 {
				t.Errorf("Derivations() = %d, want 0", got)
			}
		})
	}
}

func TestEarleyNullable(t *testing.T) {
	g, err := listGrammar().Grammar()
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}
	start := g.MustLookup("list")
	for _, input := range []string{"[ ]", "[ x ]", "[ x x x ]"} {
		t.Run(input, func(t *testing.T) {
			p := NewEarleyParser(g, tokens(t, g, input))
			if ok, err := p.Parse(start); !ok {
				t.Fatalf("Parse() = false, %v", err)
			}
			if got := p.Derivations(start); got != 1 {
				t.Errorf("Derivations() = %d, want 1", got)
			}
		})
	}
}

func TestEarleyAgreesWithTables(t *testing.T) {
	tbl, err := arithmetic().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	g := tbl.Grammar
	start := g.MustLookup("expression")
	p := NewEarleyParser(g, tokens(t, g, "n + n * n"))
	if ok, err := p.Parse(start); !ok {
		t.Fatalf("Parse() = false, %v", err)
	}
	// The rules alone allow both groupings; precedence keeps one.
	if got := p.Derivations(start); got != 2 {
		t.Errorf("Derivations() = %d, want 2", got)
	}
	if got := run(t, tbl, tokens(t, g, "n + n * n")); got != `(number "+" (number "*" number))` {
		t.Errorf("table parse = %s", got)
	}
}

// unitCycle lets an expression derive itself through atom and group
// without consuming input.
func unitCycle() *Builder {
	b := NewBuilder("expression")
	b.Terminal("number")
	b.Rule("expression", Choice(
		Seq(Sym("expression"), Token("+"), Sym("expression")),
		Sym("atom"),
	))
	b.Rule("atom", Choice(Sym("number"), Sym("group")))
	b.Rule("group", Sym("expression"))
	return b
}

func TestEarleyDerivationsAcrossUnitCycles(t *testing.T) {
	g, err := unitCycle().Grammar()
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}
	start := g.MustLookup("expression")

	tests := []struct {
		input string
		want  int
	}{
		{"n", 1},
		{"n + n", 2},
		{"n + n + n", 8},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := NewEarleyParser(g, tokens(t, g, tt.input))
			if ok, err := p.Parse(start); !ok {
				t.Fatalf("Parse() = false, %v", err)
			}
			if got := p.Derivations(start); got != tt.want {
				t.Errorf("Derivations() = %d, want %d", got, tt.want)
			}
			// A second count must not reuse results cut short by the first.
			if got := p.Derivations(start); got != tt.want {
				t.Errorf("second Derivations() = %d, want %d", got, tt.want)
			}
		})
	}
}
