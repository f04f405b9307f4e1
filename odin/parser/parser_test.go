package parser

import (
	"os"
	"strings"
	"testing"
)

func newParser(t testing.TB) *Parser {
	t.Helper()
	p, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault() error = %v", err)
	}
	return p
}

func collectErrors(n *Node) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Error || c.Missing {
			out = append(out, c)
		}
		return true
	})
	return out
}

func TestParse(t *testing.T) {
	p := newParser(t)
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "continued binary expression",
			src:  "x := a +\n    b\n",
			want: "(source_file (variable_declaration (identifier) (binary_expression left: (identifier) right: (identifier))))",
		},
		{
			name: "range of integers",
			src:  "x := 1..5\n",
			want: "(source_file (variable_declaration (identifier) (range_expression start: (number) end: (number))))",
		},
		{
			name: "float",
			src:  "x := 1.5\n",
			want: "(source_file (variable_declaration (identifier) (float)))",
		},
		{
			name: "compound literal",
			src:  "x := T{x = 1}\n",
			want: "(source_file (variable_declaration (identifier) (struct type: (identifier) (struct_field (identifier) (number)))))",
		},
		{
			name: "if block",
			src:  "main :: proc() {\n\tif c {x = 1}\n}\n",
			want: "(source_file (procedure_declaration (identifier) (procedure (parameters) (block (if_statement condition: (identifier) consequence: (block (assignment_statement (identifier) (number))))))))",
		},
		{
			name: "multi-line call with omitted trailing comma",
			src:  "foo(\n\ta,\n\tb\n)\n",
			want: "(source_file (call_expression function: (identifier) argument: (identifier) argument: (identifier)))",
		},
		{
			name: "package and import",
			src:  "package main\n\nimport \"core:fmt\"\n",
			want: "(source_file (package_declaration (identifier)) (import_declaration (string (string_content))))",
		},
		{
			name: "interpreted and raw strings",
			src:  "x := \"a\\n\" + `raw`\n",
			want: "(source_file (variable_declaration (identifier) (binary_expression left: (string (string_content) (escape_sequence)) right: (string (string_content)))))",
		},
		{
			name: "character",
			src:  "c := 'x'\n",
			want: "(source_file (variable_declaration (identifier) (character)))",
		},
		{
			name: "multiple assignment",
			src:  "a, b := 1, 2\n",
			want: "(source_file (variable_declaration (identifier) (identifier) (number) (number)))",
		},
		{
			name: "ternary",
			src:  "x := y ? 1 : 2\n",
			want: "(source_file (variable_declaration (identifier) (ternary_expression condition: (identifier) consequence: (number) alternative: (number))))",
		},
		{
			name: "multiplication binds tighter",
			src:  "x := 1 + 2 * 3\n",
			want: "(source_file (variable_declaration (identifier) (binary_expression left: (number) right: (binary_expression left: (number) right: (number)))))",
		},
		{
			name: "in binds tighter than equality",
			src:  "x := a in b == c\n",
			want: "(source_file (variable_declaration (identifier) (binary_expression left: (in_expression left: (identifier) right: (identifier)) right: (identifier))))",
		},
		{
			name: "for loop over a range",
			src:  "main :: proc() {\n\tfor i in 0..<n {}\n}\n",
			want: "(source_file (procedure_declaration (identifier) (procedure (parameters) (block (for_statement (identifier) (range_expression start: (number) end: (identifier)) consequence: (block))))))",
		},
		{
			name: "for loop over keys and values",
			src:  "main :: proc() {\n\tfor k, v in m do f(k, v)\n}\n",
			want: "(source_file (procedure_declaration (identifier) (procedure (parameters) (block (for_statement (identifier) (identifier) (identifier) consequence: (call_expression function: (identifier) argument: (identifier) argument: (identifier)))))))",
		},
		{
			name: "in operator in a loop condition",
			src:  "main :: proc() {\n\tfor i := 0; i in s; i += 1 {}\n}\n",
			want: "(source_file (procedure_declaration (identifier) (procedure (parameters) (block (for_statement initializer: (assignment_statement (identifier) (number)) condition: (in_expression left: (identifier) right: (identifier)) post: (update_statement (identifier) (number)) consequence: (block))))))",
		},
		{
			name: "unterminated block comment",
			src:  "/* a /* b */ c",
			want: "(source_file (block_comment))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := p.Parse([]byte(tt.src))
			if got := tree.String(); got != tt.want {
				t.Errorf("Parse(%q) =\n%s\nwant\n%s", tt.src, got, tt.want)
			}
		})
	}
}

func TestParseCorpusHasNoErrors(t *testing.T) {
	p := newParser(t)
	for _, name := range []string{"testdata/basics.odin", "testdata/foreign.odin"} {
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(name)
			if err != nil {
				t.Fatal(err)
			}
			tree := p.Parse(src)
			for _, e := range collectErrors(tree.Root) {
				t.Errorf("unexpected %s at %d-%d: %q", e.Kind, e.Start, e.End, e.Text(src))
			}
			checkCoverage(t, tree)
		})
	}
}

// checkCoverage verifies that leaves are ordered, do not overlap and
// leave only whitespace between them.
func checkCoverage(t *testing.T, tree *Tree) {
	t.Helper()
	src := tree.Source
	if tree.Root.Start != 0 || tree.Root.End != len(src) {
		t.Errorf("root spans %d-%d, want 0-%d", tree.Root.Start, tree.Root.End, len(src))
	}
	pos := 0
	for _, leaf := range tree.Root.Leaves() {
		if leaf == tree.Root {
			continue
		}
		if leaf.Start < pos {
			t.Fatalf("leaf %s at %d overlaps previous leaf ending at %d", leaf.Kind, leaf.Start, pos)
		}
		if gap := string(src[pos:leaf.Start]); strings.Trim(gap, " \t\r\n\\") != "" {
			t.Errorf("text %q before %s at %d is not covered by any token", gap, leaf.Kind, leaf.Start)
		}
		pos = leaf.End
	}
	if rest := string(src[pos:]); strings.TrimSpace(rest) != "" {
		t.Errorf("trailing text %q is not covered by any token", rest)
	}
}

func TestParseIsAFixedPoint(t *testing.T) {
	p := newParser(t)
	src, err := os.ReadFile("testdata/foreign.odin")
	if err != nil {
		t.Fatal(err)
	}
	first := p.Parse(src)

	var sb strings.Builder
	pos := 0
	for _, leaf := range first.Root.Leaves() {
		sb.Write(src[pos:leaf.Start])
		sb.WriteString(leaf.Text(src))
		pos = leaf.End
	}
	sb.Write(src[pos:])

	second := p.Parse([]byte(sb.String()))
	if !first.Root.Equal(second.Root) {
		t.Errorf("reparsing the reconstructed text changed the tree")
	}
}

func TestParseRecovers(t *testing.T) {
	p := newParser(t)
	type span struct{ start, end int }
	tests := []struct {
		name   string
		src    string
		want   string
		errors []span
	}{
		{
			name:   "missing value",
			src:    "x := \ny := 2\n",
			want:   "(source_file (variable_declaration (identifier) (ERROR)) (variable_declaration (identifier) (number)))",
			errors: []span{{4, 4}},
		},
		{
			name:   "missing right operand at end of input",
			src:    "x := 1 +\n",
			want:   "(source_file (variable_declaration (identifier) (binary_expression left: (number) right: (ERROR))))",
			errors: []span{{8, 8}},
		},
		{
			name:   "missing closing paren",
			src:    "f :: proc() {\n\tfoo(a\n}\n",
			want:   `(source_file (procedure_declaration (identifier) (procedure (parameters) (block (call_expression function: (identifier) argument: (identifier) (MISSING ")"))))))`,
			errors: []span{{21, 21}},
		},
		{
			name:   "missing closing brace",
			src:    "main :: proc() {\n\tx := 1\n",
			want:   `(source_file (procedure_declaration (identifier) (procedure (parameters) (block (assignment_statement (identifier) (number)) (MISSING "}")))))`,
			errors: []span{{25, 25}},
		},
		{
			name:   "unterminated string",
			src:    `s := "abc`,
			want:   `(source_file (variable_declaration (identifier) (string (string_content) (MISSING "\""))))`,
			errors: []span{{9, 9}},
		},
		{
			name:   "unexpected tokens",
			src:    "x := $$ 1\ny := 2\n",
			want:   "(source_file (ERROR (identifier) (number) (identifier) (number)))",
			errors: []span{{0, 16}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := p.Parse([]byte(tt.src))
			if got := tree.String(); got != tt.want {
				t.Errorf("Parse(%q) =\n%s\nwant\n%s", tt.src, got, tt.want)
			}
			if tree.Root.Start != 0 || tree.Root.End != len(tt.src) {
				t.Errorf("root spans %d-%d, want 0-%d", tree.Root.Start, tree.Root.End, len(tt.src))
			}
			errs := collectErrors(tree.Root)
			if len(errs) != len(tt.errors) {
				t.Fatalf("got %d error nodes, want %d", len(errs), len(tt.errors))
			}
			for i, e := range errs {
				if got := (span{e.Start, e.End}); got != tt.errors[i] {
					t.Errorf("error %d spans %v, want %v", i, got, tt.errors[i])
				}
				if e.Error && e.Kind != "ERROR" {
					t.Errorf("error %d has kind %q, want ERROR", i, e.Kind)
				}
				if e.Missing && (e.Error || e.Kind == "ERROR") {
					t.Errorf("missing node %d has kind %q, want the token it stands for", i, e.Kind)
				}
			}
		})
	}
}

func TestParseGarbageNeverFails(t *testing.T) {
	p := newParser(t)
	inputs := []string{
		"",
		"\n\n\n",
		"}}}",
		"((((",
		"proc proc proc",
		"x :: struct {",
		"\"\\",
		"`",
		"'",
		"#",
		"/*",
		"\xff\xfe",
		"if else for when",
		"a := [dynamic; ]",
	}
	for _, src := range inputs {
		tree := p.Parse([]byte(src))
		if tree.Root.Start != 0 || tree.Root.End != len(src) {
			t.Errorf("Parse(%q) root spans %d-%d", src, tree.Root.Start, tree.Root.End)
		}
	}
}

func TestFieldsAndNodes(t *testing.T) {
	p := newParser(t)
	src := []byte("x := y ? 1 : 2 // pick\n")
	tree := p.Parse(src)

	decl := tree.Root.ChildOfKind("variable_declaration")
	if decl == nil {
		t.Fatalf("no variable_declaration in %s", tree)
	}
	tern := decl.ChildOfKind("ternary_expression")
	if tern == nil {
		t.Fatalf("no ternary_expression in %s", decl)
	}
	if got := tern.ChildByField("condition").Text(src); got != "y" {
		t.Errorf("condition = %q, want %q", got, "y")
	}
	if got := tern.ChildByField("alternative").Text(src); got != "2" {
		t.Errorf("alternative = %q, want %q", got, "2")
	}

	comment := tree.Root.Children[len(tree.Root.Children)-1]
	if !comment.Extra || comment.Kind != "comment" || comment.Text(src) != "// pick" {
		t.Errorf("last root child = %s %q, want the trailing comment", comment.Kind, comment.Text(src))
	}

	if got := tree.Root.DescendantAt(5); got.Kind != "identifier" || got.Text(src) != "y" {
		t.Errorf("DescendantAt(5) = %s %q", got.Kind, got.Text(src))
	}

	call := []byte("foo(\n\ta,\n\tb\n)\n")
	args := p.Parse(call).Root.ChildOfKind("call_expression").ChildrenByField("argument")
	if len(args) != 2 || args[0].Text(call) != "a" || args[1].Text(call) != "b" {
		t.Errorf("ChildrenByField(argument) = %v", args)
	}
}

func TestLineIndex(t *testing.T) {
	idx := NewLineIndex([]byte("ab\ncd\n\nx"))
	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
		{100, 4, 2},
	}
	for _, tt := range tests {
		pos := idx.Position(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("Position(%d) = %v, want %d:%d", tt.offset, pos, tt.line, tt.column)
		}
	}
	if got := idx.Offset(2, 2); got != 4 {
		t.Errorf("Offset(2, 2) = %d, want 4", got)
	}
	if got := idx.Offset(1, 99); got != 2 {
		t.Errorf("Offset(1, 99) = %d, want 2", got)
	}
	if got := idx.Lines(); got != 4 {
		t.Errorf("Lines() = %d, want 4", got)
	}
}

func TestTokens(t *testing.T) {
	p := newParser(t)
	src := []byte("x := y + 1\n")
	toks, tree := p.Tokens(src)
	if got, want := tree.String(), p.Parse(src).String(); got != want {
		t.Errorf("Tokens tree = %s, want %s", got, want)
	}

	var got []string
	for _, tok := range toks {
		got = append(got, p.Kinds().Name(tok.Kind)+" "+string(src[tok.Start:tok.End]))
	}
	want := []string{`identifier x`, `":=" :=`, `identifier y`, `"+" +`, `number 1`}
	if len(got) < len(want) {
		t.Fatalf("Tokens() = %q, want at least %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
