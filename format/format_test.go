package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

func parse(t *testing.T, src string) *parser.Tree {
	t.Helper()
	p, err := parser.NewDefault()
	if err != nil {
		t.Fatalf("parser.NewDefault() error = %v", err)
	}
	return p.Parse([]byte(src))
}

func TestNewEncoder(t *testing.T) {
	for _, name := range Formats {
		if _, err := NewEncoder(name, &bytes.Buffer{}); err != nil {
			t.Errorf("NewEncoder(%q) error = %v", name, err)
		}
	}
	if _, err := NewEncoder("xml", &bytes.Buffer{}); err == nil {
		t.Error("NewEncoder(\"xml\") should fail")
	}
}

func TestSexpEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewSexpEncoder(&buf).Encode(parse(t, "x := 1.5\n")); err != nil {
		t.Fatal(err)
	}
	want := "(source_file (variable_declaration (identifier) (float)))\n"
	if got := buf.String(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestTreeJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTreeJSONEncoder(&buf).Encode(parse(t, "x := 1.5\n")); err != nil {
		t.Fatal(err)
	}

	var root astJSONNode
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if root.Kind != "source_file" || !root.Named {
		t.Errorf("root = %s named=%v, want a named source_file", root.Kind, root.Named)
	}
	if root.Span.End.Line != 2 || root.Span.End.Offset != 9 {
		t.Errorf("root ends at %+v, want offset 9 on line 2", root.Span.End)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children))
	}
	decl := root.Children[0]
	var texts []string
	for _, c := range decl.Children {
		if c.Named {
			texts = append(texts, c.Kind+"="+c.Text)
		}
	}
	if got, want := strings.Join(texts, " "), "identifier=x float=1.5"; got != want {
		t.Errorf("named leaves = %q, want %q", got, want)
	}
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(parse(t, "x := 1 +\n")); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"source_file 1:1-2:1\n",
		"  variable_declaration 1:1-1:9\n",
		"    identifier 1:1-1:2 \"x\"\n",
		"      left: number 1:6-1:7 \"1\"\n",
		"      right: ERROR 1:9-1:9\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
