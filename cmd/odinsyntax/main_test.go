package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/dhamidi/odinsyntax/odin/codebase"
	"github.com/dhamidi/odinsyntax/odin/parser"
	"github.com/dhamidi/odinsyntax/odin/scanner"
)

func TestApplyEditFlag(t *testing.T) {
	p, err := newParser()
	if err != nil {
		t.Fatal(err)
	}
	tree := p.Parse([]byte("a := 1\nb := 2\n"))

	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{arg: "12:13:20", want: "a := 1\nb := 20\n"},
		{arg: `14:14:c := 3\n`, want: "a := 1\nb := 2\nc := 3\n"},
		{arg: "0:1:x:y", want: "x:y := 1\nb := 2\n"},
		{arg: "5:1:x", wantErr: true},
		{arg: "0:99:x", wantErr: true},
		{arg: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := applyEditFlag(p, tree, tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("applyEditFlag(%q) should fail", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("applyEditFlag(%q) error = %v", tt.arg, err)
			}
			if string(got.Source) != tt.want {
				t.Errorf("source = %q, want %q", got.Source, tt.want)
			}
			if want := p.Parse(got.Source).String(); got.String() != want {
				t.Errorf("tree = %s, want %s", got, want)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ODINSYNTAX_LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ODINSYNTAX_LOG_LEVEL", "")
	os.Unsetenv("ODINSYNTAX_LOG_LEVEL")

	if err := loadEnv(path, true); err != nil {
		t.Fatalf("loadEnv() error = %v", err)
	}
	if got := envVerbosity(); got != 3 {
		t.Errorf("envVerbosity() = %d, want 3", got)
	}
	if err := loadEnv(filepath.Join(dir, "missing"), false); err != nil {
		t.Errorf("missing default env file should be ignored, got %v", err)
	}
	if err := loadEnv(filepath.Join(dir, "missing"), true); err == nil {
		t.Error("missing explicit env file should fail")
	}
}

func TestPrintResult(t *testing.T) {
	color.NoColor = true
	p, err := parser.NewDefault()
	if err != nil {
		t.Fatal(err)
	}
	c := codebase.New(".", p)
	bad := c.UpdateFile("bad.odin", []byte("f :: proc() {\n\tfoo(a\n}\n"))
	result := &scanner.Result{
		Files: []scanner.FileResult{
			{Path: "bad.odin", Diagnostics: bad.Diagnostics()},
			{Path: "good.odin"},
		},
	}

	var buf bytes.Buffer
	if got := printResult(&buf, c, result); got != 1 {
		t.Errorf("printResult() = %d, want 1", got)
	}
	out := buf.String()
	for _, want := range []string{
		"[ERROR] bad.odin:3:1: missing \")\"\n",
		"[OK] good.odin",
		"2 files, 1 with errors\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
