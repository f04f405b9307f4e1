// Package grammar defines the Odin syntax as lr rules and generates its
// parse tables.
package grammar

import (
	"sync"

	"github.com/dhamidi/odinsyntax/lr"
)

// Terminals are the named tokens produced by the lexer.
var Terminals = []string{
	"identifier",
	"number",
	"float",
	"string_content",
	"escape_sequence",
	"_raw_string_content",
	"character",
	"tag",
	"_call_tag",
	"_newline",
	"_value_brace",
	"_for_in",
	"boolean",
	"nil",
	"uninitialized",
	"fallthrough_statement",
	"empty_type",
}

// Supertypes group concrete rules. Their nodes never appear in the tree.
var Supertypes = []string{"declaration", "expression", "literal", "statement"}

// NewBuilder returns a builder holding the complete Odin grammar.
func NewBuilder() *lr.Builder {
	b := rulesOnly()
	defineConflicts(b)
	return b
}

func rulesOnly() *lr.Builder {
	b := lr.NewBuilder("source_file")
	b.Terminal(Terminals...)
	b.Supertype(Supertypes...)
	defineRules(b)
	return b
}

var (
	loadOnce  sync.Once
	loadTable *lr.Table
	loadErr   error
)

// Load generates the parse tables on first use and returns the shared
// result afterwards.
func Load() (*lr.Table, error) {
	loadOnce.Do(func() {
		loadTable, loadErr = NewBuilder().Build()
	})
	return loadTable, loadErr
}
