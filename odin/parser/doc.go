// Package parser builds concrete syntax trees for Odin source.
//
// # Overview
//
// Parsing is driven by deterministic LALR(1) tables generated from the
// grammar in package grammar. The lexer in package lexer is called one
// token at a time and asks the parser, through an oracle, which tokens
// the current stack can accept. That is how a line break becomes a
// statement separator, an omitted comma or nothing at all, and how `{`
// is told apart as a block or a compound literal.
//
// # Architecture
//
//	┌─────────────┐  Next(oracle)  ┌─────────────┐  shift/reduce  ┌─────────────┐
//	│   Lexer     │◀──────────────│   Session   │──────────────▶│    Node     │
//	│  (State)    │──────────────▶│   (stack)   │               │   (CST)     │
//	└─────────────┘     Token      └─────────────┘               └─────────────┘
//	                                     │
//	                                     ▼
//	                              ┌─────────────┐
//	                              │ Checkpoints │
//	                              │ (treemap)   │
//	                              └─────────────┘
//
// # Trees
//
// Every node carries its kind, an optional field label and its byte
// range. Hidden rules (names starting with an underscore, repetition
// helpers and the supertypes declaration, expression, literal and
// statement) never appear; their children are spliced into the parent.
// Comments are kept as extra nodes wherever they occur.
//
//	(source_file
//	  (var_declaration name: (identifier) value: (number)))
//
// # Error Recovery
//
// Parse never fails. When a token has no action the parser tries, in
// order:
//
//  1. a zero-width ERROR node for a missing expression, type or statement
//  2. re-lexing a line break after `=`, `:=` or `::` as a separator
//  3. a zero-width MISSING closer: `)`, `]`, `}` or a quote
//  4. skipping to the next separator or closer that an enclosing
//     construct accepts, wrapping the skipped text in an ERROR node
//
// The tree always covers the whole input. Error nodes have Kind
// "ERROR" with Error set; missing tokens keep the kind of the token they
// stand for, have Missing set and print as (MISSING ...). No node is
// ever named "error".
//
// # Incremental Parsing
//
// Each reduction of a top-level statement records a Checkpoint: the
// lexer offset and State, the furthest byte the lexer had read, and the
// number of root children so far. Internally it also keeps the lookahead
// token that triggered the reduction and whether any recovery touched
// the text after it. Reparse resumes from the last clean checkpoint
// whose lookahead ends before the edit and stops as soon as it reaches
// a clean checkpoint the old tree shares with the same lookahead and
// lexer state, shifting the old tree's remaining children into place.
// The result is identical to a full parse, with or without errors.
package parser
