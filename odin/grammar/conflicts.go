package grammar

import "github.com/dhamidi/odinsyntax/lr"

// defineConflicts lists the ambiguities the grammar is known to have.
// Any other conflict makes table generation fail.
//
// array_type: `#soa[N]T` and `[N]T` may stop before a trailing type or
// take it. The longer reading wins, so a following type belongs to the
// array.
//
// The block versus composite literal `{` is not listed here. The lexer
// only produces _value_brace when a block brace cannot be shifted, so
// the tables never see both. The same holds for the "in" of a for loop
// header and in_expression.
func defineConflicts(g *lr.Builder) {
	g.Conflict(lr.PreferShift, "array_type")
}
