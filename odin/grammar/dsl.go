package grammar

import (
	"fmt"

	"github.com/dhamidi/odinsyntax/lr"
)

// expr accepts a string for a literal token or an lr.Expr.
func expr(x any) lr.Expr {
	switch v := x.(type) {
	case string:
		return lr.Token(v)
	case lr.Expr:
		return v
	}
	panic(fmt.Sprintf("grammar: unexpected rule element %T", x))
}

func exprs(xs []any) []lr.Expr {
	out := make([]lr.Expr, len(xs))
	for i, x := range xs {
		out[i] = expr(x)
	}
	return out
}

func seq(xs ...any) lr.Expr    { return lr.Seq(exprs(xs)...) }
func choice(xs ...any) lr.Expr { return lr.Choice(exprs(xs)...) }
func optional(x any) lr.Expr   { return lr.Optional(expr(x)) }
func repeat(x any) lr.Expr     { return lr.Repeat(expr(x)) }
func repeat1(x any) lr.Expr    { return lr.Repeat1(expr(x)) }
func sym(name string) lr.Expr  { return lr.Sym(name) }

func field(name string, x any) lr.Expr { return lr.Field(name, expr(x)) }
func alias(x any, name string) lr.Expr { return lr.Alias(expr(x), name) }

func prec(level int, x any) lr.Expr      { return lr.Prec(level, expr(x)) }
func precLeft(level int, x any) lr.Expr  { return lr.PrecLeft(level, expr(x)) }
func precRight(level int, x any) lr.Expr { return lr.PrecRight(level, expr(x)) }

// commaSep1 matches one or more x separated by commas.
func commaSep1(x any) lr.Expr { return seq(x, repeat(seq(",", x))) }

func commaSep(x any) lr.Expr { return optional(commaSep1(x)) }

// sepBy matches x items separated by sep, where items may be empty, as
// in a statement list with blank separators.
func sepBy(x, sep any) lr.Expr {
	return optional(seq(x, repeat(seq(sep, optional(x)))))
}

func stringsToAny(xs []string) []any {
	out := make([]any, len(xs))
	for i, s := range xs {
		out[i] = s
	}
	return out
}
