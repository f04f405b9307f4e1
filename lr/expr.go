package lr

import (
	"fmt"
	"strings"
)

// ExprKind identifies the shape of a rule body expression.
type ExprKind int

const (
	ExprToken ExprKind = iota
	ExprSymbol
	ExprSeq
	ExprChoice
	ExprOptional
	ExprRepeat1
	ExprField
	ExprAlias
	ExprPrec
)

var exprKindNames = map[ExprKind]string{
	ExprToken:    "Token",
	ExprSymbol:   "Symbol",
	ExprSeq:      "Seq",
	ExprChoice:   "Choice",
	ExprOptional: "Optional",
	ExprRepeat1:  "Repeat1",
	ExprField:    "Field",
	ExprAlias:    "Alias",
	ExprPrec:     "Prec",
}

func (k ExprKind) String() string {
	if name, ok := exprKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Assoc is the associativity attached to a precedence level.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	default:
		return "none"
	}
}

// Expr is a rule body. Tokens and symbols are leaves, everything else
// wraps one or more children.
type Expr struct {
	Kind     ExprKind
	Name     string
	Level    int
	Assoc    Assoc
	Children []Expr
}

// Token matches the literal text s.
func Token(s string) Expr { return Expr{Kind: ExprToken, Name: s} }

// Sym refers to another rule or to an externally scanned terminal.
func Sym(name string) Expr { return Expr{Kind: ExprSymbol, Name: name} }

func Seq(xs ...Expr) Expr { return Expr{Kind: ExprSeq, Children: xs} }

func Choice(xs ...Expr) Expr { return Expr{Kind: ExprChoice, Children: xs} }

func Optional(x Expr) Expr { return Expr{Kind: ExprOptional, Children: []Expr{x}} }

// Repeat matches zero or more x.
func Repeat(x Expr) Expr { return Optional(Repeat1(x)) }

// Repeat1 matches one or more x.
func Repeat1(x Expr) Expr { return Expr{Kind: ExprRepeat1, Children: []Expr{x}} }

// Field labels every node produced by x with name.
func Field(name string, x Expr) Expr {
	return Expr{Kind: ExprField, Name: name, Children: []Expr{x}}
}

// Alias renames the node produced by x.
func Alias(x Expr, name string) Expr {
	return Expr{Kind: ExprAlias, Name: name, Children: []Expr{x}}
}

func Prec(level int, x Expr) Expr {
	return Expr{Kind: ExprPrec, Level: level, Children: []Expr{x}}
}

func PrecLeft(level int, x Expr) Expr {
	return Expr{Kind: ExprPrec, Level: level, Assoc: AssocLeft, Children: []Expr{x}}
}

func PrecRight(level int, x Expr) Expr {
	return Expr{Kind: ExprPrec, Level: level, Assoc: AssocRight, Children: []Expr{x}}
}

func (e Expr) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e Expr) write(sb *strings.Builder) {
	switch e.Kind {
	case ExprToken:
		fmt.Fprintf(sb, "%q", e.Name)
	case ExprSymbol:
		sb.WriteString(e.Name)
	case ExprSeq, ExprChoice:
		sep := " "
		if e.Kind == ExprChoice {
			sep = " | "
		}
		sb.WriteString("(")
		for i, c := range e.Children {
			if i > 0 {
				sb.WriteString(sep)
			}
			c.write(sb)
		}
		sb.WriteString(")")
	case ExprOptional:
		sb.WriteString("[")
		e.Children[0].write(sb)
		sb.WriteString("]")
	case ExprRepeat1:
		sb.WriteString("{")
		e.Children[0].write(sb)
		sb.WriteString("}+")
	case ExprField:
		fmt.Fprintf(sb, "%s:", e.Name)
		e.Children[0].write(sb)
	case ExprAlias:
		e.Children[0].write(sb)
		fmt.Fprintf(sb, "@%s", e.Name)
	case ExprPrec:
		fmt.Fprintf(sb, "prec(%d,%s,", e.Level, e.Assoc)
		e.Children[0].write(sb)
		sb.WriteString(")")
	}
}
