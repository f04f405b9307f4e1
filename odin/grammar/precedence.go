package grammar

// Precedence levels, lowest binding first. Productions without an
// explicit level bind at 0.
const (
	PrecParentheses   = -1
	PrecAssignment    = 1
	PrecTernary       = 2
	PrecLogicalOr     = 3
	PrecLogicalAnd    = 4
	PrecCompare       = 5
	PrecEquality      = 6
	PrecBitwiseOr     = 7
	PrecBitwiseXor    = 8
	PrecBitwiseAnd    = 9
	PrecBitwiseAndNot = 10
	PrecShift         = 11
	PrecAdd           = 12
	PrecMultiply      = 13
	PrecCast          = 14
	PrecIn            = 15
	PrecUnary         = 16
	PrecCall          = 17
	PrecMember        = 18
	PrecMatrix        = 19
	PrecVariadic      = 20
)

// binaryOperators lists every infix operator of binary_expression with
// its level. All of them associate to the left.
var binaryOperators = []struct {
	op   string
	prec int
}{
	{"||", PrecLogicalOr},
	{"or_else", PrecLogicalOr},
	{"&&", PrecLogicalAnd},
	{">", PrecCompare},
	{">=", PrecCompare},
	{"<=", PrecCompare},
	{"<", PrecCompare},
	{"==", PrecEquality},
	{"!=", PrecEquality},
	{"|", PrecBitwiseOr},
	{"~", PrecBitwiseXor},
	{"&", PrecBitwiseAnd},
	{"&~", PrecBitwiseAndNot},
	{"<<", PrecShift},
	{">>", PrecShift},
	{"+", PrecAdd},
	{"-", PrecAdd},
	{"*", PrecMultiply},
	{"/", PrecMultiply},
	{"%", PrecMultiply},
	{"%%", PrecMultiply},
}

// updateOperators are the compound assignment operators of update_statement.
var updateOperators = []string{
	"+=", "-=", "*=", "/=", "%=", "%%=", "&=", "|=", "~=", "^=",
	"<<=", ">>=", "||=", "&&=", "&~=",
}
