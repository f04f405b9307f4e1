package grammar

import "github.com/dhamidi/odinsyntax/lr"

// defineRules declares the Odin syntax. Rule names are the node kinds of
// the produced tree; renaming one breaks every query written against it.
func defineRules(g *lr.Builder) {
	g.Rule("source_file", seq(
		repeat(seq(sym("declaration"), sym("_separator"))),
		optional(sym("declaration")),
	))

	g.Rule("_separator", choice(sym("_newline"), ";"))

	g.Rule("block", seq(
		"{",
		sepBy(statementItem(), sym("_separator")),
		"}",
	))

	g.Rule("tagged_block", prec(2, seq(sym("tag"), sym("block"))))

	g.Rule("declaration", choice(
		sym("package_declaration"),
		sym("import_declaration"),
		sym("procedure_declaration"),
		sym("overloaded_procedure_declaration"),
		sym("struct_declaration"),
		sym("enum_declaration"),
		sym("union_declaration"),
		sym("bit_field_declaration"),
		sym("variable_declaration"),
		sym("var_declaration"),
		sym("const_declaration"),
		sym("const_type_declaration"),
		sym("foreign_block"),
		sym("when_statement"),
		sym("_expression_no_tag"),
	))

	g.Rule("package_declaration", seq("package", sym("identifier")))

	g.Rule("import_declaration", seq(
		optional(sym("attributes")),
		optional("foreign"),
		"import",
		optional(field("alias", sym("identifier"))),
		choice(
			sym("string"),
			seq("{", commaSep1(sym("string")), optional(","), "}"),
		),
	))

	g.Rule("procedure_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		"::",
		optional(sym("tag")),
		sym("procedure"),
	))

	g.Rule("procedure", precRight(0, seq(
		"proc",
		optional(sym("calling_convention")),
		sym("parameters"),
		optional(sym("_results")),
		optional(sym("where_clause")),
		repeat(sym("tag")),
		optional(choice(sym("block"), sym("uninitialized"))),
	)))

	g.Rule("procedure_type", precRight(0, seq(
		"proc",
		optional(sym("calling_convention")),
		sym("parameters"),
		optional(sym("_results")),
	)))

	g.Rule("_results", precRight(0, seq(
		"->",
		optional(sym("tag")),
		sym("type"),
	)))

	g.Rule("where_clause", precRight(0, seq("where", commaSep1(sym("expression")))))

	g.Rule("calling_convention", sym("string"))

	g.Rule("overloaded_procedure_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		"::",
		"proc",
		"{",
		optional(seq(commaSep1(sym("expression")), optional(","))),
		"}",
	))

	g.Rule("struct_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		"::",
		"struct",
		optional(sym("polymorphic_parameters")),
		repeat(seq(sym("tag"), optional(choice(sym("identifier"), sym("number"))))),
		optional(sym("where_clause")),
		"{",
		optional(seq(commaSep1(sym("field")), optional(","))),
		"}",
	))

	g.Rule("enum_declaration", seq(
		optional(sym("attributes")),
		optional("using"),
		commaSep1(sym("expression")),
		"::",
		"enum",
		optional(sym("type")),
		"{",
		optional(seq(commaSep1(enumerator()), optional(","))),
		"}",
	))

	g.Rule("union_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		"::",
		"union",
		optional(sym("polymorphic_parameters")),
		repeat(sym("tag")),
		"{",
		optional(seq(commaSep1(sym("type")), optional(","))),
		"}",
	))

	g.Rule("bit_field_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		"::",
		"bit_field",
		sym("type"),
		"{",
		optional(seq(commaSep1(bitFieldMember()), optional(","))),
		"}",
	))

	g.Rule("variable_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		":=",
		commaSep1(choice(sym("expression"), sym("procedure"))),
	))

	g.Rule("const_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		"::",
		commaSep1(choice(
			sym("expression"),
			seq(alias("#type", "tag"), sym("type")),
			sym("array_type"),
			sym("bit_set_type"),
			sym("pointer_type"),
		)),
	))

	g.Rule("const_type_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		":",
		sym("type"),
		":",
		commaSep1(sym("expression")),
	))

	g.Rule("foreign_block", seq(
		optional(sym("attributes")),
		"foreign",
		optional(sym("identifier")),
		sym("block"),
	))

	g.Rule("attributes", repeat1(sym("attribute")))

	g.Rule("attribute", seq(
		"@",
		choice(
			sym("identifier"),
			seq(
				"(",
				commaSep1(seq(
					sym("identifier"),
					optional(seq("=", choice(sym("literal"), sym("identifier")))),
				)),
				optional(","),
				")",
			),
		),
	))

	g.Rule("parameters", seq(
		"(",
		optional(seq(
			commaSep1(choice(sym("parameter"), sym("default_parameter"))),
			optional(","),
		)),
		")",
	))

	g.Rule("parameter", precRight(0, seq(
		optional(sym("tag")),
		optional("using"),
		commaSep1(seq(
			optional("$"),
			choice(
				sym("identifier"),
				sym("variadic_type"),
				sym("array_type"),
				sym("pointer_type"),
				sym("field_type"),
				sym("procedure_type"),
			),
		)),
		optional(seq(
			":",
			optional(sym("tag")),
			sym("type"),
			optional(seq("=", sym("expression"))),
		)),
	)))

	g.Rule("default_parameter", seq(
		optional("using"),
		sym("identifier"),
		":=",
		sym("expression"),
	))

	g.Rule("polymorphic_parameters", seq(
		"(",
		commaSep1(seq(
			commaSep1(seq(optional("$"), sym("identifier"))),
			":",
			sym("type"),
		)),
		")",
	))

	g.Rule("field", precRight(0, seq(
		commaSep1(seq(optional(sym("tag")), optional("using"), sym("identifier"))),
		":",
		optional(sym("tag")),
		sym("type"),
		optional(sym("string")),
	)))

	g.Rule("statement", choice(
		sym("procedure_declaration"),
		sym("overloaded_procedure_declaration"),
		sym("struct_declaration"),
		sym("enum_declaration"),
		sym("union_declaration"),
		sym("bit_field_declaration"),
		sym("const_declaration"),
		sym("import_declaration"),
		sym("assignment_statement"),
		sym("update_statement"),
		sym("if_statement"),
		sym("when_statement"),
		sym("for_statement"),
		sym("switch_statement"),
		sym("defer_statement"),
		sym("break_statement"),
		sym("continue_statement"),
		sym("fallthrough_statement"),
		sym("label_statement"),
		sym("using_statement"),
		sym("return_statement"),
		sym("_expression_no_tag"),
		sym("var_declaration"),
		sym("foreign_block"),
		sym("tagged_block"),
		prec(1, sym("block")),
	))

	g.Rule("assignment_statement", prec(PrecAssignment, seq(
		optional(seq(sym("attributes"), optional(sym("tag")))),
		commaSep1(sym("expression")),
		choice("=", ":="),
		commaSep1(choice(sym("expression"), sym("procedure"))),
	)))

	g.Rule("_simple_assignment_statement", seq(
		commaSep1(sym("expression")),
		choice("=", ":="),
		commaSep1(sym("expression")),
	))

	g.Rule("update_statement", seq(
		commaSep1(sym("expression")),
		field("operator", choice(stringsToAny(updateOperators)...)),
		commaSep1(sym("expression")),
	))

	g.Rule("if_statement", precRight(0, seq(
		"if",
		optional(seq(
			optional(field("initializer", choice(
				sym("assignment_statement"),
				sym("update_statement"),
				sym("var_declaration"),
			))),
			";",
		)),
		field("condition", sym("expression")),
		consequence(),
		repeat(sym("else_if_clause")),
		optional(sym("else_clause")),
	)))

	g.Rule("else_if_clause", seq(
		"else",
		"if",
		optional(seq(
			optional(field("initializer", sym("assignment_statement"))),
			";",
		)),
		field("condition", sym("expression")),
		consequence(),
	))

	g.Rule("else_clause", seq("else", consequence()))

	g.Rule("when_statement", precRight(0, seq(
		"when",
		field("condition", sym("expression")),
		consequence(),
		repeat(sym("else_when_clause")),
		optional(sym("else_clause")),
	)))

	g.Rule("else_when_clause", seq(
		"else",
		"when",
		field("condition", sym("expression")),
		field("consequence", sym("block")),
	))

	g.Rule("for_statement", seq(
		"for",
		optional(choice(
			seq(
				optional(seq(
					optional(field("initializer", choice(
						sym("assignment_statement"),
						sym("update_statement"),
						sym("var_declaration"),
					))),
					";",
				)),
				optional(field("condition", sym("expression"))),
				optional(seq(
					";",
					optional(field("post", choice(
						sym("update_statement"),
						alias(sym("_simple_assignment_statement"), "assignment_statement"),
					))),
				)),
			),
			sym("_for_in_expression"),
		)),
		consequence(),
	))

	g.Rule("_for_in_expression", seq(
		commaSep(sym("expression")),
		forIn(),
		sym("expression"),
	))

	g.Rule("switch_statement", seq(
		"switch",
		optional(field("condition", choice(
			sym("expression"),
			seq(sym("assignment_statement"), ";", optional(sym("expression"))),
		))),
		"{",
		repeat(sym("switch_case")),
		"}",
	))

	g.Rule("switch_case", seq(
		"case",
		commaSep(field("condition", choice(
			sym("expression"),
			sym("array_type"),
			sym("pointer_type"),
		))),
		":",
		sepBy(statementItem(), sym("_separator")),
	))

	g.Rule("defer_statement", seq("defer", sym("statement")))

	g.Rule("break_statement", precRight(0, seq("break", optional(field("label", sym("identifier"))))))

	g.Rule("continue_statement", precRight(0, seq("continue", optional(field("label", sym("identifier"))))))

	g.Rule("var_declaration", seq(
		optional(sym("attributes")),
		commaSep1(sym("expression")),
		":",
		optional(sym("tag")),
		sym("type"),
		optional(seq("=", commaSep1(sym("expression")))),
	))

	g.Rule("return_statement", precRight(0, seq(
		"return",
		optional(seq(
			commaSep1(choice(sym("expression"), sym("procedure"))),
			optional(","),
		)),
	)))

	g.Rule("label_statement", seq(
		field("label", sym("expression")),
		":",
		choice(
			sym("if_statement"),
			sym("for_statement"),
			sym("switch_statement"),
			sym("block"),
		),
	))

	g.Rule("using_statement", seq("using", sym("expression")))

	g.Rule("expression", choice(
		sym("_expression_no_tag"),
		prec(PrecParentheses, sym("tag")),
	))

	g.Rule("_expression_no_tag", choice(
		sym("unary_expression"),
		sym("binary_expression"),
		sym("ternary_expression"),
		sym("call_expression"),
		sym("selector_call_expression"),
		sym("member_expression"),
		sym("index_expression"),
		sym("slice_expression"),
		sym("range_expression"),
		sym("cast_expression"),
		sym("parenthesized_expression"),
		sym("in_expression"),
		sym("variadic_expression"),
		sym("or_return_expression"),
		sym("or_continue_expression"),
		sym("or_break_expression"),
		sym("identifier"),
		sym("address"),
		sym("map_type"),
		sym("distinct_type"),
		sym("matrix_type"),
		sym("literal"),
		"?",
	))

	g.Rule("unary_expression", precRight(PrecUnary, seq(
		field("operator", choice("+", "-", "~", "!", "&")),
		field("argument", sym("expression")),
	)))

	g.Rule("binary_expression", binaryExpression())

	g.Rule("ternary_expression", precRight(0, seq(
		field("condition", sym("_expression_no_tag")),
		choice(
			precRight(PrecTernary, seq(
				"?",
				field("consequence", sym("expression")),
				":",
				field("alternative", sym("expression")),
			)),
			precRight(PrecTernary, seq(
				choice("if", "when"),
				field("consequence", sym("expression")),
				"else",
				field("alternative", sym("expression")),
			)),
		),
	)))

	g.Rule("call_expression", precLeft(PrecCall, seq(
		field("function", choice(
			sym("_expression_no_tag"),
			alias(sym("_call_tag"), "tag"),
		)),
		"(",
		optional(seq(
			commaSep1(seq(
				field("argument", choice(
					sym("expression"),
					sym("array_type"),
					sym("struct_type"),
					sym("pointer_type"),
					sym("procedure"),
				)),
				optional(seq("=", sym("expression"))),
			)),
			optional(","),
		)),
		")",
	)))

	g.Rule("selector_call_expression", precLeft(PrecCall, seq(
		field("function", sym("expression")),
		"->",
		sym("call_expression"),
	)))

	g.Rule("member_expression", precLeft(PrecMember, seq(
		optional(sym("expression")),
		".",
		sym("expression"),
	)))

	g.Rule("index_expression", precLeft(PrecMember, seq(
		sym("expression"),
		"[",
		sym("expression"),
		optional(seq(",", sym("expression"))),
		"]",
	)))

	g.Rule("slice_expression", precLeft(PrecMember, seq(
		sym("expression"),
		"[",
		optional(field("start", sym("expression"))),
		":",
		optional(field("end", sym("expression"))),
		"]",
	)))

	g.Rule("range_expression", precLeft(PrecTernary, seq(
		field("start", sym("expression")),
		field("operator", choice("..", "..=", "..<")),
		field("end", sym("expression")),
	)))

	g.Rule("cast_expression", precLeft(PrecCast, choice(
		seq("(", choice(sym("pointer_type"), sym("array_type"), sym("procedure_type")), ")", sym("expression")),
		seq(choice("cast", "transmute"), "(", sym("type"), ")", sym("expression")),
		seq("auto_cast", sym("expression")),
	)))

	g.Rule("in_expression", precLeft(PrecIn, seq(
		field("left", sym("expression")),
		field("operator", choice("in", "not_in")),
		field("right", sym("expression")),
	)))

	g.Rule("variadic_expression", precLeft(PrecVariadic, seq("..", sym("expression"))))

	g.Rule("parenthesized_expression", seq("(", sym("expression"), ")"))

	g.Rule("or_return_expression", precLeft(PrecCall, seq(sym("expression"), "or_return")))

	g.Rule("or_continue_expression", precRight(PrecCall, seq(
		sym("expression"),
		"or_continue",
		optional(field("label", sym("identifier"))),
	)))

	g.Rule("or_break_expression", precRight(PrecCall, seq(
		sym("expression"),
		"or_break",
		optional(field("label", sym("identifier"))),
	)))

	g.Rule("address", precLeft(PrecMember, seq(sym("expression"), "^")))

	g.Rule("type", precRight(0, choice(
		sym("identifier"),
		sym("pointer_type"),
		sym("variadic_type"),
		sym("array_type"),
		sym("map_type"),
		sym("union_type"),
		sym("bit_set_type"),
		sym("matrix_type"),
		sym("field_type"),
		sym("tuple_type"),
		sym("struct_type"),
		sym("enum_type"),
		sym("bit_field_type"),
		sym("constant_type"),
		sym("specialized_type"),
		sym("procedure_type"),
		sym("distinct_type"),
		sym("empty_type"),
		sym("polymorphic_type"),
		sym("conditional_type"),
	)))

	g.Rule("pointer_type", precRight(0, seq("^", sym("type"))))

	g.Rule("variadic_type", precRight(0, seq("..", sym("type"))))

	g.Rule("array_type", seq(
		optional(sym("tag")),
		"[",
		optional(seq(optional("$"), choice("dynamic", "^", sym("expression")))),
		"]",
		optional(sym("type")),
	))

	g.Rule("map_type", precRight(0, seq("map", "[", sym("type"), "]", sym("type"))))

	g.Rule("union_type", precRight(0, seq(
		"union",
		repeat(sym("tag")),
		"{",
		optional(seq(commaSep1(sym("type")), optional(","))),
		"}",
	)))

	g.Rule("bit_set_type", seq(
		"bit_set",
		"[",
		choice(sym("constant_type"), sym("expression")),
		optional(seq(";", sym("type"))),
		"]",
	))

	g.Rule("matrix_type", precRight(0, seq(
		"matrix",
		"[",
		choice(sym("constant_type"), sym("expression")),
		",",
		choice(sym("constant_type"), sym("expression")),
		"]",
		sym("type"),
	)))

	g.Rule("field_type", precRight(0, seq(sym("identifier"), repeat1(seq(".", sym("identifier"))))))

	g.Rule("tuple_type", seq(
		"(",
		optional(seq(
			commaSep1(choice(sym("type"), sym("named_type"), sym("default_type"))),
			optional(","),
		)),
		")",
	))

	g.Rule("struct_type", seq(
		"struct",
		optional(sym("polymorphic_parameters")),
		repeat(sym("tag")),
		"{",
		optional(seq(commaSep1(sym("struct_member")), optional(","))),
		"}",
	))

	g.Rule("struct_member", precRight(0, seq(
		commaSep1(seq(optional("using"), sym("identifier"))),
		":",
		optional(sym("tag")),
		sym("type"),
		optional(sym("string")),
	)))

	g.Rule("enum_type", seq(
		"enum",
		optional(sym("type")),
		"{",
		optional(seq(commaSep1(enumerator()), optional(","))),
		"}",
	))

	g.Rule("bit_field_type", seq(
		"bit_field",
		sym("type"),
		"{",
		optional(seq(commaSep1(bitFieldMember()), optional(","))),
		"}",
	))

	g.Rule("named_type", precRight(0, seq(
		sym("identifier"),
		":",
		sym("type"),
		optional(seq("=", sym("expression"))),
	)))

	g.Rule("default_type", seq(sym("identifier"), ":=", sym("expression")))

	g.Rule("constant_type", precRight(0, seq("$", sym("type"))))

	g.Rule("specialized_type", precRight(0, seq(sym("type"), "/", sym("type"))))

	g.Rule("distinct_type", precRight(0, seq("distinct", optional(sym("tag")), sym("type"))))

	g.Rule("polymorphic_type", seq(
		sym("type"),
		"(",
		commaSep1(choice(
			sym("type"),
			sym("number"),
			sym("float"),
			sym("string"),
			sym("character"),
			sym("boolean"),
			sym("nil"),
		)),
		")",
	))

	g.Rule("conditional_type", seq(
		"(",
		sym("type"),
		"when",
		sym("expression"),
		"else",
		sym("type"),
		")",
	))

	g.Rule("literal", choice(
		sym("struct"),
		sym("map"),
		sym("bit_set"),
		sym("matrix"),
		sym("float"),
		sym("number"),
		sym("string"),
		sym("character"),
		sym("boolean"),
		sym("nil"),
		sym("uninitialized"),
	))

	g.Rule("struct", precLeft(PrecCall, seq(
		optional(choice(
			seq("[", optional(choice("dynamic", "^", sym("expression"))), "]", sym("type")),
			field("type", sym("_expression_no_tag")),
		)),
		valueBrace(),
		optional(seq(commaSep1(sym("struct_field")), optional(","))),
		"}",
	)))

	g.Rule("map", precRight(0, seq(
		"map",
		"[",
		sym("type"),
		"]",
		sym("type"),
		valueBrace(),
		optional(seq(commaSep1(seq(sym("expression"), "=", sym("expression"))), optional(","))),
		"}",
	)))

	g.Rule("bit_set", seq(
		"bit_set",
		"[",
		sym("expression"),
		"]",
		valueBrace(),
		optional(seq(commaSep1(sym("expression")), optional(","))),
		"}",
	))

	g.Rule("matrix", seq(
		"matrix",
		"[",
		sym("expression"),
		",",
		sym("expression"),
		"]",
		sym("type"),
		prec(PrecMatrix, valueBrace()),
		optional(seq(commaSep1(sym("expression")), optional(","))),
		"}",
	))

	g.Rule("struct_field", precRight(0, seq(
		sym("expression"),
		optional(seq("=", choice(sym("expression"), sym("procedure")))),
	)))

	g.Rule("string", choice(
		seq("\"", repeat(choice(sym("string_content"), sym("escape_sequence"))), "\""),
		seq("`", repeat(alias(sym("_raw_string_content"), "string_content")), "`"),
	))
}

// statementItem is one entry of a statement list: a statement with an
// optional leading directive, or a lone directive such as #assert(x).
func statementItem() lr.Expr {
	return choice(
		seq(optional(sym("tag")), sym("statement")),
		sym("tag"),
	)
}

// consequence is the body of a control statement: a block, or `do`
// followed by a single statement.
func consequence() lr.Expr {
	return choice(
		field("consequence", sym("block")),
		seq("do", field("consequence", sym("statement"))),
	)
}

func enumerator() lr.Expr {
	return seq(sym("identifier"), optional(seq("=", sym("expression"))))
}

func bitFieldMember() lr.Expr {
	return seq(sym("identifier"), ":", sym("type"), "|", sym("expression"))
}

// valueBrace is the opening brace of a composite literal. The scanner
// emits it instead of "{" when the parser is in value position.
func valueBrace() lr.Expr {
	return alias(sym("_value_brace"), "{")
}

// forIn is the "in" of a for loop header. The scanner emits it whenever
// the header can take it, so in_expression never starts there.
func forIn() lr.Expr {
	return alias(sym("_for_in"), "in")
}

func binaryExpression() lr.Expr {
	alternatives := make([]any, 0, len(binaryOperators))
	for _, b := range binaryOperators {
		alternatives = append(alternatives, precLeft(b.prec, seq(
			field("left", sym("expression")),
			field("operator", b.op),
			field("right", sym("expression")),
		)))
	}
	return choice(alternatives...)
}
