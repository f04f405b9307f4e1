package codebase

import (
	"github.com/dhamidi/odinsyntax/odin/parser"
)

type SymbolKind int

const (
	SymbolPackage SymbolKind = iota
	SymbolImport
	SymbolProcedure
	SymbolStruct
	SymbolEnum
	SymbolUnion
	SymbolBitField
	SymbolVariable
	SymbolConstant
	SymbolForeign
)

var symbolKinds = map[string]SymbolKind{
	"package_declaration":              SymbolPackage,
	"import_declaration":               SymbolImport,
	"procedure_declaration":            SymbolProcedure,
	"overloaded_procedure_declaration": SymbolProcedure,
	"struct_declaration":               SymbolStruct,
	"enum_declaration":                 SymbolEnum,
	"union_declaration":                SymbolUnion,
	"bit_field_declaration":            SymbolBitField,
	"variable_declaration":             SymbolVariable,
	"var_declaration":                  SymbolVariable,
	"const_declaration":                SymbolConstant,
	"const_type_declaration":           SymbolConstant,
	"foreign_block":                    SymbolForeign,
}

// Symbol is a top-level declaration. Declarations inside a foreign block
// are its children.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Node     *parser.Node
	NameNode *parser.Node
	Children []Symbol
}

// Symbols lists the declarations at the top level of the file.
func (f *File) Symbols() []Symbol {
	return f.symbolsIn(f.Tree.Root)
}

func (f *File) symbolsIn(parent *parser.Node) []Symbol {
	var out []Symbol
	for _, n := range parent.NamedChildren() {
		kind, ok := symbolKinds[n.Kind]
		if !ok {
			continue
		}
		sym := Symbol{Kind: kind, Node: n, NameNode: n}
		switch kind {
		case SymbolImport:
			if alias := n.ChildByField("alias"); alias != nil {
				sym.NameNode = alias
			} else if s := n.ChildOfKind("string"); s != nil {
				sym.NameNode = s
			}
		case SymbolForeign:
			sym.Name = "foreign"
			if id := n.ChildOfKind("identifier"); id != nil {
				sym.NameNode = id
				sym.Name += " " + id.Text(f.Content)
			}
			if block := n.ChildOfKind("block"); block != nil {
				sym.Children = f.symbolsIn(block)
			}
		default:
			if id := n.ChildOfKind("identifier"); id != nil {
				sym.NameNode = id
			}
		}
		if sym.Name == "" {
			sym.Name = sym.NameNode.Text(f.Content)
		}
		if sym.Name == "" {
			continue
		}
		out = append(out, sym)
	}
	return out
}

// Fold is a multi-line region of a file, in 1-based lines.
type Fold struct {
	StartLine int
	EndLine   int
	Comment   bool
}

var foldKinds = map[string]bool{
	"block":                            true,
	"block_comment":                    true,
	"struct_declaration":               true,
	"enum_declaration":                 true,
	"union_declaration":                true,
	"bit_field_declaration":            true,
	"overloaded_procedure_declaration": true,
	"struct_type":                      true,
	"struct":                           true,
}

// Folds returns the foldable regions of the file in source order.
func (f *File) Folds() []Fold {
	var out []Fold
	f.Tree.Root.Walk(func(n *parser.Node) bool {
		if !foldKinds[n.Kind] || n.Error {
			return true
		}
		start := f.Lines.Position(n.Start).Line
		end := f.Lines.Position(n.End).Line
		if end > start {
			out = append(out, Fold{StartLine: start, EndLine: end, Comment: n.Kind == "block_comment"})
		}
		return true
	})
	return out
}
