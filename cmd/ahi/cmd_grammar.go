package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/odinsyntax/lr"
	"github.com/dhamidi/odinsyntax/odin/grammar"
	"github.com/dhamidi/odinsyntax/odin/parser"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grammar",
		Short:         "Inspect the Odin grammar and its parse tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGrammarEbnfCmd())
	cmd.AddCommand(newGrammarConflictsCmd())
	cmd.AddCommand(newGrammarStatsCmd())
	cmd.AddCommand(newGrammarDerivationsCmd())
	cmd.AddCommand(newGrammarRulesCmd())

	return cmd
}

func newGrammarEbnfCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "ebnf",
		Short: "Print the grammar as EBNF",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.NewBuilder().Grammar()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, g.EBNF())
			if verify {
				if err := g.VerifyEBNF(); err != nil {
					printErrors(cmd.ErrOrStderr(), err)
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check the output with x/exp/ebnf")

	return cmd
}

func newGrammarConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List conflicts settled by the conflict table",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := grammar.Load()
			if err != nil {
				var ce *lr.ConflictError
				if errors.As(err, &ce) {
					printConflicts(os.Stdout, "undeclared", ce.Conflicts)
				}
				return err
			}
			printConflicts(os.Stdout, "declared", tbl.Declared)
			return nil
		},
	}
}

func printConflicts(w io.Writer, label string, conflicts []lr.Conflict) {
	fmt.Fprintf(w, "%d %s conflicts\n", len(conflicts), label)
	for _, c := range conflicts {
		fmt.Fprintf(w, "%s\n  chosen %s\n", c, c.Chosen)
	}
}

func newGrammarStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print symbol, production and state counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := grammar.Load()
			if err != nil {
				return err
			}
			writeStats(os.Stdout, tbl)
			return nil
		},
	}
}

func writeStats(w io.Writer, tbl *lr.Table) {
	g := tbl.Grammar
	fmt.Fprintf(w, "rules        %d\n", len(g.Rules()))
	fmt.Fprintf(w, "terminals    %d\n", g.NumTerminals)
	fmt.Fprintf(w, "nonterminals %d\n", g.NumNonterminals())
	fmt.Fprintf(w, "productions  %d\n", len(g.Productions))
	fmt.Fprintf(w, "states       %d\n", tbl.NumStates)
	fmt.Fprintf(w, "declared     %d\n", len(tbl.Declared))
}

func newGrammarDerivationsCmd() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "derivations <source>",
		Short: "Count the parse trees the rules allow for a snippet, ignoring precedence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parser.NewDefault()
			if err != nil {
				return err
			}
			n, err := derivations(p, start, []byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "source_file", "rule the snippet must derive from")

	return cmd
}

// derivations tokenizes src with the table-driven parser and counts its
// derivations from start with an Earley parser over the same rules.
func derivations(p *parser.Parser, start string, src []byte) (int, error) {
	g := p.Grammar()
	id, ok := g.Lookup(start)
	if !ok || g.IsTerminal(id) {
		return 0, fmt.Errorf("no rule %q", start)
	}
	toks, tree := p.Tokens(src)
	if tree.HasError() {
		return 0, fmt.Errorf("snippet has syntax errors: %s", tree)
	}
	kinds := make([]int, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	e := lr.NewEarleyParser(g, kinds)
	ok, err := e.Parse(id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return e.Derivations(id), nil
}

func newGrammarRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [prefix]",
		Short: "List rules with their production counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.NewBuilder().Grammar()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			for _, name := range matchRules(g, prefix) {
				if id, ok := g.Lookup(name); ok {
					fmt.Printf("%-40s %d\n", name, len(g.ProductionsFor(id)))
				}
			}
			return nil
		},
	}
}

func sortedRuleNames(g *lr.Grammar) []string {
	names := append([]string(nil), g.Rules()...)
	sort.Strings(names)
	return names
}

func matchRules(g *lr.Grammar, prefix string) []string {
	var out []string
	for _, name := range sortedRuleNames(g) {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}
