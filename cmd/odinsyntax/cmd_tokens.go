package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "List the tokens of a file as the parser classified them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newParser()
			if err != nil {
				return err
			}
			src, err := readSource(args[0])
			if err != nil {
				return err
			}

			toks, _ := p.Tokens(src)
			lines := parser.NewLineIndex(src)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, tok := range toks {
				text := fmt.Sprintf("%q", src[tok.Start:tok.End])
				if tok.Synthetic {
					text += " (implied)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", lines.Position(tok.Start), p.Kinds().Name(tok.Kind), text)
			}
			return w.Flush()
		},
	}
}
