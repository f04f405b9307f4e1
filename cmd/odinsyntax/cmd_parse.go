package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/odinsyntax/format"
	"github.com/dhamidi/odinsyntax/odin/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var edits []string

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Print the syntax tree of Odin files (- reads stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newParser()
			if err != nil {
				return err
			}
			enc, err := format.NewEncoder(outputFormat, os.Stdout)
			if err != nil {
				return fmt.Errorf("%w (choose one of %s)", err, strings.Join(format.Formats, ", "))
			}

			for _, path := range args {
				src, err := readSource(path)
				if err != nil {
					return err
				}
				tree := p.Parse(src)
				for _, e := range edits {
					if tree, err = applyEditFlag(p, tree, e); err != nil {
						return err
					}
				}
				if err := enc.Encode(tree); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "sexp", "output format: "+strings.Join(format.Formats, ", "))
	cmd.Flags().StringArrayVarP(&edits, "edit", "e", nil, "apply START:END:TEXT and reparse incrementally (repeatable)")

	return cmd
}

// applyEditFlag parses START:END:TEXT, replaces the byte range with
// TEXT (Go escapes allowed) and reparses incrementally.
func applyEditFlag(p *parser.Parser, tree *parser.Tree, arg string) (*parser.Tree, error) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("edit %q: want START:END:TEXT", arg)
	}
	var start, end int
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &start, &end); err != nil {
		return nil, fmt.Errorf("edit %q: %w", arg, err)
	}
	if start < 0 || end < start || end > len(tree.Source) {
		return nil, fmt.Errorf("edit %q: range outside 0-%d", arg, len(tree.Source))
	}
	text, err := strconv.Unquote(`"` + parts[2] + `"`)
	if err != nil {
		text = parts[2]
	}
	src, edit := parser.ApplyEdit(tree.Source, start, end, text)
	return p.Reparse(tree, src, edit), nil
}
