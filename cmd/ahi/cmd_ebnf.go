package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/odinsyntax/odin/grammar"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newEbnfCheckCmd())
	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:           "check [file]",
		Short:         "Parse and verify an EBNF grammar file, or the built-in Odin grammar",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := ebnfSource(args)
			if err != nil {
				return err
			}
			if len(args) == 0 && start == "" {
				start = "source_file"
			}
			return checkEBNF(cmd.OutOrStdout(), name, src, start)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start production for verification (if empty, only checks syntax)")
	return cmd
}

// checkEBNF parses src, verifies it from start when one is given and
// reports the production count.
func checkEBNF(w io.Writer, name string, src io.Reader, start string) error {
	g, err := ebnf.Parse(name, src)
	if err != nil {
		printErrors(w, err)
		return err
	}
	if start != "" {
		if err := ebnf.Verify(g, start); err != nil {
			printErrors(w, err)
			return err
		}
	}
	fmt.Fprintf(w, "%s: %d productions\n", name, len(g))
	return nil
}

func ebnfSource(args []string) (string, io.Reader, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", nil, fmt.Errorf("open file: %w", err)
		}
		return args[0], strings.NewReader(string(data)), nil
	}
	g, err := grammar.NewBuilder().Grammar()
	if err != nil {
		return "", nil, err
	}
	return "odin.ebnf", strings.NewReader(g.EBNF()), nil
}

// printErrors lists each error of the slice x/exp/ebnf returns.
func printErrors(w io.Writer, err error) {
	v := reflect.ValueOf(err)
	if v.Kind() != reflect.Slice {
		fmt.Fprintln(w, err)
		return
	}
	for i := range v.Len() {
		fmt.Fprintln(w, v.Index(i).Interface())
	}
}
