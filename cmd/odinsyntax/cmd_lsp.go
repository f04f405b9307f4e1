package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/odinsyntax/odin/codebase"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run a language server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newParser()
			if err != nil {
				return err
			}
			return codebase.NewLSPServer(version, p).RunStdio()
		},
	}
}
