package main

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/odinsyntax/odin/codebase"
	"github.com/dhamidi/odinsyntax/ui"
)

func newUICmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web playground",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newParser()
			if err != nil {
				return err
			}
			server, err := ui.NewServer(codebase.New(".", p), runtime.NumCPU())
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			if !cmd.Flags().Changed("addr") {
				addr = envOr("ODINSYNTAX_ADDR", addr)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Printf("Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")

	return cmd
}
