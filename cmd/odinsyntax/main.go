package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/odinsyntax/odin/parser"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	var verbose int
	var logFile string

	rootCmd := &cobra.Command{
		Use:     "odinsyntax",
		Short:   "Parse and check Odin source files",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			if !cmd.Flags().Changed("verbose") {
				verbose = envVerbosity()
			}
			if logFile == "" {
				logFile = os.Getenv("ODINSYNTAX_LOG_FILE")
			}
			commonlog.Initialize(verbose-1, logFile)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with ODINSYNTAX_* settings")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log more (repeat for debug output)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newUICmd())

	return rootCmd
}

// loadEnv reads settings from path. A missing default file is fine; a
// missing file named on the command line is not.
func loadEnv(path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

func envVerbosity() int {
	switch os.Getenv("ODINSYNTAX_LOG_LEVEL") {
	case "debug":
		return 3
	case "info":
		return 2
	case "notice":
		return 1
	default:
		return 0
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newParser() (*parser.Parser, error) {
	p, err := parser.NewDefault()
	if err != nil {
		return nil, fmt.Errorf("load grammar: %w", err)
	}
	return p, nil
}

func readSource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
