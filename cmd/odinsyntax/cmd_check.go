package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dhamidi/odinsyntax/odin/codebase"
	"github.com/dhamidi/odinsyntax/odin/scanner"
)

func newCheckCmd() *cobra.Command {
	var timeout time.Duration
	var workers int
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Report syntax errors in Odin files and directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newParser()
			if err != nil {
				return err
			}
			c := codebase.New(".", p)
			s := scanner.New(c, workers)

			var req scanner.Request
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("stat %s: %w", path, err)
				}
				if info.IsDir() {
					if req.Path != "" {
						return fmt.Errorf("only one directory per check, got %s and %s", req.Path, path)
					}
					req.Path = path
				} else {
					req.Files = append(req.Files, path)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			result, err := s.Wait(ctx, s.Submit(req))
			if err != nil {
				if result == nil {
					return err
				}
				return fmt.Errorf("check: %w (%d of %d files done)", err, result.Progress, result.Total)
			}
			failed := printResult(os.Stdout, c, result)

			if watch {
				return watchPaths(cmd.Context(), c, args, interval)
			}
			if result.Status == scanner.StatusFailed {
				return fmt.Errorf("%s", result.Error)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files have syntax errors", failed, len(result.Files))
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", time.Minute, "give up after this long")
	cmd.Flags().IntVarP(&workers, "jobs", "j", runtime.NumCPU(), "files parsed in parallel")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep checking files as they change")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval for --watch")

	return cmd
}

var (
	okLabel    = color.New(color.FgGreen).SprintFunc()
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	faint      = color.New(color.Faint).SprintFunc()
)

// printResult prints one line per file and one per diagnostic, and
// returns the number of files with problems.
func printResult(w io.Writer, c *codebase.Codebase, result *scanner.Result) int {
	for _, e := range result.Errors {
		fmt.Fprintf(w, "%s %s\n", errorLabel("[ERROR]"), e)
	}
	failed := 0
	for _, f := range result.Files {
		if f.OK() {
			fmt.Fprintf(w, "%s %s %s\n", okLabel("[OK]"), f.Path, faint(f.Duration.Round(time.Microsecond)))
			continue
		}
		failed++
		if f.Err != "" {
			fmt.Fprintf(w, "%s %s\n", errorLabel("[ERROR]"), f.Err)
			continue
		}
		printDiagnostics(w, c.GetFile(f.Path), f.Diagnostics)
	}
	fmt.Fprintf(w, "%d files, %d with errors\n", len(result.Files), failed)
	return failed
}

func printDiagnostics(w io.Writer, file *codebase.File, diags []codebase.Diagnostic) {
	for _, d := range diags {
		pos := file.Lines.Position(d.Start)
		fmt.Fprintf(w, "%s %s:%s: %s\n", errorLabel("[ERROR]"), file.Path, pos, d.Message)
	}
}

func watchPaths(ctx context.Context, c *codebase.Codebase, paths []string, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	for _, path := range paths {
		dir := path
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			dir = filepath.Dir(path)
		}
		primed := false
		w := codebase.NewFileWatcher(codebase.New(dir, c.Parser()), interval, func(path string, f *codebase.File) {
			if !primed {
				return
			}
			if f == nil {
				fmt.Printf("%s %s\n", faint("[REMOVED]"), path)
				return
			}
			if diags := f.Diagnostics(); len(diags) > 0 {
				printDiagnostics(os.Stdout, f, diags)
				return
			}
			fmt.Printf("%s %s\n", okLabel("[OK]"), path)
		})
		w.Scan()
		primed = true
		w.Start()
		defer w.Stop()
	}
	fmt.Println(faint("watching for changes, press Ctrl-C to stop"))
	<-ctx.Done()
	return nil
}
