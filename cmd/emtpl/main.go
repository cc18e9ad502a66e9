package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/emtpl"
	"github.com/vango-dev/emtpl/internal/errors"
)

// Build information set at build time.
var (
	commit = "none"
	date   = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	config  string
	verbose bool
}

func main() {
	errors.AutoColors(os.Stderr)
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:   "emtpl",
		Short: "Render and diff markup templates",
		Long: `emtpl parses markup templates, renders them against a state file and
reports what changed between two renders.

Templates use {{ }} bindings, em:for and forEach loops, if conditions,
em: expressions, ...spread attributes and on* event bindings.`,
		Version:       emtpl.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&g.config, "config", "c", "", "Path to emtpl.json or its directory (default: nearest enclosing emtpl.json)")
	rootCmd.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		parseCmd(&g),
		renderCmd(&g),
		diffCmd(&g),
		serveCmd(&g),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// logger returns the CLI logger. Only warnings are shown unless --verbose.
func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
