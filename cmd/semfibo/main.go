// Package main provides the semfibo binary entry point.
// Semfibo answers natural-language questions about the FIBO ontology by
// asking a local model for a query plan and running it against the loaded
// class graph.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/c360studio/semfibo/llm/providers"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semfibo"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	basePath   string
	moduleSet  string
	provider   string
	endpoint   string
	model      string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Natural-language questions over the FIBO ontology",
		Long: `Semfibo answers questions about the Financial Industry Business Ontology.

A local model (LM Studio, Ollama or any OpenAI-compatible server) turns each
question into a plan naming one of the query operations, which then runs
against the loaded FIBO module set.

Without a subcommand semfibo starts the interactive shell.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), flags.logLevel))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, &flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.basePath, "base-path", "", "Directory holding the FIBO module files")
	pf.StringVarP(&flags.moduleSet, "module-set", "m", "", "Module set to load (core, comprehensive, banking, securities)")
	pf.StringVar(&flags.provider, "provider", "", "Model provider (lmstudio, ollama, openai)")
	pf.StringVar(&flags.endpoint, "endpoint", "", "Model server API base URL")
	pf.StringVar(&flags.model, "model", "", "Model name")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		askCmd(&flags),
		queryCmd(&flags),
		serveCmd(&flags),
		statsCmd(&flags),
		modulesCmd(&flags),
		exportCmd(&flags),
		batteryCmd(&flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
