package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semfibo/battery"
	"github.com/c360studio/semfibo/dispatch"
	"github.com/c360studio/semfibo/export"
	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/planner"
	"github.com/c360studio/semfibo/query"
	"github.com/c360studio/semfibo/server"
	"github.com/c360studio/semfibo/shell"
)

// errBatteryFailed makes the battery command exit non-zero.
var errBatteryFailed = errors.New("battery failed")

// withApp loads config, builds the app and runs fn with a context cancelled
// on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *App) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	cfg, err := loadConfig(flags, logger)
	if err != nil {
		return err
	}
	a, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Shutdown error", "error", err)
		}
	}()
	return fn(ctx, a)
}

func runShell(cmd *cobra.Command, flags *globalFlags) error {
	return withApp(cmd, flags, func(ctx context.Context, a *App) error {
		if err := a.StartWatcher(ctx); err != nil {
			return err
		}
		set := a.store.Current()
		stats := a.store.Graph().Stats()
		banner := fmt.Sprintf("%s %s - %s (%d classes, %d properties)\nModel: %s via %s",
			appName, Version, set.Title(), stats.Classes, stats.Properties,
			a.cfg.Model.Name, a.cfg.Model.Provider)
		return shell.New(a.agent, cmd.InOrStdin(), cmd.OutOrStdout(), shell.WithBanner(banner)).Run(ctx)
	})
}

func askCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Answer one question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *App) error {
				ans := a.agent.Answer(ctx, strings.Join(args, " "))
				if asJSON {
					return writeJSON(cmd, ans)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the answer with its route, status and plan as JSON")
	return cmd
}

func queryCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "query FUNCTION [ARGUMENT...]",
		Short: "Run one query operation directly, without the model",
		Long:  "Run one query operation directly, without the model.\n\nOperations:\n" + toolList(),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *App) error {
				res := a.dispatcher.Execute(ctx, planner.Plan{Function: args[0], Arguments: args[1:]})
				if asJSON {
					return writeJSON(cmd, res)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Output)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result with its status as JSON")
	return cmd
}

func toolList() string {
	var b strings.Builder
	for _, t := range dispatch.Tools() {
		fmt.Fprintf(&b, "  %s\n", t.Signature())
	}
	return b.String()
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *App) error {
				if err := a.StartWatcher(ctx); err != nil {
					return err
				}
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				srv := server.New(a.agent, a.dispatcher, a.store,
					server.WithLogger(a.logger),
					server.WithMetrics(a.metrics),
					server.WithAllowedOrigins(a.cfg.Server.AllowedOrigins))
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s serving %s on %s\n", appName, Version, a.store.Current().Name, addr)
				return srv.ListenAndServe(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func statsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print statistics for the loaded module set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(_ context.Context, a *App) error {
				ops := query.New(a.store.Graph(), query.WithModuleSet(a.store.Current()))
				fmt.Fprintln(cmd.OutOrStdout(), ops.Stats())
				return nil
			})
		},
	}
}

func modulesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the configured module sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			cfg, err := loadConfig(flags, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, set := range ontology.SortedSets(cfg.Sets()) {
				marker := " "
				if set.Name == cfg.Ontology.ModuleSet {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s: %s (%d modules)\n", marker, set.Name, set.Title(), len(set.Modules))
				if set.Description != "" {
					fmt.Fprintf(out, "    %s\n", set.Description)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "compare A B",
		Short: "Compare the module lists of two sets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, slog.Default())
			if err != nil {
				return err
			}
			sets := cfg.Sets()
			a, ok := sets[args[0]]
			if !ok {
				return fmt.Errorf("%w: %s", ontology.ErrUnknownModuleSet, args[0])
			}
			b, ok := sets[args[1]]
			if !ok {
				return fmt.Errorf("%w: %s", ontology.ErrUnknownModuleSet, args[1])
			}
			c := ontology.CompareModuleSets(a, b)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d modules\n%s: %d modules\nCommon: %d\nOverlap: %.1f%%\n",
				a.Name, c.TotalA, b.Name, c.TotalB, len(c.Common), c.Overlap)
			writeList(cmd, "Only in "+a.Name, c.OnlyA)
			writeList(cmd, "Only in "+b.Name, c.OnlyB)
			return nil
		},
	})
	return cmd
}

func writeList(cmd *cobra.Command, title string, items []string) {
	if len(items) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", title)
	for _, m := range items {
		fmt.Fprintf(out, "  - %s\n", m)
	}
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		format  string
		profile string
		class   string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the loaded graph as Turtle, N-Triples or JSON-LD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(_ context.Context, a *App) error {
				g := a.store.Graph()
				exporter := export.NewRDFExporter(export.Profile(profile))
				if class != "" {
					name, err := g.ResolveClass(class)
					if err != nil {
						return errors.New(query.ResolveMessage(class, err))
					}
					c, _ := g.Class(name)
					exporter.AddNeighbourhood(g, c)
				} else {
					exporter.AddGraph(g)
				}

				if output == "" || output == "-" {
					return exporter.Write(cmd.OutOrStdout(), f)
				}
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := exporter.Write(file, f); err != nil {
					_ = file.Close()
					return fmt.Errorf("write export: %w", err)
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entities to %s\n", exporter.Len(), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatTurtle), "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVar(&profile, "profile", string(export.ProfileFull), "Export profile (hierarchy, full)")
	cmd.Flags().StringVar(&class, "class", "", "Export only this class and its neighbourhood")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func batteryCmd(flags *globalFlags) *cobra.Command {
	var (
		file       string
		categories []string
		quick      int
		strict     bool
		list       bool
	)
	cmd := &cobra.Command{
		Use:   "battery",
		Short: "Run a scripted question suite and report pass/fail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite := battery.Default()
			if file != "" {
				var err error
				if suite, err = battery.LoadFile(file); err != nil {
					return err
				}
			}
			suite = suite.Filter(categories...)
			if quick > 0 {
				suite = suite.Head(quick)
			}

			out := cmd.OutOrStdout()
			if list {
				printCategories(cmd, suite)
				return nil
			}

			return withApp(cmd, flags, func(ctx context.Context, a *App) error {
				fmt.Fprintf(out, "Running %d tests...\n%s\n", len(suite.Cases), strings.Repeat("=", 60))
				runner := battery.NewRunner(a.agent,
					battery.WithStrictPlans(strict),
					battery.WithProgress(func(res battery.Result) { battery.PrintResult(out, res) }))
				report := runner.Run(ctx, suite)
				report.Print(out)
				if report.Failed > 0 {
					return fmt.Errorf("%w: %s", errBatteryFailed, report.Summary())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML suite file (default built-in suite)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Only run these categories")
	cmd.Flags().IntVar(&quick, "quick", 0, "Only run the first N cases")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail cases whose plan differs from the expected function")
	cmd.Flags().BoolVar(&list, "list", false, "List categories and exit")
	return cmd
}

func printCategories(cmd *cobra.Command, suite battery.Suite) {
	cats := suite.Categories()
	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Test suite (total: %d tests):\n", len(suite.Cases))
	for _, name := range names {
		fmt.Fprintf(out, "   %s: %d tests\n", name, cats[name])
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
