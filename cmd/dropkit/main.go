package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"dropkit/internal/bootstrap"
	dispatchdto "dropkit/internal/modules/dispatch/dto"
	"dropkit/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var basePath string
	var verbose bool

	root := &cobra.Command{
		Use:           "dropkit",
		Short:         "Batch processing host for drop-driven processors",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&basePath, "base", ".", "host base directory")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newDispatchCmd(&basePath, &verbose))
	root.AddCommand(newProcessorsCmd(&basePath, &verbose))
	root.AddCommand(newDepsCmd(&basePath, &verbose))
	root.AddCommand(newJournalCmd(&basePath, &verbose))
	root.AddCommand(newSchemaCmd(&basePath, &verbose))
	return root
}

func loadApp(basePath string, verbose bool) (*bootstrap.App, error) {
	cfg, err := config.New(basePath)
	if err != nil {
		return nil, err
	}
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	log := hclog.New(&hclog.LoggerOptions{Name: "dropkit", Level: level, Output: os.Stderr})
	app, err := bootstrap.New(cfg, os.Stdout, log)
	if err != nil {
		return nil, err
	}
	app.RegisterDeclaredDependencies(context.Background())
	return app, nil
}

func newDispatchCmd(basePath *string, verbose *bool) *cobra.Command {
	var processor string
	var urls, texts, opts []string
	var run, dryRun bool

	dispatch := &cobra.Command{
		Use:   "dispatch [paths...]",
		Short: "Match dropped inputs against processors and dispatch operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			options, err := parseOptions(opts)
			if err != nil {
				return err
			}
			out, err := app.DispatchCLI.Dispatch(cmd.Context(), dispatchdto.DispatchInput{
				Paths:     args,
				URLs:      urls,
				Texts:     texts,
				Processor: processor,
				Options:   options,
				DryRun:    dryRun,
				Run:       run,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "items: %d\n", out.Items)
			for _, op := range out.Operations {
				shape := "bulk"
				if !op.Bulk {
					shape = "single"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\titems=%d\t%s\n", op.ID, op.Processor, shape, op.ItemCount, op.Status)
				if op.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  error: %s\n", op.Error)
				}
			}
			for _, skipped := range out.Skipped {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s\n", skipped)
			}
			return nil
		},
	}
	dispatch.Flags().StringVar(&processor, "processor", "", "dispatch to this processor only")
	dispatch.Flags().StringSliceVar(&urls, "url", nil, "url items")
	dispatch.Flags().StringSliceVar(&texts, "text", nil, "text items")
	dispatch.Flags().StringSliceVar(&opts, "opt", nil, "option override key=value (requires --processor)")
	dispatch.Flags().BoolVar(&run, "run", false, "run dispatched operations")
	dispatch.Flags().BoolVar(&dryRun, "dry-run", false, "match only, do not journal or run")
	return dispatch
}

// parseOptions turns key=value pairs into option values. Values parse
// as JSON where possible, so numbers and booleans come through typed.
func parseOptions(opts []string) (map[string]any, error) {
	if len(opts) == 0 {
		return nil, nil
	}
	options := make(map[string]any, len(opts))
	for _, opt := range opts {
		key, raw, found := strings.Cut(opt, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("bad --opt %q, want key=value", opt)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		options[key] = value
	}
	return options, nil
}

func newProcessorsCmd(basePath *string, verbose *bool) *cobra.Command {
	processors := &cobra.Command{Use: "processors", Short: "Processor registry commands"}

	processors.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered processors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			infos, err := app.RegistryCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no processors")
				return nil
			}
			for _, info := range infos {
				state := "enabled"
				if !info.Enabled {
					state = "disabled"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", info.Name, info.Version, info.Source, state)
			}
			return nil
		},
	})

	processors.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check external processor health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			results, err := app.RegistryCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no external processors")
				return nil
			}
			for _, result := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tmanifest=%t\tbinary=%t\tlifecycle=%t\n",
					result.Name, result.ManifestValid, result.BinaryReachable, result.LifecycleOK)
				if result.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", result.Error)
				}
			}
			return nil
		},
	})

	processors.AddCommand(&cobra.Command{
		Use:   "describe <name>",
		Short: "Describe one processor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			detail, err := app.RegistryCLI.Describe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "name: %s\nsource: %s\n", detail.Name, detail.Source)
			if detail.Version != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", detail.Version)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "bulk: %t\nexpandDirectory: %t\n", detail.Bulk, detail.ExpandDirectory)
			if detail.ThreadType != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "threadType: %s\n", detail.ThreadType)
			}
			for kind, patterns := range detail.Accepts {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "accepts %s: %s\n", kind, strings.Join(patterns, ", "))
			}
			if len(detail.Dependencies) > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dependencies: %s\n", strings.Join(detail.Dependencies, ", "))
			}
			if len(detail.OptionalDependencies) > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "optional: %s\n", strings.Join(detail.OptionalDependencies, ", "))
			}
			if len(detail.OptionNames) > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "options: %s\n", strings.Join(detail.OptionNames, ", "))
			}
			return nil
		},
	})
	return processors
}

func newDepsCmd(basePath *string, verbose *bool) *cobra.Command {
	deps := &cobra.Command{Use: "deps", Short: "Dependency lifecycle commands"}

	deps.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show every registered dependency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			statuses := app.DepsCLI.Snapshot()
			if len(statuses) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no dependencies")
				return nil
			}
			for _, status := range statuses {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", status.Name, status.State, status.Version)
				if status.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", status.Error)
				}
			}
			return nil
		},
	})

	deps.AddCommand(&cobra.Command{
		Use:   "load <name>",
		Short: "Load one dependency, installing it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			status, err := app.DepsCLI.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", status.Name, status.State, status.Version)
			return nil
		},
	})

	deps.AddCommand(&cobra.Command{
		Use:   "reset <name>",
		Short: "Reset a dependency back to unloaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			if err := app.DepsCLI.Reset(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", args[0])
			return nil
		},
	})
	return deps
}

func newJournalCmd(basePath *string, verbose *bool) *cobra.Command {
	journal := &cobra.Command{Use: "journal", Short: "Operation history commands"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List journaled operations, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			entries, err := app.JournalCLI.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no operations")
				return nil
			}
			for _, entry := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\titems=%d\t%s\n",
					entry.CreatedAt, entry.ID, entry.Processor, entry.ItemCount, entry.Status)
				if entry.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", entry.Error)
				}
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum entries to list, 0 for all")
	journal.AddCommand(list)
	return journal
}

func newSchemaCmd(basePath *string, verbose *bool) *cobra.Command {
	schema := &cobra.Command{Use: "schema", Short: "Option schema commands"}

	schema.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate an option schema file and print its defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*basePath, *verbose)
			if err != nil {
				return err
			}
			report, err := app.OptionsCLI.CheckFile(args[0])
			if err != nil {
				return err
			}
			if report.Err != "" {
				return fmt.Errorf("%s: %s", report.Path, report.Err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d nodes\n", report.Path, report.Nodes)
			encoded, err := json.MarshalIndent(report.Defaults, "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	})
	return schema
}
