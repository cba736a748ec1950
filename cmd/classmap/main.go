// Package main provides the CLI entry point for the Classmap runtime.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/classmap/runtime/internal/boundary"
	"github.com/classmap/runtime/internal/cli"
	"github.com/classmap/runtime/internal/config"
	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/internal/filter"
	"github.com/classmap/runtime/internal/logger"
	"github.com/classmap/runtime/internal/pathutil"
	"github.com/classmap/runtime/internal/persistence"
	"github.com/classmap/runtime/internal/pipeline"
	"github.com/classmap/runtime/internal/registry"
	"github.com/classmap/runtime/internal/render"
	"github.com/classmap/runtime/internal/scheduler"
	"github.com/classmap/runtime/internal/server"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Snapshot command flags
	snapshotOut            string
	snapshotClassification string
	snapshotAgeBand        string
	snapshotCounty         string

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "classmap",
	Short: "Classmap - Filtered-aggregation dashboard runtime",
	Long: `Classmap serves interactive dashboards over classified county records.

It loads a CSV dataset and a GeoJSON boundary catalog described by a
configuration file (JSON/YAML format), derives cross-tabulations,
per-county aggregates, and summary statistics for a filter selection,
and serves them as an HTML dashboard with SVG views.

Examples:
  # Validate a configuration file
  classmap validate config.json

  # Serve the dashboard
  classmap serve config.yaml

  # Render all views for a selection into a directory
  classmap snapshot config.yaml --out ./snap --county Fairfax`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Configure logger level based on flags
		if verbose {
			logger.SetLevel(slog.LevelDebug)
		} else if quiet {
			logger.SetLevel(slog.LevelError)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate a dashboard configuration file",
	Long: `Validate a dashboard configuration file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Configuration is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)

Examples:
  classmap validate config.json
  classmap validate dashboard.yaml
  classmap validate --verbose config.json`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var serveCmd = &cobra.Command{
	Use:   "serve <config-file>",
	Short: "Serve the dashboard over HTTP",
	Long: `Serve the dashboard described by the configuration file.

The configuration is validated first, then the dataset and boundary
catalog are loaded and the HTTP server starts. With reload enabled in
the configuration, the dataset file is watched for changes.

Exit codes:
  0 - Clean shutdown
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors (load or serve failures)

Examples:
  classmap serve config.json
  classmap serve --verbose dashboard.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runServe,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <config-file>",
	Short: "Render every view for a selection into a directory",
	Long: `Render every registered view for one filter selection to SVG files.

The selection is built from the --classification, --age-band, and
--county flags; omitted dimensions are unconstrained.

Exit codes:
  0 - All views rendered
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors

Examples:
  classmap snapshot config.yaml --out ./snap
  classmap snapshot config.yaml --out ./snap --county Fairfax --age-band 25-29`,
	Args: cobra.ExactArgs(1),
	Run:  runSnapshot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run:   runVersion,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	// Snapshot command flags
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "./snapshot", "Output directory for rendered views")
	snapshotCmd.Flags().StringVar(&snapshotClassification, "classification", "", "Classification constraint")
	snapshotCmd.Flags().StringVar(&snapshotAgeBand, "age-band", "", "Age-band constraint (e.g. 25-29)")
	snapshotCmd.Flags().StringVar(&snapshotCounty, "county", "", "County-name constraint")

	// Add commands
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig parses, validates, and converts a configuration file,
// exiting with the appropriate code on failure.
func loadConfig(configPath string) *dashboard.Config {
	result := config.ParseConfig(configPath)

	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	cfg, err := config.ConvertToConfig(result.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to convert configuration: %v\n", err)
		os.Exit(ExitRuntimeError)
	}
	return cfg
}

// buildRuntime loads the dataset and boundary catalog and wires the
// pipeline executor.
func buildRuntime(ctx context.Context, cfg *dashboard.Config) (*pipeline.Executor, render.Deps, error) {
	var script *dataset.FieldScript
	var err error
	if cfg.Dataset.Script != "" {
		script, err = dataset.NewFieldScript(cfg.Dataset.Script)
	} else if cfg.Dataset.ScriptFile != "" {
		script, err = dataset.NewFieldScriptFromFile(cfg.Dataset.ScriptFile)
	}
	if err != nil {
		return nil, render.Deps{}, fmt.Errorf("loading field script: %w", err)
	}

	source, err := dataset.NewCSVSource(cfg.Dataset.Path, cfg.Dataset.Columns, script)
	if err != nil {
		return nil, render.Deps{}, fmt.Errorf("opening dataset: %w", err)
	}

	store := dataset.NewStore(source, cfg.Dataset.Path)
	if err := store.Load(ctx); err != nil {
		return nil, render.Deps{}, fmt.Errorf("loading dataset: %w", err)
	}

	catalog, err := boundary.Load(cfg.Boundary.Path, cfg.Boundary.StateFIPS)
	if err != nil {
		return nil, render.Deps{}, fmt.Errorf("loading boundary catalog: %w", err)
	}

	var where *filter.Where
	if cfg.Filters.Where != "" {
		where, err = filter.NewWhere(cfg.Filters.Where)
		if err != nil {
			return nil, render.Deps{}, fmt.Errorf("compiling where expression: %w", err)
		}
	}

	executor := pipeline.NewExecutor(store, catalog, where, cfg.Boundary.StateCode, cfg.Dataset.DistinguishedClass)
	return executor, render.Deps{Catalog: catalog}, nil
}

// bookmarkPath resolves the bookmark directory from the configuration.
func bookmarkPath(cfg *dashboard.Config) string {
	if cfg.StateDir != "" {
		return filepath.Join(cfg.StateDir, "bookmarks")
	}
	return persistence.DefaultStatePath
}

func runValidate(_ *cobra.Command, args []string) {
	configPath := args[0]

	if !quiet {
		fmt.Printf("Validating configuration: %s\n", configPath)
	}

	result := config.ParseConfig(configPath)

	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	if !quiet {
		fmt.Printf("✓ Configuration is valid (format: %s)\n", result.Format)
		if verbose {
			cli.PrintConfigSummary(result.Data)
		}
	}

	os.Exit(ExitSuccess)
}

func runServe(_ *cobra.Command, args []string) {
	configPath := args[0]

	if !quiet {
		fmt.Printf("Loading dashboard configuration: %s\n", configPath)
	}

	cfg := loadConfig(configPath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	executor, deps, err := buildRuntime(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to start: %v\n", err)
		os.Exit(ExitRuntimeError)
	}
	defer executor.Store().Close()

	if cfg.Reload.Enabled {
		interval := scheduler.DefaultInterval
		if cfg.Reload.IntervalMs > 0 {
			interval = time.Duration(cfg.Reload.IntervalMs) * time.Millisecond
		}
		watcher := scheduler.NewWatcher(executor.Store(), interval)
		if err := watcher.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "✗ Failed to start reload watcher: %v\n", err)
			os.Exit(ExitRuntimeError)
		}
		defer watcher.Stop()
	}

	bookmarks := persistence.NewBookmarkStore(bookmarkPath(cfg))
	srv := server.New(cfg, executor, bookmarks, deps)

	cli.PrintServeInfo(cfg, cfg.Server.ListenAddress, cli.OutputOptions{Verbose: verbose, Quiet: quiet})

	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Server error: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	os.Exit(ExitSuccess)
}

func runSnapshot(_ *cobra.Command, args []string) {
	configPath := args[0]

	cfg := loadConfig(configPath)
	ctx := context.Background()

	executor, deps, err := buildRuntime(ctx, cfg)
	if err != nil {
		cli.PrintSnapshotResult(nil, err, cli.OutputOptions{Verbose: verbose, Quiet: quiet})
		os.Exit(ExitRuntimeError)
	}
	defer executor.Store().Close()

	sel := dashboard.Selection{
		Classification: snapshotClassification,
		AgeBand:        snapshotAgeBand,
		County:         snapshotCounty,
	}

	result, err := renderSnapshot(ctx, executor, deps, sel, snapshotOut)
	cli.PrintSnapshotResult(result, err, cli.OutputOptions{Verbose: verbose, Quiet: quiet})
	if err != nil {
		os.Exit(ExitRuntimeError)
	}

	os.Exit(ExitSuccess)
}

// renderSnapshot renders every registered view for the selection into
// outDir.
func renderSnapshot(ctx context.Context, executor *pipeline.Executor, deps render.Deps, sel dashboard.Selection, outDir string) (*dashboard.SnapshotResult, error) {
	startedAt := time.Now().UTC()

	data, _, err := executor.Run(ctx, sel)
	if err != nil {
		return nil, err
	}

	if err := pathutil.EnsureOutputDir(outDir); err != nil {
		return nil, err
	}

	result := &dashboard.SnapshotResult{
		OutputDir: outDir,
		Stats:     data.Stats,
		StartedAt: startedAt,
	}

	for _, viewType := range registry.ListTypes() {
		renderer := registry.Build(viewType, deps)
		body, err := renderer.Render(data)
		if err != nil {
			return result, fmt.Errorf("rendering %s: %w", viewType, err)
		}

		path := filepath.Join(outDir, viewType+".svg")
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return result, fmt.Errorf("writing %s: %w", viewType, err)
		}

		result.Files = append(result.Files, dashboard.SnapshotFile{
			View:  viewType,
			Path:  path,
			Bytes: len(body),
		})
	}

	result.CompletedAt = time.Now().UTC()
	return result, nil
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Build Date: %s\n", buildDate)
}
