package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/onah/fnloc/internal/analyzer"
	"github.com/onah/fnloc/internal/cache"
	"github.com/onah/fnloc/internal/output"
	"github.com/onah/fnloc/internal/progress"
	"github.com/onah/fnloc/internal/report"
	"github.com/onah/fnloc/internal/scanner"
	"github.com/onah/fnloc/pkg/config"
	"github.com/onah/fnloc/pkg/models"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "fnloc",
		Usage:     "Per-function line and complexity metrics for Rust code",
		Version:   version,
		ArgsUsage: "[path...]",
		Description: `Fnloc walks Rust source trees and reports, for every function and
closure, its line breakdown (code, comment, blank), cyclomatic
complexity, and maximum nesting depth.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"FNLOC_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv, markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:    "sort",
				Aliases: []string{"s"},
				Value:   "code",
				Usage:   "Sort by: code, total, comments, name, complexity, nesting",
			},
			&cli.UintFlag{
				Name:    "min-lines",
				Aliases: []string{"m"},
				Usage:   "Hide functions with fewer lines of code",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Show only the top N functions",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of parallel workers (0 = 2x CPU count)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Show the project summary and per-file parse errors",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	sortKey, err := report.ParseSortKey(c.String("sort"))
	if err != nil {
		return err
	}

	format := cfg.Output.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	workers := cfg.Analysis.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	files, err := scanFiles(c, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no Rust files found under %s", strings.Join(getPaths(c), ", "))
	}

	fnAnalyzer := analyzer.New()
	defer fnAnalyzer.Close()

	if cfg.Cache.Enabled && !c.Bool("no-cache") {
		fileCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
		if err != nil {
			color.Yellow("cache disabled: %v", err)
		} else {
			fnAnalyzer.WithCache(fileCache)
		}
	}

	tracker := progress.NewTracker("Analyzing functions...", len(files))
	analysis, err := fnAnalyzer.AnalyzeProject(ctx, files, analyzer.ProjectOptions{
		Workers:    workers,
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	thresholds := models.Thresholds{
		MaxCyclomatic: uint32(cfg.Thresholds.Cyclomatic),
		MaxNesting:    cfg.Thresholds.Nesting,
	}

	rpt := report.Build(analysis, report.Options{
		Sort:       sortKey,
		MinLines:   int(c.Uint("min-lines")),
		Limit:      c.Int("limit"),
		Thresholds: thresholds,
		// Cell highlighting belongs on the text table only; structured
		// formats must stay free of escape codes.
		Color:   formatter.Format() == output.FormatText && formatter.Colored(),
		Verbose: c.Bool("verbose"),
	})

	if err := formatter.Output(rpt); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		for _, msg := range report.Warnings(analysis, thresholds) {
			formatter.Warning("%s", msg)
		}
		if c.Bool("verbose") {
			for _, msg := range report.Failures(analysis) {
				formatter.Warning("%s", msg)
			}
		}
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadOrDefault(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func scanFiles(c *cli.Context, cfg *config.Config) ([]string, error) {
	scan := scanner.New(cfg)
	var files []string
	for _, path := range getPaths(c) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		found, err := scan.ScanPaths([]string{absPath})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}
