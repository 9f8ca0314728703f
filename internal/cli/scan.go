package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiam/guix-crates/index"
	"github.com/xiam/guix-crates/internal/config"
	"github.com/xiam/guix-crates/internal/ctxlog"
	"github.com/xiam/guix-crates/source"
	"github.com/xiam/guix-crates/store"
)

var (
	scanDir        string
	scanFormat     string
	scanDB         string
	scanSkipErrors bool
	scanWorkers    int
	scanQuiet      bool
	scanWatch      bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the crate packages of every module",
	Long: `Scan reads every package module of the configured source and prints the
crate packages it defines, one "module<TAB>crate<TAB>version" line each.

Examples:
  # Scan the cached Guix clone
  guix-crates scan

  # Scan a checkout and print JSON
  guix-crates scan --dir ~/src/guix/gnu/packages --format json

  # Keep the run in a database, then show it again later
  guix-crates scan --db runs.db
  guix-crates last --db runs.db

  # Print the packages of modules as they change
  guix-crates scan --dir ~/src/guix/gnu/packages --watch
`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanDir, "dir", "", "Scan this directory instead of the configured source")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", formatText, "Output format: text or json")
	scanCmd.Flags().StringVar(&scanDB, "db", "", "Store the run in this SQLite database (overrides store.path)")
	scanCmd.Flags().BoolVar(&scanSkipErrors, "skip-errors", false, "Report unparsable modules instead of failing")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "j", 0, "Number of modules parsed at once (default GOMAXPROCS)")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Disable the progress bar")
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Keep running and print the packages of changed modules (--dir sources only)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	if err := checkFormat(scanFormat); err != nil {
		return err
	}

	applyScanFlags(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if scanWatch && cfg.Source.Kind != config.SourceDir {
		return errors.New("--watch needs a directory source")
	}

	src, err := openSource(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}

	opts := index.Options{
		Workers:    cfg.Scan.Workers,
		SkipErrors: cfg.Scan.SkipErrors,
		MaxDepth:   cfg.Scan.MaxDepth,
		CacheSize:  cfg.Scan.CacheSize,
	}
	if !scanQuiet {
		opts.Progress = newProgressBar(cmd.ErrOrStderr())
	}

	ix, err := index.New(opts)
	if err != nil {
		return err
	}

	started := time.Now()
	report, err := ix.Scan(ctx, src.provider)
	if err != nil {
		return err
	}

	if err := writeResults(cmd.OutOrStdout(), scanFormat, report.Results); err != nil {
		return err
	}

	for _, failure := range report.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", failure.File, failure.Err)
	}

	if cfg.Store.Path != "" {
		run := &store.Run{
			StartedAt: started,
			Source:    src.name,
			Revision:  src.revision,
			Files:     report.Files,
			Cached:    report.Cached,
			Failures:  len(report.Failures),
		}
		if err := saveRun(ctx, cfg.Store.Path, run, report.Results); err != nil {
			return err
		}
		logger.Info("run stored", "id", run.ID, "db", cfg.Store.Path)
	}

	if scanWatch {
		return watch(ctx, cmd, src.dir, ix)
	}
	return nil
}

// applyScanFlags lets command line flags take precedence over the loaded
// configuration.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Source.Kind = config.SourceDir
		cfg.Source.Dir = scanDir
	}
	if flags.Changed("db") {
		cfg.Store.Path = scanDB
	}
	if flags.Changed("skip-errors") {
		cfg.Scan.SkipErrors = scanSkipErrors
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = scanWorkers
	}
}

func saveRun(ctx context.Context, path string, run *store.Run, results []index.Result) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.SaveRun(ctx, run, results)
}

func watch(ctx context.Context, cmd *cobra.Command, dir *source.Dir, ix *index.Indexer) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("watching for changes", "dir", dir.Root())

	return dir.Watch(ctx, func(f source.File) {
		packages, err := ix.File(ctx, f)
		if err != nil {
			logger.Warn("failed to parse changed module", "file", f.Name, "error", err)
			return
		}
		if err := writeFileResult(cmd.OutOrStdout(), scanFormat, f.Name, packages); err != nil {
			logger.Warn("failed to write results", "error", err)
		}
	})
}
