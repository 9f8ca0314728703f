package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiam/guix-crates/store"
)

var (
	lastDB     string
	lastFormat string
)

// lastCmd represents the last command
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the latest stored scan",
	Args:  cobra.NoArgs,
	RunE:  runLast,
}

func init() {
	rootCmd.AddCommand(lastCmd)
	lastCmd.Flags().StringVar(&lastDB, "db", "", "SQLite database to read (overrides store.path)")
	lastCmd.Flags().StringVarP(&lastFormat, "format", "f", formatText, "Output format: text or json")
}

func runLast(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := checkFormat(lastFormat); err != nil {
		return err
	}

	path := cfg.Store.Path
	if cmd.Flags().Changed("db") {
		path = lastDB
	}
	if path == "" {
		return errors.New("no database configured, use --db or store.path")
	}

	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.LatestRun(ctx)
	if err != nil {
		return err
	}

	results, err := s.Results(ctx, run.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "run %s of %s", run.ID, run.Source)
	if run.Revision != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), " at %s", run.Revision)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), ", %s: %d files, %d failures\n",
		run.StartedAt.Format(time.RFC3339), run.Files, run.Failures)

	return writeResults(cmd.OutOrStdout(), lastFormat, results)
}
