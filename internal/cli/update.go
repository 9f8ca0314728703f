package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiam/guix-crates/internal/config"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the latest commit of the Guix repository",
	Long: `Update clones the configured repository on first use and fetches the
latest commit of its branch afterwards. Scans read the fetched commit.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cfg.Source.Kind != config.SourceGit {
		return errors.New("update needs a git source")
	}

	g, err := openGit(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}
	if err := g.Update(ctx); err != nil {
		return fmt.Errorf("failed to update repository: %w", err)
	}

	rev, err := g.Revision(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s at %s\n", cfg.Source.URL, cfg.Source.Branch, rev)
	return nil
}
