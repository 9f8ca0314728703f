package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	crates "github.com/xiam/guix-crates"
	"github.com/xiam/guix-crates/ast"
	"github.com/xiam/guix-crates/index"
	"github.com/xiam/guix-crates/parser"
)

var (
	parsePackages bool
	parseFormat   string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the expression tree of a module",
	Long: `Parse reads a single file and prints its expression tree, or with
--packages, the crate packages it defines.

Examples:
  guix-crates parse gnu/packages/crates-io.scm
  guix-crates parse --packages --format json gnu/packages/crates-io.scm
`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVarP(&parsePackages, "packages", "p", false, "Print the crate packages instead of the tree")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", formatText, "Output format of --packages: text or json")
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := checkFormat(parseFormat); err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	p := parser.New(nil)
	p.SetOptions(parser.Options{MaxDepth: cfg.Scan.MaxDepth})

	nodes, err := p.ParseString(strings.ToValidUTF8(string(data), "\uFFFD"))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if !parsePackages {
		return ast.Print(cmd.OutOrStdout(), nodes...)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	packages := slices.Collect(crates.Extract(nodes))

	results := []index.Result{}
	if len(packages) > 0 {
		results = append(results, index.Result{File: name, Packages: packages})
	}
	return writeResults(cmd.OutOrStdout(), parseFormat, results)
}
