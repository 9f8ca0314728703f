package cli

import (
	"encoding/json"
	"fmt"
	"io"

	crates "github.com/xiam/guix-crates"
	"github.com/xiam/guix-crates/index"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q, expected %s or %s", format, formatText, formatJSON)
}

// writeResults prints one "file<TAB>name<TAB>version" line per package, or
// the results as a JSON array.
func writeResults(w io.Writer, format string, results []index.Result) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []index.Result{}
		}
		return enc.Encode(results)
	}

	for _, res := range results {
		for _, pkg := range res.Packages {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", res.File, pkg.Name, pkg.Version); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeFileResult prints the packages of a single file, the way a scan
// would list it. A file without packages prints nothing.
func writeFileResult(w io.Writer, format, file string, packages []crates.Package) error {
	if len(packages) == 0 {
		return nil
	}
	return writeResults(w, format, []index.Result{{File: file, Packages: packages}})
}
