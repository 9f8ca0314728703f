// Package index extracts the packages of every file a source provides,
// concurrently, caching results by file content.
package index

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	crates "github.com/xiam/guix-crates"
	"github.com/xiam/guix-crates/internal/ctxlog"
	"github.com/xiam/guix-crates/lexer"
	"github.com/xiam/guix-crates/parser"
	"github.com/xiam/guix-crates/source"
)

// Progress receives scan progress. OnFile may be called from several
// goroutines at once.
type Progress interface {
	OnStart(total int)
	OnFile(name string)
	OnFinish()
}

// Options tunes an Indexer.
type Options struct {
	// Workers bounds concurrent parses; zero means GOMAXPROCS.
	Workers int
	// SkipErrors records unparsable files as failures instead of aborting.
	SkipErrors bool
	// MaxDepth is passed to the parser.
	MaxDepth int
	// CacheSize is the number of files whose results are kept; zero
	// disables the cache.
	CacheSize int
	// Progress is optional.
	Progress Progress
}

// Result holds the packages found in one file.
type Result struct {
	File     string           `json:"file"`
	Packages []crates.Package `json:"packages"`
}

// Failure is a file that could not be parsed.
type Failure struct {
	File string
	Err  error
}

func (f Failure) Error() string {
	return f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report summarizes a scan.
type Report struct {
	// Results is in provider order and skips files without packages.
	Results []Result
	// Failures is only filled when SkipErrors is set.
	Failures []Failure
	// Files is the number of files scanned.
	Files int
	// Cached is the number of files served from the cache.
	Cached int
}

// Packages returns the number of packages across all results.
func (r *Report) Packages() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Packages)
	}
	return n
}

// Indexer extracts packages from source files. It is safe for concurrent
// use.
type Indexer struct {
	opts  Options
	cache *lru.Cache[string, []crates.Package]
}

type outcome struct {
	packages []crates.Package
	cached   bool
	err      error
}

// New creates an Indexer.
func New(opts Options) (*Indexer, error) {
	ix := &Indexer{opts: opts}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []crates.Package](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		ix.cache = cache
	}

	return ix, nil
}

// File extracts the packages of a single file. The returned error wraps a
// *parser.Error and names the file.
func (ix *Indexer) File(ctx context.Context, f source.File) ([]crates.Package, error) {
	out := ix.file(ctx, f)
	return out.packages, out.err
}

func (ix *Indexer) file(ctx context.Context, f source.File) outcome {
	if strings.TrimFunc(f.Text, lexer.IsWhitespace) == "" {
		return outcome{}
	}

	if ix.cache != nil && f.ID != "" {
		if packages, ok := ix.cache.Get(f.ID); ok {
			return outcome{packages: slices.Clone(packages), cached: true}
		}
	}

	p := parser.New(nil)
	p.SetOptions(parser.Options{MaxDepth: ix.opts.MaxDepth})

	nodes, err := p.ParseString(f.Text)
	if err != nil {
		return outcome{err: fmt.Errorf("%s: %w", f.Name, err)}
	}

	packages := slices.Collect(crates.Extract(nodes))

	if ix.cache != nil && f.ID != "" {
		// callers own the returned slice
		ix.cache.Add(f.ID, slices.Clone(packages))
	}

	ctxlog.FromContext(ctx).Debug("extracted file", "file", f.Name, "packages", len(packages))

	return outcome{packages: packages}
}

// Scan reads every file of the provider and extracts their packages. With
// SkipErrors unset, the first parse failure aborts the scan.
func (ix *Indexer) Scan(ctx context.Context, provider source.Provider) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	var files []source.File
	for f, err := range provider.Files(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to read files: %w", err)
		}
		files = append(files, f)
	}

	progress := ix.opts.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	progress.OnStart(len(files))

	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers())

	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out := ix.file(gctx, f)
			if out.err != nil && !ix.opts.SkipErrors {
				return out.err
			}
			outcomes[i] = out

			progress.OnFile(f.Name)
			return nil
		})
	}

	err := g.Wait()
	progress.OnFinish()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Results:  []Result{},
		Failures: []Failure{},
		Files:    len(files),
	}
	for i, out := range outcomes {
		if out.cached {
			report.Cached++
		}
		if out.err != nil {
			logger.Warn("skipping file", "file", files[i].Name, "error", out.err)
			report.Failures = append(report.Failures, Failure{File: files[i].Name, Err: out.err})
			continue
		}
		if len(out.packages) == 0 {
			continue
		}
		report.Results = append(report.Results, Result{File: files[i].Name, Packages: out.packages})
	}

	logger.Info("scan complete",
		"files", report.Files,
		"with_packages", len(report.Results),
		"packages", report.Packages(),
		"failures", len(report.Failures),
		"cached", report.Cached,
		"duration", time.Since(start),
	)

	return report, nil
}

func (ix *Indexer) workers() int {
	if ix.opts.Workers > 0 {
		return ix.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

type nopProgress struct{}

func (nopProgress) OnStart(int)   {}
func (nopProgress) OnFile(string) {}
func (nopProgress) OnFinish()     {}
