package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Dir reads package modules from a local directory. Patterns are matched
// against slash-separated paths relative to the root.
type Dir struct {
	root     string
	patterns []compiledPattern
	ignore   []compiledPattern
}

var errStopWalk = errors.New("stop walk")

// NewDir creates a directory provider. With no patterns, DefaultPattern is
// used. The root must exist; a symlinked root is resolved here since WalkDir
// does not follow it.
func NewDir(root string, patterns, ignore []string) (*Dir, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root: %w", err)
	}

	d := &Dir{root: resolved}

	if d.patterns, err = compilePatterns(patterns); err != nil {
		return nil, err
	}
	if d.ignore, err = compilePatterns(ignore); err != nil {
		return nil, err
	}

	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Root returns the scanned directory
func (d *Dir) Root() string {
	return d.root
}

// Match reports whether the relative path rel is a module of this provider.
func (d *Dir) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if _, ok := moduleName(rel); !ok {
		return false
	}
	if matchesAny(rel, d.ignore) {
		return false
	}
	return matchesAny(rel, d.patterns)
}

func matchesAny(rel string, patterns []compiledPattern) bool {
	for _, p := range patterns {
		if p.glob.Match(rel) {
			return true
		}
	}
	return false
}

// ReadFile reads one module given its path relative to the root.
func (d *Dir) ReadFile(rel string) (File, error) {
	data, err := os.ReadFile(filepath.Join(d.root, rel))
	if err != nil {
		return File{}, err
	}
	name, _ := moduleName(filepath.ToSlash(rel))
	return newFile(name, data), nil
}

// Files walks the directory in lexical order.
func (d *Dir) Files(ctx context.Context) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			rel, err := filepath.Rel(d.root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if entry.IsDir() {
				if rel != "." && (matchesAny(rel, d.ignore) || matchesAny(rel+"/**", d.ignore)) {
					return filepath.SkipDir
				}
				return nil
			}

			if !entry.Type().IsRegular() || !d.Match(rel) {
				return nil
			}

			file, err := d.ReadFile(rel)
			if err != nil {
				return err
			}
			if !yield(file, nil) {
				return errStopWalk
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			yield(File{}, err)
		}
	}
}
