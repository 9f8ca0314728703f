package cli

import (
	"context"
	"fmt"

	"github.com/xiam/guix-crates/internal/config"
	"github.com/xiam/guix-crates/source"
)

// scanSource is the provider selected by the configuration, along with what
// gets recorded about it.
type scanSource struct {
	provider source.Provider
	dir      *source.Dir
	name     string
	revision string
}

func openSource(ctx context.Context, sc config.SourceConfig) (*scanSource, error) {
	switch sc.Kind {
	case config.SourceDir:
		d, err := source.NewDir(sc.Dir, sc.Patterns, sc.Ignore)
		if err != nil {
			return nil, err
		}
		return &scanSource{provider: d, dir: d, name: d.Root()}, nil

	case config.SourceGit:
		g, err := openGit(ctx, sc)
		if err != nil {
			return nil, err
		}
		rev, err := g.Revision(ctx)
		if err != nil {
			return nil, err
		}
		return &scanSource{provider: g, name: sc.URL, revision: rev}, nil
	}

	return nil, fmt.Errorf("unknown source kind %q", sc.Kind)
}

func openGit(ctx context.Context, sc config.SourceConfig) (*source.Git, error) {
	return source.OpenGit(ctx, sc.CacheDir, source.GitOptions{
		URL:    sc.URL,
		Branch: sc.Branch,
		Subdir: sc.Subdir,
		Depth:  sc.Depth,
	})
}
