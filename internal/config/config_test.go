package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crates "github.com/xiam/guix-crates"
	"github.com/xiam/guix-crates/parser"
)

// isolate keeps the user's own configuration out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".guix-crates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, SourceGit, cfg.Source.Kind)
	assert.Equal(t, []string{"*.scm"}, cfg.Source.Patterns)
	assert.Equal(t, crates.GuixRepoURL, cfg.Source.URL)
	assert.Equal(t, "master", cfg.Source.Branch)
	assert.Equal(t, "gnu/packages", cfg.Source.Subdir)
	assert.Equal(t, 1, cfg.Source.Depth)
	assert.Equal(t, "guix-crates", filepath.Base(cfg.Source.CacheDir))

	assert.Equal(t, 0, cfg.Scan.Workers)
	assert.False(t, cfg.Scan.SkipErrors)
	assert.Equal(t, parser.DefaultMaxDepth, cfg.Scan.MaxDepth)
	assert.Equal(t, 4096, cfg.Scan.CacheSize)

	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	assert.NoError(t, Validate(cfg))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.Source.Kind, cfg.Source.Kind)
	assert.Equal(t, expected.Source.Patterns, cfg.Source.Patterns)
	assert.Equal(t, expected.Source.URL, cfg.Source.URL)
	assert.Equal(t, expected.Source.Branch, cfg.Source.Branch)
	assert.Equal(t, expected.Source.Subdir, cfg.Source.Subdir)
	assert.Equal(t, expected.Source.CacheDir, cfg.Source.CacheDir)
	assert.Equal(t, expected.Source.Depth, cfg.Source.Depth)
	assert.Empty(t, cfg.Source.Ignore)
	assert.Equal(t, expected.Scan, cfg.Scan)
	assert.Equal(t, expected.Log, cfg.Log)
}

func TestLoadFromWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
source:
  kind: dir
  dir: /srv/guix/gnu/packages
  patterns: ["crates-*.scm", "rust*.scm"]
scan:
  workers: 4
  skip_errors: true
store:
  path: /var/lib/guix-crates/runs.db
`)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, SourceDir, cfg.Source.Kind)
	assert.Equal(t, "/srv/guix/gnu/packages", cfg.Source.Dir)
	assert.Equal(t, []string{"crates-*.scm", "rust*.scm"}, cfg.Source.Patterns)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.True(t, cfg.Scan.SkipErrors)
	assert.Equal(t, "/var/lib/guix-crates/runs.db", cfg.Store.Path)

	// untouched keys keep their defaults
	assert.Equal(t, parser.DefaultMaxDepth, cfg.Scan.MaxDepth)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n  format: json\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "source: [unclosed\n")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
source:
  kind: git
scan:
  workers: 4
`)

	t.Setenv("GUIXCRATES_SOURCE_KIND", "dir")
	t.Setenv("GUIXCRATES_SOURCE_DIR", "/tmp/packages")
	t.Setenv("GUIXCRATES_SCAN_WORKERS", "8")
	t.Setenv("GUIXCRATES_LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, SourceDir, cfg.Source.Kind)
	assert.Equal(t, "/tmp/packages", cfg.Source.Dir)
	assert.Equal(t, 8, cfg.Scan.Workers)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "source:\n  kind: svn\n")

	_, err := LoadConfig("")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		Name   string
		Modify func(*Config)
		Err    []error
	}{
		{
			Name:   "default",
			Modify: func(*Config) {},
		},
		{
			Name: "kind is case insensitive",
			Modify: func(c *Config) {
				c.Source.Kind = "DIR"
				c.Source.Dir = "."
			},
		},
		{
			Name:   "unknown kind",
			Modify: func(c *Config) { c.Source.Kind = "hg" },
			Err:    []error{ErrInvalidSource},
		},
		{
			Name:   "dir without a directory",
			Modify: func(c *Config) { c.Source.Kind = SourceDir },
			Err:    []error{ErrInvalidSource},
		},
		{
			Name:   "git without url",
			Modify: func(c *Config) { c.Source.URL = "" },
			Err:    []error{ErrInvalidSource},
		},
		{
			Name:   "no patterns",
			Modify: func(c *Config) { c.Source.Patterns = nil },
			Err:    []error{ErrInvalidSource},
		},
		{
			Name:   "negative depth",
			Modify: func(c *Config) { c.Source.Depth = -1 },
			Err:    []error{ErrInvalidSource},
		},
		{
			Name: "negative scan settings",
			Modify: func(c *Config) {
				c.Scan.Workers = -1
				c.Scan.CacheSize = -1
			},
			Err: []error{ErrInvalidScan},
		},
		{
			Name: "bad log settings",
			Modify: func(c *Config) {
				c.Log.Level = "loud"
				c.Log.Format = "xml"
			},
			Err: []error{ErrInvalidLog},
		},
		{
			Name: "several sections",
			Modify: func(c *Config) {
				c.Source.Kind = "hg"
				c.Scan.MaxDepth = -1
				c.Log.Format = "xml"
			},
			Err: []error{ErrInvalidSource, ErrInvalidScan, ErrInvalidLog},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			cfg := Default()
			tc.Modify(cfg)

			err := Validate(cfg)
			if len(tc.Err) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, expected := range tc.Err {
				assert.ErrorIs(t, err, expected)
			}
		})
	}
}
