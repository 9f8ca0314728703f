package config

import (
	"os"
	"path/filepath"

	crates "github.com/xiam/guix-crates"
	"github.com/xiam/guix-crates/parser"
	"github.com/xiam/guix-crates/source"
)

// Source kinds
const (
	SourceGit = "git"
	SourceDir = "dir"
)

// Config represents the complete guix-crates configuration.
// It can be loaded from .guix-crates.yaml with environment variable overrides.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects where package files are read from.
type SourceConfig struct {
	Kind     string   `yaml:"kind" mapstructure:"kind"`           // "git" or "dir"
	Dir      string   `yaml:"dir" mapstructure:"dir"`             // directory holding .scm files (dir)
	Patterns []string `yaml:"patterns" mapstructure:"patterns"`   // glob patterns relative to dir
	Ignore   []string `yaml:"ignore" mapstructure:"ignore"`       // glob patterns to skip
	URL      string   `yaml:"url" mapstructure:"url"`             // repository URL (git)
	Branch   string   `yaml:"branch" mapstructure:"branch"`       // branch to read (git)
	Subdir   string   `yaml:"subdir" mapstructure:"subdir"`       // tree holding the .scm files (git)
	CacheDir string   `yaml:"cache_dir" mapstructure:"cache_dir"` // where the clone lives (git)
	Depth    int      `yaml:"depth" mapstructure:"depth"`         // clone depth, 0 for full history (git)
}

// ScanConfig tunes the indexer.
type ScanConfig struct {
	Workers    int  `yaml:"workers" mapstructure:"workers"`         // 0 means GOMAXPROCS
	SkipErrors bool `yaml:"skip_errors" mapstructure:"skip_errors"` // log unparsable files instead of failing
	MaxDepth   int  `yaml:"max_depth" mapstructure:"max_depth"`     // parser nesting limit
	CacheSize  int  `yaml:"cache_size" mapstructure:"cache_size"`   // files kept in the result cache
}

// StoreConfig defines where scan runs are persisted.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite database; empty disables persistence
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:     SourceGit,
			Patterns: []string{source.DefaultPattern},
			Ignore:   []string{},
			URL:      crates.GuixRepoURL,
			Branch:   source.DefaultBranch,
			Subdir:   source.DefaultSubdir,
			CacheDir: defaultCacheDir(),
			Depth:    1,
		},
		Scan: ScanConfig{
			Workers:    0,
			SkipErrors: false,
			MaxDepth:   parser.DefaultMaxDepth,
			CacheSize:  4096,
		},
		Store: StoreConfig{
			Path: "",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "guix-crates")
}
