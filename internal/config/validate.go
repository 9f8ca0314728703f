package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xiam/guix-crates/internal/ctxlog"
)

var (
	// ErrInvalidSource indicates an unsupported or incomplete source
	ErrInvalidSource = errors.New("invalid source")

	// ErrInvalidScan indicates invalid indexer settings
	ErrInvalidScan = errors.New("invalid scan settings")

	// ErrInvalidLog indicates an unknown log level or format
	ErrInvalidLog = errors.New("invalid log settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateSource(&cfg.Source)...)
	errs = append(errs, validateScan(&cfg.Scan)...)
	errs = append(errs, validateLog(&cfg.Log)...)

	return errors.Join(errs...)
}

func validateSource(cfg *SourceConfig) []error {
	var errs []error

	cfg.Kind = strings.ToLower(cfg.Kind)
	switch cfg.Kind {
	case SourceGit:
		if cfg.URL == "" {
			errs = append(errs, fmt.Errorf("%w: git source needs a url", ErrInvalidSource))
		}
		if cfg.Branch == "" {
			errs = append(errs, fmt.Errorf("%w: git source needs a branch", ErrInvalidSource))
		}
		if cfg.CacheDir == "" {
			errs = append(errs, fmt.Errorf("%w: git source needs a cache_dir", ErrInvalidSource))
		}
		if cfg.Depth < 0 {
			errs = append(errs, fmt.Errorf("%w: depth must be >= 0, got %d", ErrInvalidSource, cfg.Depth))
		}
	case SourceDir:
		if cfg.Dir == "" {
			errs = append(errs, fmt.Errorf("%w: dir source needs a dir", ErrInvalidSource))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: kind must be '%s' or '%s', got '%s'", ErrInvalidSource, SourceGit, SourceDir, cfg.Kind))
	}

	if len(cfg.Patterns) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one pattern is required", ErrInvalidSource))
	}

	return errs
}

func validateScan(cfg *ScanConfig) []error {
	var errs []error

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidScan, cfg.Workers))
	}
	if cfg.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: max_depth must be >= 0, got %d", ErrInvalidScan, cfg.MaxDepth))
	}
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be >= 0, got %d", ErrInvalidScan, cfg.CacheSize))
	}

	return errs
}

func validateLog(cfg *LogConfig) []error {
	var errs []error

	if _, err := ctxlog.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLog, err))
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: format must be 'text' or 'json', got '%s'", ErrInvalidLog, cfg.Format))
	}

	return errs
}
