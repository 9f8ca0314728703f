package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GUIXCRATES_SOURCE_DIR.
const EnvPrefix = "GUIXCRATES"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	configFile string
	searchDirs []string
}

// NewLoader creates a loader. If configFile is empty, .guix-crates.yaml is
// looked up in the working directory and then in the home directory.
func NewLoader(configFile string) Loader {
	l := &loader{configFile: configFile}
	if configFile == "" {
		l.searchDirs = append(l.searchDirs, ".")
		if home, err := os.UserHomeDir(); err == nil {
			l.searchDirs = append(l.searchDirs, home)
		}
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (GUIXCRATES_*)
// 2. Config file
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(".guix-crates")
		v.SetConfigType("yaml")
		for _, dir := range l.searchDirs {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless it was asked for explicitly
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key, which also makes AutomaticEnv see it.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("source.kind", defaults.Source.Kind)
	v.SetDefault("source.dir", defaults.Source.Dir)
	v.SetDefault("source.patterns", defaults.Source.Patterns)
	v.SetDefault("source.ignore", defaults.Source.Ignore)
	v.SetDefault("source.url", defaults.Source.URL)
	v.SetDefault("source.branch", defaults.Source.Branch)
	v.SetDefault("source.subdir", defaults.Source.Subdir)
	v.SetDefault("source.cache_dir", defaults.Source.CacheDir)
	v.SetDefault("source.depth", defaults.Source.Depth)

	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.skip_errors", defaults.Scan.SkipErrors)
	v.SetDefault("scan.max_depth", defaults.Scan.MaxDepth)
	v.SetDefault("scan.cache_size", defaults.Scan.CacheSize)

	v.SetDefault("store.path", defaults.Store.Path)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
}

// LoadConfig is a convenience function that creates a loader and loads config.
func LoadConfig(configFile string) (*Config, error) {
	return NewLoader(configFile).Load()
}
