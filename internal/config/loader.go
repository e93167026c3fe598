package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigName is the config file searched for in the root directory,
// without extension (.spec-check.yml or .spec-check.yaml).
const ConfigName = ".spec-check"

// EnvPrefix prefixes environment variable overrides, e.g. SPECCHECK_SRC_DIR.
const EnvPrefix = "SPECCHECK"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from defaults, file, environment and flags.
	Load() (*Config, error)
}

// LoaderOption customizes a Loader.
type LoaderOption func(*loader)

// WithConfigFile reads path instead of searching for .spec-check.yml.
// A missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithFlag binds a command-line flag to a config key. The flag only
// overrides lower layers when it was set explicitly.
func WithFlag(key string, flag *pflag.Flag) LoaderOption {
	return func(l *loader) {
		if flag != nil {
			l.flags[key] = flag
		}
	}
}

type loader struct {
	rootDir    string
	configFile string
	flags      map[string]*pflag.Flag
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir, flags: make(map[string]*pflag.Flag)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Command-line flags bound with WithFlag
// 2. Environment variables (SPECCHECK_*)
// 3. Config file
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	// Environment overrides, e.g. SPECCHECK_PATHS_SOURCE_EXT
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		v.BindEnv(key)
	}

	setDefaults(v)

	for key, flag := range l.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
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

var keys = []string{
	"src_dir",
	"spec_dir",
	"log_file",
	"check_private",
	"check_attributes",
	"ignored_attributes",
	"allow_missing_spec",
	"workers",
	"history_db",
	"paths.source_ext",
	"paths.doc_ext",
	"paths.ignore",
	"paths.respect_gitignore",
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("src_dir", defaults.SrcDir)
	v.SetDefault("spec_dir", defaults.SpecDir)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("check_private", defaults.CheckPrivate)
	v.SetDefault("check_attributes", defaults.CheckAttributes)
	v.SetDefault("ignored_attributes", defaults.IgnoredAttributes)
	v.SetDefault("allow_missing_spec", defaults.AllowMissingSpec)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("history_db", defaults.HistoryDB)

	v.SetDefault("paths.source_ext", defaults.Paths.SourceExt)
	v.SetDefault("paths.doc_ext", defaults.Paths.DocExt)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
	v.SetDefault("paths.respect_gitignore", defaults.Paths.RespectGitignore)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig(opts ...LoaderOption) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, opts...).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string, opts ...LoaderOption) (*Config, error) {
	return NewLoader(filepath.Clean(rootDir), opts...).Load()
}
