// Package config provides configuration loading for spec-check.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags
//  2. Environment variables (SPECCHECK_*)
//  3. Config file (.spec-check.yml, or the file given with --config)
//  4. Built-in defaults
package config

import (
	"github.com/mvp-joe/spec-check/internal/checker"
	"github.com/mvp-joe/spec-check/internal/compare"
	"github.com/mvp-joe/spec-check/internal/discovery"
	"github.com/mvp-joe/spec-check/internal/parsers"
)

// Config represents the complete spec-check configuration.
type Config struct {
	SrcDir  string `yaml:"src_dir" mapstructure:"src_dir" validate:"required"`
	SpecDir string `yaml:"spec_dir" mapstructure:"spec_dir" validate:"required"`
	LogFile string `yaml:"log_file" mapstructure:"log_file" validate:"required"`

	CheckPrivate      bool     `yaml:"check_private" mapstructure:"check_private"`
	CheckAttributes   bool     `yaml:"check_attributes" mapstructure:"check_attributes"`
	IgnoredAttributes []string `yaml:"ignored_attributes" mapstructure:"ignored_attributes"`
	AllowMissingSpec  bool     `yaml:"allow_missing_spec" mapstructure:"allow_missing_spec"`

	Workers   int    `yaml:"workers" mapstructure:"workers" validate:"gte=0"` // 0 means GOMAXPROCS
	HistoryDB string `yaml:"history_db" mapstructure:"history_db"`            // empty disables history

	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`
}

// PathsConfig defines which files are checked.
type PathsConfig struct {
	SourceExt        string   `yaml:"source_ext" mapstructure:"source_ext" validate:"required,startswith=."`
	DocExt           string   `yaml:"doc_ext" mapstructure:"doc_ext" validate:"required,startswith=."`
	Ignore           []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns relative to src_dir
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		SrcDir:            "src",
		SpecDir:           "spec",
		LogFile:           "spec-check.log",
		IgnoredAttributes: []string{"doc"},
		Paths: PathsConfig{
			SourceExt: discovery.DefaultSourceExt,
			DocExt:    discovery.DefaultDocExt,
			Ignore:    []string{},
		},
	}
}

// DiscoveryOptions converts the configuration to resolver options.
func (c *Config) DiscoveryOptions() discovery.Options {
	return discovery.Options{
		SourceDir:        c.SrcDir,
		SpecDir:          c.SpecDir,
		SourceExt:        c.Paths.SourceExt,
		DocExt:           c.Paths.DocExt,
		Ignore:           c.Paths.Ignore,
		RespectGitignore: c.Paths.RespectGitignore,
	}
}

// CheckerOptions converts the configuration to checker options.
func (c *Config) CheckerOptions() checker.Options {
	return checker.Options{
		Parse: parsers.Options{CheckPrivate: c.CheckPrivate},
		Compare: compare.Options{
			CheckAttributes:   c.CheckAttributes,
			IgnoredAttributes: c.IgnoredAttributes,
		},
		Workers: c.Workers,
	}
}
