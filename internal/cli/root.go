package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/spec-check/internal/config"
)

var (
	cfgFile   string
	quietFlag bool
	watchFlag bool
)

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"src_dir":            "src",
	"spec_dir":           "spec",
	"log_file":           "log",
	"check_private":      "check-private",
	"ignored_attributes": "ignore-attr",
	"check_attributes":   "check-attributes",
	"allow_missing_spec": "allow-missing-spec",
	"workers":            "workers",
	"history_db":         "history",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spec-check",
	Short: "Check that Rust sources match the code samples in their spec documents",
	Long: `spec-check verifies that the public API of a Rust code base agrees with a
set of Markdown specification documents.

For every source file under the source directory it looks for a document at
the same relative path under the spec directory (lib.rs -> lib.md), extracts
the structs, enums, traits, trait methods and functions from both, and reports
items missing on either side and signatures that differ.

Results are written to the log file; the exit status is 0 only when every
file passes.

Examples:
  # Check src/ against spec/
  spec-check

  # Custom directories, private items included
  spec-check --src crates/core/src --spec docs/api --check-private

  # Re-check whenever a source or spec file changes
  spec-check --watch
`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

// exitError carries a non-zero exit status without an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.ConfigName+".yml)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	rootCmd.PersistentFlags().String("history", "", "SQLite database recording check runs (disabled when empty)")

	defaults := config.Default()
	flags := rootCmd.Flags()
	flags.StringP("src", "s", defaults.SrcDir, "Source directory")
	flags.StringP("spec", "p", defaults.SpecDir, "Spec directory")
	flags.StringP("log", "l", defaults.LogFile, "Log file (truncated on each run)")
	flags.Bool("check-private", defaults.CheckPrivate, "Also check items without pub")
	flags.StringSliceP("ignore-attr", "i", defaults.IgnoredAttributes, "Attribute names ignored when comparing attributes")
	flags.Bool("check-attributes", defaults.CheckAttributes, "Compare outer attributes of matched items")
	flags.Bool("allow-missing-spec", defaults.AllowMissingSpec, "Exit 0 when files lack a spec document but nothing else fails")
	flags.IntP("workers", "j", defaults.Workers, "Files checked in parallel (0 = number of CPUs)")
	flags.BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and re-check")
}

// loadConfig loads configuration with the command's explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	for key, name := range flagKeys {
		opts = append(opts, config.WithFlag(key, cmd.Flag(name)))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
