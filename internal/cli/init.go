package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/spec-check/internal/config"
)

var forceInit bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default " + config.ConfigName + ".yml",
	Long: `Write a config file with the default settings to the current directory,
or to the path given with --config.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.ConfigName + ".yml"
	}
	if err := config.Write(path, config.Default(), forceInit); err != nil {
		return err
	}
	if !quietFlag {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}
