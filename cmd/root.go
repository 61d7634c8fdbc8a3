/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"os"

	"github.com/krobus00/symbol-store/internal/bootstrap"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "symbol-store",
	Short: "Fetch, persist and merge stock exchange symbol listings",
	Long: `symbol-store downloads the symbol listing of every configured exchange,
keeps the raw listing and the extracted symbols below the data directory and
merges them into a single sorted, deduplicated symbol file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap.Init(configPath, overrides(cmd))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		bootstrap.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// overrides collects the persistent flags the user actually set; they win over
// the environment and the config file.
func overrides(cmd *cobra.Command) map[string]any {
	values := make(map[string]any)
	if cmd.Flags().Changed("data-dir") {
		values["storage.data_dir"] = dataDir
	}
	if cmd.Flags().Changed("log-level") {
		values["log.global_level"] = logLevel
		values["log.console_level"] = logLevel
		values["log.file_level"] = logLevel
	}

	return values
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ./config.yml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "root directory of the symbol data tree")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level for every destination (debug|info|warning|error)")
}
