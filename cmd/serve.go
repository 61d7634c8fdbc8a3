/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/symbol-store/internal/bootstrap"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the persisted data tree over http",
	Long: `Starts a read-only http server exposing the configured exchanges, the
persisted listings, the merged symbols and the company table. When the
database has a dsn, rows written by sync-db are served as well.`,
	Args: cobra.NoArgs,
	Run:  bootstrap.StartServe,
}

// syncDBCmd represents the sync-db command
var syncDBCmd = &cobra.Command{
	Use:   "sync-db [exchange...]",
	Short: "Upsert persisted listings into postgres",
	Run:   bootstrap.StartSyncDB,
}

func init() {
	rootCmd.AddCommand(serveCmd, syncDBCmd)
	serveCmd.Flags().String("databaseName", "symbols", "database name")
	syncDBCmd.Flags().String("databaseName", "symbols", "database name")
}
