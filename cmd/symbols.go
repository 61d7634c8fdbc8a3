/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/symbol-store/internal/bootstrap"
	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [exchange...]",
	Short: "Fetch and persist exchange listings, then merge them",
	Long: `Downloads the listing of every given exchange (all configured exchanges
when none is given), writes the full listing and the symbol lists, then merges
the symbol lists into symbols/all/<output>. A failing exchange is skipped.`,
	Run: bootstrap.StartFetch,
}

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge persisted symbol lists without fetching",
	Run:   bootstrap.StartMerge,
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [exchange]",
	Short: "Print a persisted listing, or the merged symbols when no exchange is given",
	Args:  cobra.MaximumNArgs(1),
	Run:   bootstrap.StartShow,
}

// exchangesCmd represents the exchanges command
var exchangesCmd = &cobra.Command{
	Use:   "exchanges",
	Short: "Print the configured exchanges",
	Args:  cobra.NoArgs,
	Run:   bootstrap.StartListExchanges,
}

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the merged symbols on the symbols jetstream",
	Args:  cobra.NoArgs,
	Run:   bootstrap.StartPublish,
}

func init() {
	rootCmd.AddCommand(fetchCmd, mergeCmd, showCmd, exchangesCmd, publishCmd)

	fetchCmd.Flags().String("output", constant.DefaultMergedFile, "merged output file name")
	fetchCmd.Flags().Bool("publish", false, "publish the merged set on jetstream")

	mergeCmd.Flags().StringSlice("exchanges", nil, "exchanges to merge (default: all configured)")
	mergeCmd.Flags().String("output", constant.DefaultMergedFile, "merged output file name")
	mergeCmd.Flags().Bool("publish", false, "publish the merged set on jetstream")

	showCmd.Flags().String("output", constant.DefaultMergedFile, "merged file to print")

	publishCmd.Flags().String("output", constant.DefaultMergedFile, "merged file to publish")
}
