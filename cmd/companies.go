/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/symbol-store/internal/bootstrap"
	"github.com/spf13/cobra"
)

// companiesCmd represents the companies command
var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Scrape and inspect the company table",
}

var companiesFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Scrape the first table of the company page and persist it",
	Args:  cobra.NoArgs,
	Run:   bootstrap.StartCompaniesFetch,
}

var companiesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted company table",
	Args:  cobra.NoArgs,
	Run:   bootstrap.StartCompaniesShow,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
	companiesCmd.AddCommand(companiesFetchCmd, companiesShowCmd)

	companiesFetchCmd.Flags().String("url", "", "page to scrape (default: source.company_table_url)")
}
