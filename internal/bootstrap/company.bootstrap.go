package bootstrap

import (
	"fmt"

	"github.com/krobus00/symbol-store/internal/util"
	"github.com/spf13/cobra"
)

func StartCompaniesFetch(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	url, _ := cmd.Flags().GetString("url")

	store, closeStorage := newStorage(ctx)
	defer closeStorage()

	table := newCompanyStore(store).FetchAndPersistCompanyTable(ctx, url)
	if table.Empty() {
		appLogger.Warn("company table is empty")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d companies saved\n", len(table))
}

func StartCompaniesShow(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	store, closeStorage := newStorage(ctx)
	defer closeStorage()

	table, ok := newCompanyStore(store).LoadCompanyTable(ctx)
	if !ok {
		util.ContinueOrFatal(appLogger, errNothingLoaded)
	}

	util.ContinueOrFatal(appLogger, printJSON(cmd.OutOrStdout(), table))
}
