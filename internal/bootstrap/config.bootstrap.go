package bootstrap

import (
	"fmt"

	"github.com/krobus00/symbol-store/internal/config"
	"github.com/krobus00/symbol-store/internal/util"
	"github.com/spf13/cobra"
)

func StartConfigInit(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("path")

	util.ContinueOrFatal(appLogger, config.WriteDefaultConfig(path))
	fmt.Fprintf(cmd.OutOrStdout(), "default config written to %s\n", path)
}
