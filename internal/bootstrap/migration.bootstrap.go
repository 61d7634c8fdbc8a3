package bootstrap

import (
	"database/sql"
	"errors"
	"path"

	"github.com/guregu/null/v6"
	"github.com/krobus00/symbol-store/internal/config"
	"github.com/krobus00/symbol-store/internal/util"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationRoot = "migration/postgresql"

func StartMigrate(cmd *cobra.Command, args []string) {
	databaseName, _ := cmd.Flags().GetString("databaseName")
	actionType, _ := cmd.Flags().GetString("action")
	migrationName, _ := cmd.Flags().GetString("name")
	version := null.NewInt(0, false)
	if cmd.Flags().Changed("version") {
		raw, _ := cmd.Flags().GetInt64("version")
		version = null.IntFrom(raw)
	}

	migrationDir := path.Join(migrationRoot, databaseName)

	db, err := sql.Open("postgres", config.Env.Database[databaseName].DSN)
	util.ContinueOrFatal(appLogger, err)
	defer db.Close()

	goose.SetLogger(appLogger)
	err = goose.SetDialect("postgres")
	util.ContinueOrFatal(appLogger, err)

	switch actionType {
	case "create":
		if migrationName == "" {
			err = errors.New("migration name is required")
			break
		}
		err = goose.Create(db, migrationDir, migrationName, "sql")
	case "up":
		err = goose.Up(db, migrationDir, goose.WithAllowMissing())
	case "up-by-one":
		err = goose.UpByOne(db, migrationDir, goose.WithAllowMissing())
	case "up-to":
		if !version.Valid {
			err = errors.New("version is required")
			break
		}
		err = goose.UpTo(db, migrationDir, version.Int64, goose.WithAllowMissing())
	case "down":
		err = goose.Down(db, migrationDir, goose.WithAllowMissing())
	case "down-to":
		if !version.Valid {
			err = errors.New("version is required")
			break
		}
		err = goose.DownTo(db, migrationDir, version.Int64, goose.WithAllowMissing())
	case "status":
		err = goose.Status(db, migrationDir)
	case "reset":
		err = goose.Reset(db, migrationDir, goose.WithAllowMissing())
		if err != nil {
			break
		}
		err = goose.Up(db, migrationDir, goose.WithAllowMissing())
	default:
		err = errors.New("invalid command")
	}

	util.ContinueOrFatal(appLogger, err)
}
