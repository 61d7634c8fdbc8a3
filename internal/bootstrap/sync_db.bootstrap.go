package bootstrap

import (
	"context"
	"time"

	"github.com/krobus00/symbol-store/internal/config"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/infrastructure"
	"github.com/krobus00/symbol-store/internal/repository"
	"github.com/krobus00/symbol-store/internal/service/symbol"
	"github.com/krobus00/symbol-store/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// StartSyncDB upserts the persisted listings of every configured exchange into
// postgres. Exchanges without a listing on disk are skipped.
func StartSyncDB(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	databaseName, _ := cmd.Flags().GetString("databaseName")

	db, err := infrastructure.NewPostgresConnection(ctx, appLogger, config.Env.Database[databaseName])
	util.ContinueOrFatal(appLogger, err)
	defer db.Close()

	store, closeStorage := newStorage(ctx)
	defer closeStorage()

	symbolStore := newSymbolStore(store)
	repo := repository.NewExchangeSymbolRepository(db)

	exchanges := parseExchanges(args)
	if len(exchanges) == 0 {
		exchanges = symbolStore.ListExchanges()
	}

	now := time.Now().UTC()
	for _, exchange := range exchanges {
		syncExchange(ctx, symbolStore, repo, exchange, now)
	}
}

func syncExchange(ctx context.Context, symbolStore *symbol.Store, repo *repository.ExchangeSymbolRepository, exchange entity.ExchangeName, now time.Time) {
	logger := appLogger.WithField("exchange", exchange)

	rows, ok := symbolStore.LoadExchangeListing(ctx, exchange)
	if !ok {
		return
	}

	symbols := make([]entity.ExchangeSymbol, 0, len(rows))
	for idx, row := range rows {
		s, err := entity.NewExchangeSymbol(exchange, row, now)
		if err != nil {
			logger.WithField("row", idx).Debugf("skip row: %v", err)
			continue
		}
		symbols = append(symbols, s)
	}

	affected, err := repo.Upsert(ctx, symbols)
	if err != nil {
		logger.Errorf("failed to sync symbols: %v", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"symbols":  len(symbols),
		"affected": affected,
	}).Info("synced symbols to database")
}
