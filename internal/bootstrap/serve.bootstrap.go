package bootstrap

import (
	"context"
	"strings"

	"github.com/krobus00/symbol-store/internal/config"
	symbolhttp "github.com/krobus00/symbol-store/internal/handler/symbol/http"
	"github.com/krobus00/symbol-store/internal/infrastructure"
	"github.com/krobus00/symbol-store/internal/repository"
	"github.com/krobus00/symbol-store/internal/util"
	"github.com/spf13/cobra"
)

func StartServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	databaseName, _ := cmd.Flags().GetString("databaseName")

	store, closeStorage := newStorage(ctx)

	var opts []symbolhttp.Option
	closeDB := func() error { return nil }
	if dbCfg := config.Env.Database[databaseName]; strings.TrimSpace(dbCfg.DSN) != "" {
		db, err := infrastructure.NewPostgresConnection(ctx, appLogger, dbCfg)
		util.ContinueOrFatal(appLogger, err)
		closeDB = db.Close
		opts = append(opts, symbolhttp.WithExchangeSymbolReader(repository.NewExchangeSymbolRepository(db), appLogger))
	}

	handler := symbolhttp.NewSymbolHTTPHandler(newSymbolStore(store), newCompanyStore(store), opts...)
	mux := infrastructure.NewHTTPMux()
	handler.Register(mux)

	httpServer := infrastructure.NewHTTPServer(config.Env.HTTP, appLogger, mux)

	go func() {
		if err := httpServer.Start(); err != nil {
			appLogger.Fatalf("http server stopped: %v", err)
		}
	}()

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"http server": func(_ context.Context) error {
			cancel()
			shutdownCtx, done := context.WithTimeout(context.Background(), config.Env.GracefulShutdownTimeout)
			defer done()
			return httpServer.Shutdown(shutdownCtx)
		},
		"storage": func(ctx context.Context) error {
			return closeStorage()
		},
		"database": func(ctx context.Context) error {
			return closeDB()
		},
	})

	<-wait
}
