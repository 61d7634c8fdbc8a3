package bootstrap

import (
	"context"
	"strings"

	"github.com/krobus00/symbol-store/internal/config"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/infrastructure"
	"github.com/krobus00/symbol-store/internal/service/company"
	"github.com/krobus00/symbol-store/internal/service/symbol"
	"github.com/krobus00/symbol-store/internal/storage"
)

// newStorage opens the data tree below storage.data_dir. With redis_mirror set,
// every write is also copied to redis; the returned cleanup closes that client.
func newStorage(ctx context.Context) (storage.Storage, func() error) {
	local := storage.NewLocal(config.Env.Storage.DataDir)
	if !config.Env.Storage.RedisMirror {
		return local, func() error { return nil }
	}

	client, err := infrastructure.NewRedisClient(ctx, appLogger, config.Env.Redis.CacheDSN)
	if err != nil {
		appLogger.Warnf("redis mirror disabled: %v", err)
		return local, func() error { return nil }
	}

	mirror := storage.NewRedis(client, config.Env.Storage.RedisPrefix)
	return storage.NewTee(appLogger, local, mirror), client.Close
}

func configuredExchanges() []entity.ExchangeName {
	return parseExchanges(config.Env.Exchanges)
}

func parseExchanges(raw []string) []entity.ExchangeName {
	exchanges := make([]entity.ExchangeName, 0, len(raw))
	for _, item := range raw {
		for _, name := range strings.Split(item, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			exchanges = append(exchanges, entity.ExchangeName(name))
		}
	}

	return exchanges
}

func newSymbolStore(store storage.Storage, opts ...symbol.Option) *symbol.Store {
	return symbol.NewStore(symbol.Config{
		Exchanges:          configuredExchanges(),
		ListingURLTemplate: config.Env.Source.ListingURLTemplate,
		UserAgent:          config.Env.Source.UserAgent,
	}, store, infrastructure.NewHTTPClient(config.Env.Source.Timeout), appLogger, opts...)
}

func newCompanyStore(store storage.Storage) *company.Store {
	scraper := company.NewHTMLTableScraper(
		infrastructure.NewHTTPClient(config.Env.Source.Timeout),
		config.Env.Source.UserAgent,
	)

	return company.NewStore(company.Config{URL: config.Env.Source.CompanyTableURL}, store, scraper, appLogger)
}
