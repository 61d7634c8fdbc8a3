package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/symbol-store/internal/entity"
)

const upsertBatchSize = 500

var exchangeSymbolColumns = []string{
	"exchange",
	"symbol",
	"name",
	"last_sale",
	"net_change",
	"pct_change",
	"market_cap",
	"volume",
	"country",
	"ipo_year",
	"sector",
	"industry",
	"url",
	"created_at",
	"updated_at",
}

type ExchangeSymbolRepository struct {
	db *sqlx.DB
}

func NewExchangeSymbolRepository(db *sqlx.DB) *ExchangeSymbolRepository {
	return &ExchangeSymbolRepository{db: db}
}

// Upsert inserts symbols in batches, refreshing every attribute of rows that
// already exist for the same (exchange, symbol). created_at is kept.
func (r *ExchangeSymbolRepository) Upsert(ctx context.Context, symbols []entity.ExchangeSymbol) (int64, error) {
	var affected int64
	for start := 0; start < len(symbols); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(symbols))

		query, args, err := upsertQuery(symbols[start:end]).ToSql()
		if err != nil {
			return affected, err
		}

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return affected, err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return affected, err
		}
		affected += n
	}

	return affected, nil
}

// GetByExchange returns the synced rows of exchange ordered by symbol.
func (r *ExchangeSymbolRepository) GetByExchange(ctx context.Context, exchange entity.ExchangeName) ([]entity.ExchangeSymbol, error) {
	query, args, err := selectByExchangeQuery(exchange).ToSql()
	if err != nil {
		return nil, err
	}

	var symbols []entity.ExchangeSymbol
	err = r.db.SelectContext(ctx, &symbols, query, args...)
	if err != nil {
		return nil, err
	}

	return symbols, nil
}

func selectByExchangeQuery(exchange entity.ExchangeName) sq.SelectBuilder {
	return sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(exchangeSymbolColumns...).
		From(entity.ExchangeSymbol{}.TableName()).
		Where(sq.Eq{"exchange": string(exchange)}).
		OrderBy("symbol asc")
}

func upsertQuery(symbols []entity.ExchangeSymbol) sq.InsertBuilder {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(entity.ExchangeSymbol{}.TableName()).
		Columns(exchangeSymbolColumns...)

	for _, s := range symbols {
		queryBuilder = queryBuilder.Values(
			s.Exchange,
			s.Symbol,
			s.Name,
			s.LastSale,
			s.NetChange,
			s.PctChange,
			s.MarketCap,
			s.Volume,
			s.Country,
			s.IPOYear,
			s.Sector,
			s.Industry,
			s.URL,
			s.CreatedAt,
			s.UpdatedAt,
		)
	}

	return queryBuilder.Suffix(`ON CONFLICT (exchange, symbol) DO UPDATE SET
		name = EXCLUDED.name,
		last_sale = EXCLUDED.last_sale,
		net_change = EXCLUDED.net_change,
		pct_change = EXCLUDED.pct_change,
		market_cap = EXCLUDED.market_cap,
		volume = EXCLUDED.volume,
		country = EXCLUDED.country,
		ipo_year = EXCLUDED.ipo_year,
		sector = EXCLUDED.sector,
		industry = EXCLUDED.industry,
		url = EXCLUDED.url,
		updated_at = EXCLUDED.updated_at`)
}
