package symbol

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/sirupsen/logrus"
)

// PersistExchangeListing writes the full listing and the extracted symbol list
// (JSON and one symbol per line) for exchange. Empty listings are written as
// well. Write failures are logged only.
func (s *Store) PersistExchangeListing(ctx context.Context, listing *entity.SymbolListing, exchange entity.ExchangeName) {
	logger := s.logger.WithField("exchange", exchange)

	if err := s.persistListing(ctx, logger, listing, exchange); err != nil {
		logger.Errorf("failed to save symbols: %v", err)
	}
}

func (s *Store) persistListing(ctx context.Context, logger *logrus.Entry, listing *entity.SymbolListing, exchange entity.ExchangeName) error {
	if err := exchange.Validate(); err != nil {
		return err
	}
	if listing == nil {
		listing = &entity.SymbolListing{Exchange: exchange}
	}

	rows := listing.Rows
	if rows == nil {
		rows = []entity.SymbolRecord{}
	}

	full, err := json.MarshalIndent(rows, "", constant.JSONIndent)
	if err != nil {
		return fmt.Errorf("encode full listing: %w: %w", entity.ErrParse, err)
	}
	if err := s.storage.Write(ctx, constant.FullSymbolsPath(string(exchange)), full); err != nil {
		return err
	}

	symbols, skipped := listing.Symbols()
	if len(skipped) > 0 {
		logger.WithField("rows", skipped).Warn("rows without a usable symbol were left out of the symbol list")
	}

	list, err := json.MarshalIndent(symbols, "", constant.JSONIndent)
	if err != nil {
		return fmt.Errorf("encode symbol list: %w: %w", entity.ErrParse, err)
	}
	if err := s.storage.Write(ctx, constant.SymbolsJSONPath(string(exchange)), list); err != nil {
		return err
	}
	if err := s.storage.Write(ctx, constant.SymbolsTextPath(string(exchange)), formatLines(symbols)); err != nil {
		return err
	}

	if len(symbols) == 0 {
		logger.Warnf("no symbols found in %s", constant.ExchangeDir(string(exchange)))
		return nil
	}

	logger.WithField("symbols", len(symbols)).Infof("saved symbols in %s", constant.ExchangeDir(string(exchange)))
	return nil
}

// LoadExchangeListing reads the persisted full listing of exchange. A missing
// file or a malformed one yields ok == false.
func (s *Store) LoadExchangeListing(ctx context.Context, exchange entity.ExchangeName) ([]entity.SymbolRecord, bool) {
	logger := s.logger.WithField("exchange", exchange)

	rows, err := s.loadListing(ctx, exchange)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			logger.Warnf("data file for %s not found", exchange)
			return nil, false
		}
		logger.Errorf("failed to load symbols: %v", err)
		return nil, false
	}

	return rows, true
}

func (s *Store) loadListing(ctx context.Context, exchange entity.ExchangeName) ([]entity.SymbolRecord, error) {
	if err := exchange.Validate(); err != nil {
		return nil, err
	}

	path := constant.FullSymbolsPath(string(exchange))
	data, err := s.storage.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []entity.SymbolRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", path, entity.ErrParse, err)
	}
	if rows == nil {
		rows = []entity.SymbolRecord{}
	}

	return rows, nil
}

// formatLines renders one symbol per line with a trailing newline. An empty
// list renders as a single empty line.
func formatLines(symbols []string) []byte {
	return []byte(strings.Join(symbols, "\n") + "\n")
}

// parseLines is the inverse of formatLines. Symbols are kept as written; only a
// CRLF terminator is stripped and blank lines are dropped.
func parseLines(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	symbols := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		symbols = append(symbols, line)
	}

	return symbols
}
