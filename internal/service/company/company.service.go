package company

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/storage"
	"github.com/sirupsen/logrus"
)

type Config struct {
	URL string
}

// Store scrapes the company table and keeps it at a single fixed location.
type Store struct {
	cfg     Config
	storage storage.Storage
	scraper TableScraper
	logger  *logrus.Logger
}

func NewStore(cfg Config, store storage.Storage, scraper TableScraper, logger *logrus.Logger) *Store {
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = constant.DefaultCompanyTableURL
	}

	return &Store{
		cfg:     cfg,
		storage: store,
		scraper: scraper,
		logger:  logger,
	}
}

// FetchCompanyTable scrapes url, or the configured page when url is blank. Any
// failure is logged and yields an empty table.
func (s *Store) FetchCompanyTable(ctx context.Context, url string) entity.CompanyTable {
	if strings.TrimSpace(url) == "" {
		url = s.cfg.URL
	}
	logger := s.logger.WithField("url", url)

	table, err := s.scraper.Scrape(ctx, url)
	if err != nil {
		logger.Errorf("failed to fetch company table: %v", err)
		return entity.CompanyTable{}
	}
	if table == nil {
		table = entity.CompanyTable{}
	}

	logger.WithField("rows", len(table)).Debug("fetched company table")
	return table
}

// PersistCompanyTable writes table as a JSON array of row objects. A nil table
// is written as an empty array.
func (s *Store) PersistCompanyTable(ctx context.Context, table entity.CompanyTable) {
	path := constant.CompanyTablePath()
	logger := s.logger.WithField("path", path)

	if table == nil {
		table = entity.CompanyTable{}
	}

	data, err := json.MarshalIndent(table, "", constant.JSONIndent)
	if err != nil {
		logger.Errorf("failed to save company table: %v", fmt.Errorf("%w: %w", entity.ErrParse, err))
		return
	}
	if err := s.storage.Write(ctx, path, data); err != nil {
		logger.Errorf("failed to save company table: %v", err)
		return
	}

	logger.WithField("rows", len(table)).Info("saved company table")
}

func (s *Store) LoadCompanyTable(ctx context.Context) (entity.CompanyTable, bool) {
	path := constant.CompanyTablePath()
	logger := s.logger.WithField("path", path)

	data, err := s.storage.Read(ctx, path)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			logger.Warn("company table file not found")
			return nil, false
		}
		logger.Errorf("failed to load company table: %v", err)
		return nil, false
	}

	var table entity.CompanyTable
	if err := json.Unmarshal(data, &table); err != nil {
		logger.Errorf("failed to load company table: %v", fmt.Errorf("%w: %w", entity.ErrParse, err))
		return nil, false
	}
	if table == nil {
		table = entity.CompanyTable{}
	}

	return table, true
}

// FetchAndPersistCompanyTable persists whatever the fetch produced, including an
// empty table after a failed scrape.
func (s *Store) FetchAndPersistCompanyTable(ctx context.Context, url string) entity.CompanyTable {
	table := s.FetchCompanyTable(ctx, url)
	s.PersistCompanyTable(ctx, table)
	return table
}
