package symbol

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/storage"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Exchanges          []entity.ExchangeName
	ListingURLTemplate string
	UserAgent          string
}

// Notifier is told about every merged set that was written successfully.
type Notifier interface {
	NotifyMerged(ctx context.Context, result entity.MergeResult, symbols []string) error
}

// Store fetches per-exchange listings, persists them below symbols/ and merges
// them into a deduplicated set. Every operation absorbs its own failures: they are
// logged and reported to the caller as an absent result.
type Store struct {
	cfg      Config
	storage  storage.Storage
	client   *http.Client
	logger   *logrus.Logger
	notifier Notifier
}

type Option func(*Store)

func WithNotifier(notifier Notifier) Option {
	return func(s *Store) {
		s.notifier = notifier
	}
}

func NewStore(cfg Config, store storage.Storage, client *http.Client, logger *logrus.Logger, opts ...Option) *Store {
	if len(cfg.Exchanges) == 0 {
		cfg.Exchanges = entity.DefaultExchanges()
	}
	if strings.TrimSpace(cfg.ListingURLTemplate) == "" {
		cfg.ListingURLTemplate = constant.DefaultListingURLTemplate
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = constant.DefaultUserAgent
	}
	if client == nil {
		client = http.DefaultClient
	}

	s := &Store{
		cfg:     cfg,
		storage: store,
		client:  client,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListExchanges returns a copy of the configured exchange list.
func (s *Store) ListExchanges() []entity.ExchangeName {
	exchanges := make([]entity.ExchangeName, len(s.cfg.Exchanges))
	copy(exchanges, s.cfg.Exchanges)
	return exchanges
}

// FetchAndPersistAll runs fetch and persist for every known exchange, then merges
// all of them into the canonical merged file. One failing exchange never stops
// the others.
func (s *Store) FetchAndPersistAll(ctx context.Context) entity.MergeResult {
	return s.FetchAndPersist(ctx, s.ListExchanges(), constant.DefaultMergedFile)
}

// FetchAndPersist refreshes only the given exchanges. A custom outputName merges
// just those exchanges; the canonical merged file always spans every known
// exchange plus the given ones, so a partial refresh never shrinks it.
func (s *Store) FetchAndPersist(ctx context.Context, exchanges []entity.ExchangeName, outputName string) entity.MergeResult {
	for _, exchange := range exchanges {
		listing, ok := s.FetchExchangeListing(ctx, exchange)
		if !ok {
			continue
		}

		s.PersistExchangeListing(ctx, listing, exchange)
	}

	return s.MergeAndPersist(ctx, s.mergeSet(exchanges, outputName), outputName)
}

func (s *Store) mergeSet(exchanges []entity.ExchangeName, outputName string) []entity.ExchangeName {
	if name := strings.TrimSpace(outputName); name != "" && name != constant.DefaultMergedFile {
		return exchanges
	}

	set := s.ListExchanges()
	for _, exchange := range exchanges {
		if !slices.Contains(set, exchange) {
			set = append(set, exchange)
		}
	}

	return set
}
