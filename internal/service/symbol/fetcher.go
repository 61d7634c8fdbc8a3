package symbol

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/sirupsen/logrus"
)

// FetchExchangeListing issues a single GET for the exchange listing. On any
// failure it logs and returns ok == false; callers skip the exchange.
func (s *Store) FetchExchangeListing(ctx context.Context, exchange entity.ExchangeName) (*entity.SymbolListing, bool) {
	listing, err := s.fetchListing(ctx, exchange)
	if err != nil {
		s.logger.WithField("exchange", exchange).Errorf("failed to fetch symbols: %v", err)
		return nil, false
	}

	s.logger.WithFields(logrus.Fields{
		"exchange": exchange,
		"rows":     len(listing.Rows),
	}).Debug("fetched symbols")

	return listing, true
}

func (s *Store) listingURL(exchange entity.ExchangeName) string {
	return fmt.Sprintf(s.cfg.ListingURLTemplate, url.QueryEscape(string(exchange)))
}

func (s *Store) fetchListing(ctx context.Context, exchange entity.ExchangeName) (*entity.SymbolListing, error) {
	if err := exchange.Validate(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.listingURL(exchange), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %w", entity.ErrTransport, err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w: %w", entity.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("get listing: unexpected status %s: %w", resp.Status, entity.ErrTransport)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read listing body: %w: %w", entity.ErrTransport, err)
	}

	var payload entity.ListingResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode listing: %w: %w", entity.ErrParse, err)
	}

	rows := payload.Data.Rows
	if rows == nil {
		rows = []entity.SymbolRecord{}
	}

	return &entity.SymbolListing{Exchange: exchange, Rows: rows}, nil
}
