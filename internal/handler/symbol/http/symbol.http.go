package http

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/service/company"
	"github.com/krobus00/symbol-store/internal/service/symbol"
	"github.com/sirupsen/logrus"
)

type ExchangesResponse struct {
	Exchanges []entity.ExchangeName `json:"exchanges"`
}

type MergedSymbolsResponse struct {
	Output  string   `json:"output"`
	Count   int      `json:"count"`
	Symbols []string `json:"symbols"`
}

type ExchangeListingResponse struct {
	Exchange entity.ExchangeName   `json:"exchange"`
	Count    int                   `json:"count"`
	Rows     []entity.SymbolRecord `json:"rows"`
}

type ExchangeSymbolsResponse struct {
	Exchange entity.ExchangeName     `json:"exchange"`
	Count    int                     `json:"count"`
	Symbols  []entity.ExchangeSymbol `json:"symbols"`
}

type CompaniesResponse struct {
	Count int                 `json:"count"`
	Rows  entity.CompanyTable `json:"rows"`
}

// ExchangeSymbolReader reads the typed rows written by sync-db.
type ExchangeSymbolReader interface {
	GetByExchange(ctx context.Context, exchange entity.ExchangeName) ([]entity.ExchangeSymbol, error)
}

// Handler serves the persisted data tree read-only. It never triggers a fetch.
type Handler struct {
	symbolStore  *symbol.Store
	companyStore *company.Store
	symbolReader ExchangeSymbolReader
	logger       *logrus.Logger
}

type Option func(*Handler)

// WithExchangeSymbolReader exposes the synced database rows under
// /symbols/{exchange}/records.
func WithExchangeSymbolReader(reader ExchangeSymbolReader, logger *logrus.Logger) Option {
	return func(h *Handler) {
		h.symbolReader = reader
		h.logger = logger
	}
}

func NewSymbolHTTPHandler(symbolStore *symbol.Store, companyStore *company.Store, opts ...Option) *Handler {
	h := &Handler{symbolStore: symbolStore, companyStore: companyStore}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/exchanges", h.ListExchanges)
	mux.HandleFunc("/symbols", h.GetMergedSymbols)
	mux.HandleFunc("/symbols/{exchange}", h.GetExchangeListing)
	mux.HandleFunc("/companies", h.GetCompanies)
	if h.symbolReader != nil {
		mux.HandleFunc("/symbols/{exchange}/records", h.GetExchangeSymbols)
	}
}

func (h *Handler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, ExchangesResponse{Exchanges: h.symbolStore.ListExchanges()})
}

func (h *Handler) GetMergedSymbols(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	output := strings.TrimSpace(r.URL.Query().Get("output"))
	if strings.ContainsAny(output, `/\`) || output == "." || output == ".." {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid output name"})
		return
	}

	symbols, ok := h.symbolStore.LoadMergedSymbolsFrom(r.Context(), output)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "merged symbols not found"})
		return
	}

	if output == "" {
		output = constant.DefaultMergedFile
	}
	writeJSON(w, http.StatusOK, MergedSymbolsResponse{
		Output:  output,
		Count:   len(symbols),
		Symbols: symbols,
	})
}

func (h *Handler) GetExchangeListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	exchange, ok := h.knownExchange(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "exchange not found"})
		return
	}

	rows, ok := h.symbolStore.LoadExchangeListing(r.Context(), exchange)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "listing not found"})
		return
	}

	writeJSON(w, http.StatusOK, ExchangeListingResponse{
		Exchange: exchange,
		Count:    len(rows),
		Rows:     rows,
	})
}

func (h *Handler) GetExchangeSymbols(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	exchange, ok := h.knownExchange(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "exchange not found"})
		return
	}

	symbols, err := h.symbolReader.GetByExchange(r.Context(), exchange)
	if err != nil {
		if h.logger != nil {
			h.logger.WithField("exchange", exchange).Errorf("failed to read synced symbols: %v", err)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to read synced symbols"})
		return
	}
	if symbols == nil {
		symbols = []entity.ExchangeSymbol{}
	}

	writeJSON(w, http.StatusOK, ExchangeSymbolsResponse{
		Exchange: exchange,
		Count:    len(symbols),
		Symbols:  symbols,
	})
}

func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	table, ok := h.companyStore.LoadCompanyTable(r.Context())
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "company table not found"})
		return
	}

	writeJSON(w, http.StatusOK, CompaniesResponse{Count: len(table), Rows: table})
}

func (h *Handler) knownExchange(r *http.Request) (entity.ExchangeName, bool) {
	exchange := entity.ExchangeName(strings.ToLower(strings.TrimSpace(r.PathValue("exchange"))))
	return exchange, slices.Contains(h.symbolStore.ListExchanges(), exchange)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
