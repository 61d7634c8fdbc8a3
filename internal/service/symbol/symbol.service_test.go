package symbol

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/logger"
	"github.com/krobus00/symbol-store/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingTemplatePath = "/api/screener/stocks?tableonly=true&limit=25&offset=0&exchange=%s&download=true"

func listingPayload(symbols ...string) string {
	rows := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		rows = append(rows, fmt.Sprintf(`{"symbol":%q,"name":"%s Inc.","lastsale":"$1.00","volume":"100"}`, symbol, symbol))
	}

	return fmt.Sprintf(`{"data":{"headers":{},"rows":[%s]},"message":null,"status":{"rCode":200}}`, strings.Join(rows, ","))
}

// newListingServer serves listings by exchange; exchanges missing from listings
// answer with 500.
func newListingServer(t *testing.T, listings map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := listings[r.URL.Query().Get("exchange")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	return server
}

func newTestStore(t *testing.T, server *httptest.Server, mem *storage.Memory, opts ...Option) *Store {
	t.Helper()

	cfg := Config{
		Exchanges: entity.DefaultExchanges(),
		UserAgent: "symbol-store-test",
	}

	client := http.DefaultClient
	if server != nil {
		cfg.ListingURLTemplate = server.URL + listingTemplatePath
		client = server.Client()
	}

	return NewStore(cfg, mem, client, logger.Discard(), opts...)
}

func readString(t *testing.T, mem *storage.Memory, path string) string {
	t.Helper()

	data, err := mem.Read(context.Background(), path)
	require.NoError(t, err)
	return string(data)
}

func TestStore_FetchExchangeListing_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nasdaq", r.URL.Query().Get("exchange"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		assert.Equal(t, "symbol-store-test", r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(listingPayload("AAPL", "MSFT")))
	}))
	defer server.Close()

	store := newTestStore(t, server, storage.NewMemory())

	listing, ok := store.FetchExchangeListing(context.Background(), entity.ExchangeNasdaq)
	require.True(t, ok)
	require.Len(t, listing.Rows, 2)
	assert.Equal(t, entity.ExchangeNasdaq, listing.Exchange)

	symbol, ok := listing.Rows[0].Symbol()
	assert.True(t, ok)
	assert.Equal(t, "AAPL", symbol)
	fields, err := listing.Rows[0].Fields()
	require.NoError(t, err)
	assert.Equal(t, "AAPL Inc.", fields["name"])
}

func TestStore_FetchExchangeListing_Failure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exchange entity.ExchangeName
		handler  http.HandlerFunc
	}{
		{
			name:     "internal server error",
			exchange: entity.ExchangeNasdaq,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name:     "forbidden",
			exchange: entity.ExchangeNasdaq,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name:     "malformed json",
			exchange: entity.ExchangeNasdaq,
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":`))
			},
		},
		{
			name:     "empty exchange",
			exchange: "",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected for an empty exchange")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tt.handler)
			defer server.Close()

			listing, ok := newTestStore(t, server, storage.NewMemory()).FetchExchangeListing(context.Background(), tt.exchange)
			assert.False(t, ok)
			assert.Nil(t, listing)
		})
	}
}

func TestStore_FetchExchangeListing_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	store := newTestStore(t, server, storage.NewMemory())
	server.Close()

	_, err := store.fetchListing(context.Background(), entity.ExchangeNYSE)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrTransport)
}

func TestStore_FetchExchangeListing_NullData(t *testing.T) {
	t.Parallel()

	server := newListingServer(t, map[string]string{"amex": `{"data":null}`})

	listing, ok := newTestStore(t, server, storage.NewMemory()).FetchExchangeListing(context.Background(), entity.ExchangeAmex)
	require.True(t, ok)
	assert.Empty(t, listing.Rows)
	assert.NotNil(t, listing.Rows)
}

func TestStore_PersistThenLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	var payload entity.ListingResponse
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"rows":[
		{"symbol":"AAPL","name":"Apple Inc.","marketCap":"3,000,000","ipoyear":1980},
		{"symbol":"MSFT","name":"Microsoft Corporation","country":"United States"},
		{"symbol":"BRK/A","name":"Berkshire Hathaway","lastsale":null}
	]}}`), &payload))

	mem := storage.NewMemory()
	store := newTestStore(t, nil, mem)
	ctx := context.Background()

	store.PersistExchangeListing(ctx, &entity.SymbolListing{Exchange: entity.ExchangeNasdaq, Rows: payload.Data.Rows}, entity.ExchangeNasdaq)

	rows, ok := store.LoadExchangeListing(ctx, entity.ExchangeNasdaq)
	require.True(t, ok)
	require.Len(t, rows, len(payload.Data.Rows))
	for i := range rows {
		assert.JSONEq(t, string(payload.Data.Rows[i]), string(rows[i]))
	}

	assert.Equal(t, "AAPL\nMSFT\nBRK/A\n", readString(t, mem, "symbols/nasdaq/nasdaq_symbols.txt"))

	var list []string
	require.NoError(t, json.Unmarshal([]byte(readString(t, mem, "symbols/nasdaq/nasdaq_symbols.json")), &list))
	assert.Equal(t, []string{"AAPL", "MSFT", "BRK/A"}, list)
}

func TestStore_PersistExchangeListing_KeepsRowsVerbatim(t *testing.T) {
	t.Parallel()

	server := newListingServer(t, map[string]string{
		"nasdaq": `{"data":{"rows":[{"symbol":"A","id":12345678901234567891,"p":1.10}]}}`,
	})
	mem := storage.NewMemory()
	store := newTestStore(t, server, mem)
	ctx := context.Background()

	listing, ok := store.FetchExchangeListing(ctx, entity.ExchangeNasdaq)
	require.True(t, ok)
	store.PersistExchangeListing(ctx, listing, entity.ExchangeNasdaq)

	full := readString(t, mem, "symbols/nasdaq/nasdaq_full_symbols.json")
	assert.Contains(t, full, "12345678901234567891")
	assert.Contains(t, full, "1.10")
	assert.NotContains(t, full, "e+")
	assert.Less(t, strings.Index(full, `"symbol"`), strings.Index(full, `"id"`))
	assert.Less(t, strings.Index(full, `"id"`), strings.Index(full, `"p"`))

	rows, ok := store.LoadExchangeListing(ctx, entity.ExchangeNasdaq)
	require.True(t, ok)
	require.Len(t, rows, 1)

	fields, err := rows[0].Fields()
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567891"), fields["id"])
	assert.Equal(t, json.Number("1.10"), fields["p"])
}

func TestStore_PersistExchangeListing_UsesFourSpaceIndent(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	store := newTestStore(t, nil, mem)

	store.PersistExchangeListing(context.Background(), &entity.SymbolListing{
		Rows: []entity.SymbolRecord{entity.SymbolRecord(`{"symbol":"AAPL"}`)},
	}, entity.ExchangeNasdaq)

	assert.Equal(t, "[\n    \"AAPL\"\n]", readString(t, mem, "symbols/nasdaq/nasdaq_symbols.json"))
}

func TestStore_PersistExchangeListing_Empty(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	store := newTestStore(t, nil, mem)

	store.PersistExchangeListing(context.Background(), &entity.SymbolListing{}, entity.ExchangeAmex)

	assert.Equal(t, "[]", readString(t, mem, "symbols/amex/amex_full_symbols.json"))
	assert.Equal(t, "[]", readString(t, mem, "symbols/amex/amex_symbols.json"))
	assert.Equal(t, "\n", readString(t, mem, "symbols/amex/amex_symbols.txt"))

	rows, ok := store.LoadExchangeListing(context.Background(), entity.ExchangeAmex)
	assert.True(t, ok)
	assert.Empty(t, rows)
}

func TestStore_PersistExchangeListing_RowsWithoutSymbol(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	store := newTestStore(t, nil, mem)

	store.PersistExchangeListing(context.Background(), &entity.SymbolListing{Rows: []entity.SymbolRecord{
		entity.SymbolRecord(`{"symbol":"AAPL"}`),
		entity.SymbolRecord(`{"name":"no symbol"}`),
		entity.SymbolRecord(`{"symbol":42.0}`),
		entity.SymbolRecord(`{"symbol":"  "}`),
		entity.SymbolRecord(`{"symbol":"A\nB"}`),
		entity.SymbolRecord(`{"symbol":"BRK A"}`),
		entity.SymbolRecord(`{"symbol":"MSFT"}`),
	}}, entity.ExchangeNasdaq)

	assert.Equal(t, "AAPL\nBRK A\nMSFT\n", readString(t, mem, "symbols/nasdaq/nasdaq_symbols.txt"))

	var list []string
	require.NoError(t, json.Unmarshal([]byte(readString(t, mem, "symbols/nasdaq/nasdaq_symbols.json")), &list))
	assert.Equal(t, []string{"AAPL", "BRK A", "MSFT"}, list)

	rows, ok := store.LoadExchangeListing(context.Background(), entity.ExchangeNasdaq)
	require.True(t, ok)
	assert.Len(t, rows, 7)
}

func TestStore_PersistExchangeListing_WriteFailureIsAbsorbed(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	mem.FailOn("symbols/nyse/nyse_full_symbols.json", errors.New("disk full"))
	store := newTestStore(t, nil, mem)

	assert.NotPanics(t, func() {
		store.PersistExchangeListing(context.Background(), &entity.SymbolListing{
			Rows: []entity.SymbolRecord{entity.SymbolRecord(`{"symbol":"IBM"}`)},
		}, entity.ExchangeNYSE)
	})
	assert.Empty(t, mem.Paths())
}

func TestStore_RejectsExchangeWithPathCharacters(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	store := newTestStore(t, nil, mem)
	ctx := context.Background()

	for _, exchange := range []entity.ExchangeName{"../../escaped", "..", ".", `a\b`, "a/b"} {
		store.PersistExchangeListing(ctx, &entity.SymbolListing{
			Rows: []entity.SymbolRecord{entity.SymbolRecord(`{"symbol":"AAPL"}`)},
		}, exchange)

		_, err := store.loadListing(ctx, exchange)
		assert.ErrorIs(t, err, entity.ErrInvalidExchange, exchange)

		_, err = store.readSymbolLines(ctx, exchange)
		assert.ErrorIs(t, err, entity.ErrInvalidExchange, exchange)

		_, err = store.fetchListing(ctx, exchange)
		assert.ErrorIs(t, err, entity.ErrInvalidExchange, exchange)
	}
	assert.Empty(t, mem.Paths())

	result := store.MergeAndPersist(ctx, []entity.ExchangeName{"../nasdaq"}, "custom.txt")
	assert.Equal(t, []entity.ExchangeName{"../nasdaq"}, result.Skipped)
}

func TestStore_LoadExchangeListing_Absent(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	store := newTestStore(t, nil, mem)
	ctx := context.Background()

	rows, ok := store.LoadExchangeListing(ctx, entity.ExchangeNasdaq)
	assert.False(t, ok)
	assert.Nil(t, rows)

	require.NoError(t, mem.Write(ctx, "symbols/nyse/nyse_full_symbols.json", []byte("{not json")))
	rows, ok = store.LoadExchangeListing(ctx, entity.ExchangeNYSE)
	assert.False(t, ok)
	assert.Nil(t, rows)

	_, err := store.loadListing(ctx, entity.ExchangeNYSE)
	assert.ErrorIs(t, err, entity.ErrParse)
}

func TestStore_ListExchanges_ReturnsCopy(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, nil, storage.NewMemory())

	exchanges := store.ListExchanges()
	assert.Equal(t, []entity.ExchangeName{"nasdaq", "nyse", "amex"}, exchanges)

	exchanges[0] = "tampered"
	assert.Equal(t, entity.ExchangeNasdaq, store.ListExchanges()[0])
}

func TestNewStore_Defaults(t *testing.T) {
	t.Parallel()

	store := NewStore(Config{}, storage.NewMemory(), nil, logger.Discard())

	assert.Equal(t, entity.DefaultExchanges(), store.ListExchanges())
	assert.Equal(t, constant.DefaultUserAgent, store.cfg.UserAgent)
	assert.Equal(t,
		"https://api.nasdaq.com/api/screener/stocks?tableonly=true&limit=25&offset=0&exchange=nyse&download=true",
		store.listingURL(entity.ExchangeNYSE),
	)
}

func TestStore_FetchAndPersistAll_OneExchangeFails(t *testing.T) {
	t.Parallel()

	server := newListingServer(t, map[string]string{
		"nasdaq": listingPayload("AAPL", "GOOGL"),
		"amex":   listingPayload("GOOGL", "MSFT"),
	})
	mem := storage.NewMemory()
	store := newTestStore(t, server, mem)
	ctx := context.Background()

	result := store.FetchAndPersistAll(ctx)

	assert.True(t, result.Written)
	assert.Equal(t, "symbols/all/all_symbols.txt", result.Output)
	assert.Equal(t, []entity.ExchangeName{entity.ExchangeNasdaq, entity.ExchangeAmex}, result.Merged)
	assert.Equal(t, []entity.ExchangeName{entity.ExchangeNYSE}, result.Skipped)
	assert.Equal(t, 3, result.Symbols)

	symbols, ok := store.LoadMergedSymbols(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"AAPL", "GOOGL", "MSFT"}, symbols)

	exists, err := mem.Exists(ctx, "symbols/nyse/nyse_full_symbols.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_FetchAndPersistAll_OverwritesPreviousRun(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	payload := listingPayload("AAPL", "TSLA")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("exchange") != "nasdaq" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	mem := storage.NewMemory()
	store := newTestStore(t, server, mem)
	ctx := context.Background()

	store.FetchAndPersistAll(ctx)
	mu.Lock()
	payload = listingPayload("AAPL")
	mu.Unlock()
	store.FetchAndPersistAll(ctx)

	assert.Equal(t, "AAPL\n", readString(t, mem, "symbols/nasdaq/nasdaq_symbols.txt"))
	assert.Equal(t, "AAPL\n", readString(t, mem, "symbols/all/all_symbols.txt"))
}

func TestStore_FetchAndPersist_SubsetKeepsCanonicalUnion(t *testing.T) {
	t.Parallel()

	server := newListingServer(t, map[string]string{
		"nasdaq": listingPayload("AAPL"),
		"nyse":   listingPayload("KO"),
		"amex":   listingPayload("SPY"),
	})
	mem := storage.NewMemory()
	store := newTestStore(t, server, mem)
	ctx := context.Background()

	store.FetchAndPersistAll(ctx)
	require.Equal(t, "AAPL\nKO\nSPY\n", readString(t, mem, "symbols/all/all_symbols.txt"))

	result := store.FetchAndPersist(ctx, []entity.ExchangeName{entity.ExchangeNasdaq}, constant.DefaultMergedFile)
	assert.True(t, result.Written)
	assert.Equal(t, entity.DefaultExchanges(), result.Merged)
	assert.Equal(t, "AAPL\nKO\nSPY\n", readString(t, mem, "symbols/all/all_symbols.txt"))

	result = store.FetchAndPersist(ctx, []entity.ExchangeName{entity.ExchangeNasdaq}, "")
	assert.Equal(t, entity.DefaultExchanges(), result.Merged)

	result = store.FetchAndPersist(ctx, []entity.ExchangeName{entity.ExchangeNasdaq}, "nasdaq_only.txt")
	assert.Equal(t, []entity.ExchangeName{entity.ExchangeNasdaq}, result.Merged)
	assert.Equal(t, "AAPL\n", readString(t, mem, "symbols/all/nasdaq_only.txt"))
}

type recordingNotifier struct {
	results []entity.MergeResult
	symbols [][]string
	err     error
}

func (n *recordingNotifier) NotifyMerged(_ context.Context, result entity.MergeResult, symbols []string) error {
	n.results = append(n.results, result)
	n.symbols = append(n.symbols, symbols)
	return n.err
}

func TestStore_MergeAndPersist_Notifies(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	notifier := &recordingNotifier{err: errors.New("nats down")}
	store := newTestStore(t, nil, mem, WithNotifier(notifier))
	ctx := context.Background()

	require.NoError(t, mem.Write(ctx, "symbols/nasdaq/nasdaq_symbols.txt", []byte("AAPL\n")))

	result := store.MergeAndPersist(ctx, []entity.ExchangeName{entity.ExchangeNasdaq}, "")

	assert.True(t, result.Written)
	require.Len(t, notifier.results, 1)
	assert.Equal(t, []string{"AAPL"}, notifier.symbols[0])
}

func TestNewMergedEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.FixedZone("WIB", 7*60*60))
	event := NewMergedEvent(entity.MergeResult{
		Output:  "symbols/all/all_symbols.txt",
		Merged:  []entity.ExchangeName{entity.ExchangeNasdaq},
		Skipped: []entity.ExchangeName{entity.ExchangeAmex},
	}, []string{"AAPL"}, now)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, constant.SymbolsMergedEvent, event.Type)
	assert.Equal(t, []entity.ExchangeName{entity.ExchangeNasdaq}, event.Exchanges)
	assert.Equal(t, []entity.ExchangeName{entity.ExchangeAmex}, event.Skipped)
	assert.Equal(t, []string{"AAPL"}, event.Symbols)
	assert.Equal(t, time.UTC, event.OccurredAt.Location())
}
