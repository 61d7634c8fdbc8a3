package entity

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// SymbolRecord is one row of an exchange listing as returned by the screener API.
// The row is kept as raw JSON so key order and number literals survive a
// persist/load cycle. Only the "symbol" key is inspected.
type SymbolRecord []byte

func (r SymbolRecord) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *SymbolRecord) UnmarshalJSON(data []byte) error {
	*r = append((*r)[0:0], data...)
	return nil
}

// Symbol returns the symbol field exactly as listed. Blank values and values
// holding a line break are rejected since they cannot be one line of a symbols file.
func (r SymbolRecord) Symbol() (string, bool) {
	var peek struct {
		Symbol any `json:"symbol"`
	}
	if err := json.Unmarshal(r, &peek); err != nil {
		return "", false
	}

	symbol, ok := peek.Symbol.(string)
	if !ok || strings.TrimSpace(symbol) == "" || strings.ContainsAny(symbol, "\r\n") {
		return "", false
	}

	return symbol, true
}

// Fields decodes the row into a map. Numbers stay json.Number so no precision
// is lost on the way to the typed projection.
func (r SymbolRecord) Fields() (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(r))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}

	return fields, nil
}

// ListingResponse mirrors the screener payload: {"data": {"rows": [...]}}.
type ListingResponse struct {
	Data struct {
		Rows []SymbolRecord `json:"rows"`
	} `json:"data"`
}

type SymbolListing struct {
	Exchange ExchangeName
	Rows     []SymbolRecord
}

// Symbols extracts the symbol field of every row in listing order. Rows without a
// usable symbol are reported by index in skipped.
func (l *SymbolListing) Symbols() (symbols []string, skipped []int) {
	symbols = make([]string, 0, len(l.Rows))
	for idx, row := range l.Rows {
		symbol, ok := row.Symbol()
		if !ok {
			skipped = append(skipped, idx)
			continue
		}
		symbols = append(symbols, symbol)
	}

	return symbols, skipped
}

type MergeResult struct {
	Output   string         `json:"output"`
	Symbols  int            `json:"symbols"`
	Merged   []ExchangeName `json:"merged"`
	Skipped  []ExchangeName `json:"skipped,omitempty"`
	Written  bool           `json:"written"`
	WriteErr error          `json:"-"`
}

// Partial reports whether at least one requested exchange could not be read.
func (r MergeResult) Partial() bool {
	return len(r.Skipped) > 0
}
