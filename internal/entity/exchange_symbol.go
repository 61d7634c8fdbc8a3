package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// ExchangeSymbol is the typed projection of a SymbolRecord stored in postgres.
type ExchangeSymbol struct {
	Exchange  string              `db:"exchange" json:"exchange"`
	Symbol    string              `db:"symbol" json:"symbol"`
	Name      null.String         `db:"name" json:"name"`
	LastSale  decimal.NullDecimal `db:"last_sale" json:"last_sale"`
	NetChange decimal.NullDecimal `db:"net_change" json:"net_change"`
	PctChange decimal.NullDecimal `db:"pct_change" json:"pct_change"`
	MarketCap decimal.NullDecimal `db:"market_cap" json:"market_cap"`
	Volume    null.Int            `db:"volume" json:"volume"`
	Country   null.String         `db:"country" json:"country"`
	IPOYear   null.Int            `db:"ipo_year" json:"ipo_year"`
	Sector    null.String         `db:"sector" json:"sector"`
	Industry  null.String         `db:"industry" json:"industry"`
	URL       null.String         `db:"url" json:"url"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt time.Time           `db:"updated_at" json:"updated_at"`
}

func (e ExchangeSymbol) TableName() string {
	return "exchange_symbols"
}

// NewExchangeSymbol maps a raw screener row. Attribute parsing is lenient: values
// that are missing or unparsable become null instead of failing the row.
func NewExchangeSymbol(exchange ExchangeName, record SymbolRecord, now time.Time) (ExchangeSymbol, error) {
	symbol, ok := record.Symbol()
	if !ok {
		return ExchangeSymbol{}, fmt.Errorf("record has no symbol: %w", ErrParse)
	}

	fields, err := record.Fields()
	if err != nil {
		return ExchangeSymbol{}, fmt.Errorf("record %s: %w: %w", symbol, ErrParse, err)
	}

	return ExchangeSymbol{
		Exchange:  string(exchange),
		Symbol:    strings.TrimSpace(symbol),
		Name:      recordString(fields, "name"),
		LastSale:  recordDecimal(fields, "lastsale"),
		NetChange: recordDecimal(fields, "netchange"),
		PctChange: recordDecimal(fields, "pctchange"),
		MarketCap: recordDecimal(fields, "marketCap"),
		Volume:    recordInt(fields, "volume"),
		Country:   recordString(fields, "country"),
		IPOYear:   recordInt(fields, "ipoyear"),
		Sector:    recordString(fields, "sector"),
		Industry:  recordString(fields, "industry"),
		URL:       recordString(fields, "url"),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func recordRaw(fields map[string]any, key string) string {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return ""
	}

	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func recordString(fields map[string]any, key string) null.String {
	value := recordRaw(fields, key)
	return null.NewString(value, value != "")
}

func cleanNumber(value string) string {
	replacer := strings.NewReplacer("$", "", "%", "", ",", "")
	value = replacer.Replace(value)
	if strings.EqualFold(value, "NA") || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func recordDecimal(fields map[string]any, key string) decimal.NullDecimal {
	value := cleanNumber(recordRaw(fields, key))
	if value == "" {
		return decimal.NullDecimal{}
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(parsed)
}

func recordInt(fields map[string]any, key string) null.Int {
	value := cleanNumber(recordRaw(fields, key))
	if value == "" {
		return null.Int{}
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return null.Int{}
	}

	return null.IntFrom(parsed)
}
