package entity

import (
	"context"
	"time"
)

type Publisher interface {
	JetstreamEventInit(ctx context.Context) error
}

type SymbolEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Exchanges  []ExchangeName `json:"exchanges"`
	Output     string         `json:"output,omitempty"`
	Symbols    []string       `json:"symbols"`
	Skipped    []ExchangeName `json:"skipped,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
