package entity

import (
	"errors"
	"fmt"
	"strings"
)

type ExchangeName string

const (
	ExchangeNasdaq ExchangeName = "nasdaq"
	ExchangeNYSE   ExchangeName = "nyse"
	ExchangeAmex   ExchangeName = "amex"
)

var (
	ErrExchangeRequired = errors.New("exchange is required")
	ErrInvalidExchange  = errors.New("invalid exchange")
)

func DefaultExchanges() []ExchangeName {
	return []ExchangeName{ExchangeNasdaq, ExchangeNYSE, ExchangeAmex}
}

func (e ExchangeName) String() string {
	return string(e)
}

// Validate rejects names that would not stay one directory below symbols/.
func (e ExchangeName) Validate() error {
	name := string(e)
	switch {
	case name == "":
		return ErrExchangeRequired
	case name == "." || name == ".." || strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%q: %w", name, ErrInvalidExchange)
	}
	return nil
}
