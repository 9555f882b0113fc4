package valueobject

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency is an ISO 4217 currency code
type Currency string

// DefaultCurrency is used when a record does not carry its own currency
const DefaultCurrency Currency = "USD"

// ParseCurrency validates an ISO 4217 code and returns it upper-cased
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	if _, err := currency.ParseISO(code); err != nil {
		return "", fmt.Errorf("unknown currency %q: %w", code, err)
	}
	return Currency(code), nil
}

// Unit returns the x/text currency unit for c, falling back to the default currency
func (c Currency) Unit() currency.Unit {
	u, err := currency.ParseISO(string(c))
	if err != nil {
		return currency.MustParseISO(string(DefaultCurrency))
	}
	return u
}

// Money is an amount in a single currency
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// NewMoney creates Money, defaulting the currency when empty
func NewMoney(amount decimal.Decimal, c Currency) Money {
	if c == "" {
		c = DefaultCurrency
	}
	return Money{Amount: amount, Currency: c}
}

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}
