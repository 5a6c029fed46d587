package fx

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedCurrency is returned for currencies missing from the table.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Conversion is the result of converting an amount into the base currency.
type Conversion struct {
	Currency     string
	Rate         decimal.Decimal
	AmountInBase decimal.Decimal
}

// RateTable converts amounts into the base currency using fixed rates.
type RateTable struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewRateTable copies rates; the base currency always converts at 1.
func NewRateTable(base string, rates map[string]decimal.Decimal) *RateTable {
	base = strings.ToUpper(base)
	table := &RateTable{base: base, rates: make(map[string]decimal.Decimal, len(rates)+1)}
	for code, rate := range rates {
		if rate.IsPositive() {
			table.rates[strings.ToUpper(code)] = rate
		}
	}
	table.rates[base] = decimal.NewFromInt(1)
	return table
}

func (t *RateTable) Base() string {
	return t.base
}

// Rate returns units of base currency per unit of currency.
func (t *RateTable) Rate(currency string) (decimal.Decimal, error) {
	rate, ok := t.rates[strings.ToUpper(strings.TrimSpace(currency))]
	if !ok {
		return decimal.Zero, ErrUnsupportedCurrency
	}
	return rate, nil
}

// Convert rounds the base amount to 2 decimal places.
func (t *RateTable) Convert(amount decimal.Decimal, currency string) (Conversion, error) {
	rate, err := t.Rate(currency)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{
		Currency:     strings.ToUpper(strings.TrimSpace(currency)),
		Rate:         rate,
		AmountInBase: amount.Mul(rate).Round(2),
	}, nil
}

// Currencies lists supported codes in alphabetical order.
func (t *RateTable) Currencies() []string {
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
