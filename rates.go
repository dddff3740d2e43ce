package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reference is the currency all rates are quoted against.
const Reference = "USD"

// DisplayCurrencies are the currencies offered for display.
var DisplayCurrencies = []string{"USD", "EUR", "CHF"}

// Sources of a RateTable.
const (
	SourceFallback = "fallback"
	SourceRemote   = "remote"
	SourceCache    = "cache"
	SourceStatic   = "static"
)

// RateTable is an immutable snapshot of exchange rates: for each currency code,
// the number of units of that currency worth one unit of Reference.
//
// A RateTable is never modified after creation, a refresh replaces it.
type RateTable struct {
	rates  map[string]decimal.Decimal
	source string
	asOf   time.Time
}

// NewRateTable returns a RateTable from a code→rate mapping.
// Codes are upper-cased, Reference is always present with a rate of 1 and all
// rates must be strictly positive.
func NewRateTable(rates map[string]decimal.Decimal, source string, asOf time.Time) (RateTable, error) {
	t := RateTable{
		rates:  make(map[string]decimal.Decimal, len(rates)+1),
		source: source,
		asOf:   asOf,
	}
	for code, r := range rates {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return RateTable{}, fmt.Errorf("rate table: empty currency code")
		}
		if !r.IsPositive() {
			return RateTable{}, fmt.Errorf("rate table: rate for %s must be positive, got %s", code, r)
		}
		t.rates[code] = r
	}
	if r, ok := t.rates[Reference]; ok && !r.Equal(decimal.NewFromInt(1)) {
		return RateTable{}, fmt.Errorf("rate table: rate for %s must be 1, got %s", Reference, r)
	}
	t.rates[Reference] = decimal.NewFromInt(1)
	return t, nil
}

// RatesFromFloats is a convenient factory for a static RateTable.
func RatesFromFloats(rates map[string]float64) (RateTable, error) {
	m := make(map[string]decimal.Decimal, len(rates))
	for code, r := range rates {
		m[code] = decimal.NewFromFloat(r)
	}
	return NewRateTable(m, SourceStatic, time.Time{})
}

// FallbackRates returns the table used when no rate source is available.
func FallbackRates() RateTable {
	return RateTable{
		rates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.RequireFromString("0.85"),
			"CHF": decimal.RequireFromString("0.92"),
		},
		source: SourceFallback,
	}
}

// Rate returns the rate of code, and whether it is known.
func (t RateTable) Rate(code string) (decimal.Decimal, bool) {
	r, ok := t.rates[code]
	return r, ok
}

// Has reports whether code is part of the table.
func (t RateTable) Has(code string) bool {
	_, ok := t.rates[code]
	return ok
}

// Codes returns all currency codes in alphabetical order.
func (t RateTable) Codes() []string {
	codes := make([]string, 0, len(t.rates))
	for c := range t.rates {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

func (t RateTable) Len() int         { return len(t.rates) }
func (t RateTable) Source() string   { return t.source }
func (t RateTable) AsOf() time.Time  { return t.asOf }
func (t RateTable) IsFallback() bool { return t.source == SourceFallback }

// WithSource returns a copy of t labelled with another source.
func (t RateTable) WithSource(s string) RateTable {
	t.source = s // rates map is shared, it is never written after creation.
	return t
}

type jrateTable struct {
	Source string                     `json:"source,omitempty"`
	AsOf   time.Time                  `json:"asOf,omitzero"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

func (t RateTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(jrateTable{Source: t.source, AsOf: t.asOf, Rates: t.rates})
}

func (t *RateTable) UnmarshalJSON(data []byte) error {
	var j jrateTable
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	nt, err := NewRateTable(j.Rates, j.Source, j.AsOf)
	if err != nil {
		return err
	}
	*t = nt
	return nil
}

// Convert converts amount from one currency to another using rates.
//
// Convert always returns a usable amount unless the error wraps
// ErrInvalidCurrency (to is missing from rates). When from is missing, amount
// is read as Reference and the converted amount is returned with an error
// wrapping ErrUnknownCurrency, to be reported as a warning.
func Convert(amount decimal.Decimal, from, to string, rates RateTable) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rateTo, ok := rates.Rate(to)
	if !ok {
		return decimal.Zero, fmt.Errorf("cannot convert to %q: %w", to, ErrInvalidCurrency)
	}

	var warn error
	rateFrom, ok := rates.Rate(from)
	if !ok {
		warn = fmt.Errorf("%w %q, read as %s", ErrUnknownCurrency, from, Reference)
		if to == Reference {
			return amount, warn
		}
		rateFrom = decimal.NewFromInt(1)
	}
	return amount.Mul(rateTo.Div(rateFrom)), warn
}

// RateProvider supplies exchange rates. Fetch errors wrap ErrRateFetchFailed.
type RateProvider interface {
	Fetch(ctx context.Context) (RateTable, error)
}

// RateProviderFunc adapts a function to the RateProvider interface.
type RateProviderFunc func(ctx context.Context) (RateTable, error)

func (f RateProviderFunc) Fetch(ctx context.Context) (RateTable, error) { return f(ctx) }

// FetchOrFallback fetches rates from p. On failure it logs a warning and
// returns FallbackRates along with the error, that the caller should report
// but not treat as fatal.
func FetchOrFallback(ctx context.Context, p RateProvider, logger *zap.Logger) (RateTable, error) {
	t, err := p.Fetch(ctx)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrRateFetchFailed) {
		err = fmt.Errorf("%w: %w", ErrRateFetchFailed, err)
	}
	if logger != nil {
		logger.Warn("using fallback exchange rates", zap.Error(err))
	}
	return FallbackRates(), err
}
