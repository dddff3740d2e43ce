package assets

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvert_Identity(t *testing.T) {
	rates := FallbackRates()
	for _, amount := range []string{"0", "0.1", "1200", "123456789.123456789", "0.333333333333333333"} {
		for _, cur := range []string{"USD", "EUR", "CHF", "XYZ"} {
			got, err := Convert(d(amount), cur, cur, rates)
			require.NoError(t, err)
			assert.True(t, got.Equal(d(amount)), "%s %s: got %s", amount, cur, got)
		}
	}
}

func TestConvert(t *testing.T) {
	rates := FallbackRates()
	testCases := []struct {
		amount, from, to string
		want             string
	}{
		{"1200", "USD", "EUR", "1020.00"},
		{"100", "USD", "CHF", "92.00"},
		{"85", "EUR", "USD", "100.00"},
		{"0", "EUR", "CHF", "0.00"},
	}
	for _, tc := range testCases {
		got, err := Convert(d(tc.amount), tc.from, tc.to, rates)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.StringFixed(2), "%s %s→%s", tc.amount, tc.from, tc.to)
	}
}

func TestConvert_Composes(t *testing.T) {
	rates, err := RatesFromFloats(map[string]float64{"EUR": 0.85, "CHF": 0.92, "JPY": 151.37})
	require.NoError(t, err)
	codes := rates.Codes()
	for _, amount := range []string{"1", "1200", "0.07", "98765.4321"} {
		for _, c1 := range codes {
			for _, c2 := range codes {
				for _, c3 := range codes {
					step, err := Convert(d(amount), c1, c2, rates)
					require.NoError(t, err)
					twice, err := Convert(step, c2, c3, rates)
					require.NoError(t, err)
					once, err := Convert(d(amount), c1, c3, rates)
					require.NoError(t, err)
					assert.InEpsilon(t, once.InexactFloat64(), twice.InexactFloat64(), 1e-9, "%s %s→%s→%s", amount, c1, c2, c3)
				}
			}
		}
	}
}

func TestConvert_UnknownSource(t *testing.T) {
	rates := FallbackRates()
	got, err := Convert(d("100"), "GBP", "EUR", rates)
	assert.ErrorIs(t, err, ErrUnknownCurrency)
	assert.Equal(t, "85.00", got.StringFixed(2))

	got, err = Convert(d("100"), "", "USD", rates)
	assert.ErrorIs(t, err, ErrUnknownCurrency)
	assert.Equal(t, "100", got.String())
}

func TestConvert_InvalidTarget(t *testing.T) {
	_, err := Convert(d("100"), "USD", "GBP", FallbackRates())
	assert.ErrorIs(t, err, ErrInvalidCurrency)
	assert.False(t, errors.Is(err, ErrUnknownCurrency))
}

func TestNewRateTable(t *testing.T) {
	rates, err := NewRateTable(map[string]decimal.Decimal{"eur": d("0.9")}, SourceRemote, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR", "USD"}, rates.Codes())
	r, ok := rates.Rate("USD")
	require.True(t, ok)
	assert.True(t, r.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, SourceRemote, rates.Source())

	_, err = NewRateTable(map[string]decimal.Decimal{"EUR": d("0")}, SourceRemote, time.Time{})
	assert.Error(t, err)
	_, err = NewRateTable(map[string]decimal.Decimal{"USD": d("2")}, SourceRemote, time.Time{})
	assert.Error(t, err)
	_, err = NewRateTable(map[string]decimal.Decimal{"": d("2")}, SourceRemote, time.Time{})
	assert.Error(t, err)
}

func TestFallbackRates(t *testing.T) {
	rates := FallbackRates()
	assert.True(t, rates.IsFallback())
	assert.Equal(t, []string{"CHF", "EUR", "USD"}, rates.Codes())
	for _, c := range DisplayCurrencies {
		assert.True(t, rates.Has(c), c)
	}
}

func TestRateTable_JSON(t *testing.T) {
	asOf := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rates, err := NewRateTable(map[string]decimal.Decimal{"EUR": d("0.9123")}, SourceRemote, asOf)
	require.NoError(t, err)

	data, err := json.Marshal(rates)
	require.NoError(t, err)
	var got RateTable
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rates.Codes(), got.Codes())
	r, _ := got.Rate("EUR")
	assert.True(t, r.Equal(d("0.9123")))
	assert.True(t, asOf.Equal(got.AsOf()))
	assert.Equal(t, SourceRemote, got.Source())

	assert.Error(t, json.Unmarshal([]byte(`{"rates":{"EUR":"-1"}}`), &got))
}

func TestFetchOrFallback(t *testing.T) {
	ctx := context.Background()
	ok := RateProviderFunc(func(context.Context) (RateTable, error) {
		return RatesFromFloats(map[string]float64{"JPY": 150})
	})
	rates, err := FetchOrFallback(ctx, ok, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, rates.Has("JPY"))

	failing := RateProviderFunc(func(context.Context) (RateTable, error) {
		return RateTable{}, errors.New("timeout")
	})
	rates, err = FetchOrFallback(ctx, failing, nil)
	assert.ErrorIs(t, err, ErrRateFetchFailed)
	assert.True(t, rates.IsFallback())
}
