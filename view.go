package assets

import (
	"errors"
	"iter"

	"github.com/shopspring/decimal"
)

// View is a snapshot of a Collection projected into a display currency.
// Values are converted when rows are read, a View can be read any number of
// times and never changes the assets.
type View struct {
	currency string
	rates    RateTable
	assets   []Asset
	sort     SortState
}

// Row is an asset and its value in the view's currency.
type Row struct {
	Asset
	// Converted is Asset.Value in the view's currency.
	Converted Money
	// Warning wraps ErrUnknownCurrency when the asset's currency is missing
	// from the rates and its value has been read as Reference.
	Warning error
}

// Currency returns the display currency.
func (v View) Currency() string { return v.currency }

// Rates returns the rate table used by the view.
func (v View) Rates() RateTable { return v.rates }

// SortState returns the collection sort state when the view was taken.
func (v View) SortState() SortState { return v.sort }

// Len returns the number of rows.
func (v View) Len() int { return len(v.assets) }

// Rows returns the rows in collection order.
func (v View) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, a := range v.assets {
			if !yield(v.row(a)) {
				return
			}
		}
	}
}

func (v View) row(a Asset) Row {
	amount, err := Convert(a.Value, a.Currency, v.currency, v.rates)
	if err != nil && !errors.Is(err, ErrUnknownCurrency) {
		// View checked that the currency is part of the rates, Convert can only
		// return a warning.
		panic(err)
	}
	return Row{Asset: a, Converted: M(amount, v.currency), Warning: err}
}

// Total returns the sum of all converted values.
func (v View) Total() Money {
	total := decimal.Zero
	for r := range v.Rows() {
		total = total.Add(r.Converted.Amount())
	}
	return M(total, v.currency)
}

// Warnings returns the conversion warnings of all rows.
func (v View) Warnings() []error {
	var list []error
	for r := range v.Rows() {
		if r.Warning != nil {
			list = append(list, r.Warning)
		}
	}
	return list
}
