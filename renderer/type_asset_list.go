package renderer

import (
	"time"

	"github.com/etnz/assets"
)

// AssetList is the data of an asset list document.
type AssetList struct {
	Currency    string         `json:"currency"`
	Count       int            `json:"count"`
	Sort        string         `json:"sort"`
	RatesSource string         `json:"ratesSource"`
	Rows        []AssetListRow `json:"rows"`
	Total       string         `json:"total"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// AssetListRow is one asset of an AssetList.
type AssetListRow struct {
	Position      int    `json:"position"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Value         string `json:"value"`
	AssetCurrency string `json:"currency"`
	Converted     string `json:"converted"`
	Location      string `json:"location,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// NewAssetList computes the document data of a View.
func NewAssetList(v assets.View) *AssetList {
	l := &AssetList{
		Currency:    v.Currency(),
		Count:       v.Len(),
		Sort:        v.SortState().String(),
		RatesSource: v.Rates().Source(),
		Total:       v.Total().String(),
	}
	for r := range v.Rows() {
		l.Rows = append(l.Rows, AssetListRow{
			Position:      len(l.Rows) + 1,
			ID:            r.ID.String(),
			Name:          r.Name,
			Type:          string(r.Type),
			Value:         assets.M(r.Value, r.Currency).Fixed(),
			AssetCurrency: r.Currency,
			Converted:     r.Converted.Fixed(),
			Location:      r.Location,
			Notes:         r.Notes,
		})
		if r.Warning != nil {
			l.Warnings = append(l.Warnings, r.Name+": "+r.Warning.Error())
		}
	}
	return l
}

// RateList is the data of an exchange rates document.
type RateList struct {
	Reference string        `json:"reference"`
	Source    string        `json:"source"`
	AsOf      string        `json:"asOf,omitempty"`
	Rows      []RateListRow `json:"rows"`
}

// RateListRow is one currency of a RateList.
type RateListRow struct {
	Code string `json:"code"`
	Rate string `json:"rate"`
}

// NewRateList computes the document data of a rate table.
func NewRateList(t assets.RateTable) *RateList {
	l := &RateList{Reference: assets.Reference, Source: t.Source()}
	if !t.AsOf().IsZero() {
		l.AsOf = t.AsOf().Format(time.DateTime)
	}
	for _, code := range t.Codes() {
		r, _ := t.Rate(code)
		l.Rows = append(l.Rows, RateListRow{Code: code, Rate: r.String()})
	}
	return l
}
