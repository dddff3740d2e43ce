package assets

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// ID identifies an Asset. It is assigned once by a Store and never reused.
type ID string

// NewID returns a fresh identifier. ULIDs are unique and sort by creation time.
func NewID() ID { return ID(ulid.Make().String()) }

func (id ID) String() string { return string(id) }

// AssetType classifies an asset. The set is open: any non-empty type is
// accepted, the known ones are normalized to their canonical spelling.
type AssetType string

const (
	Digital AssetType = "Digital"
	Cash    AssetType = "Cash"
	Metal   AssetType = "Metal"
	Crypto  AssetType = "Crypto"
)

// AssetTypes lists the known asset types, in display order.
var AssetTypes = []AssetType{Digital, Cash, Metal, Crypto}

// ParseAssetType returns the canonical AssetType for s.
// Known types match case-insensitively, others are kept as typed.
func ParseAssetType(s string) AssetType {
	s = strings.TrimSpace(s)
	for _, t := range AssetTypes {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return AssetType(s)
}

// Asset is a tracked item of value. Value is expressed in Currency, it is
// never converted in place.
type Asset struct {
	ID       ID
	Name     string
	Type     AssetType
	Value    decimal.Decimal
	Currency string
	Location string
	Notes    string
}

// Draft is the raw user input used to create or update an asset.
type Draft struct {
	Name     string
	Type     string
	Value    string
	Currency string
	Location string
	Notes    string
}

// DraftOf returns the Draft that would recreate a.
// It is convenient to edit a few fields of an existing asset.
func DraftOf(a Asset) Draft {
	return Draft{
		Name:     a.Name,
		Type:     string(a.Type),
		Value:    a.Value.String(),
		Currency: a.Currency,
		Location: a.Location,
		Notes:    a.Notes,
	}
}

// validate parses d into an Asset (with an empty ID).
// known reports whether a currency code is part of the current rate table.
func (d Draft) validate(known func(string) bool) (Asset, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Asset{}, &ValidationError{Field: "name", Reason: "cannot be empty"}
	}

	typ := ParseAssetType(d.Type)
	if typ == "" {
		return Asset{}, &ValidationError{Field: "type", Reason: "cannot be empty"}
	}

	raw := strings.TrimSpace(d.Value)
	if raw == "" {
		return Asset{}, &ValidationError{Field: "value", Reason: "cannot be empty"}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return Asset{}, &ValidationError{Field: "value", Reason: "must be a number: " + raw}
	}
	if reason := checkValue(value); reason != "" {
		return Asset{}, &ValidationError{Field: "value", Reason: reason}
	}

	cur := strings.ToUpper(strings.TrimSpace(d.Currency))
	if cur == "" {
		return Asset{}, &ValidationError{Field: "currency", Reason: "cannot be empty"}
	}
	if !known(cur) {
		return Asset{}, &ValidationError{Field: "currency", Reason: "unknown currency " + cur}
	}

	notes := strings.TrimSpace(d.Notes)
	if len(notes) > MaxNotesSize {
		return Asset{}, &ValidationError{Field: "notes", Reason: fmt.Sprintf("longer than %d bytes", MaxNotesSize)}
	}

	return Asset{
		Name:     name,
		Type:     typ,
		Value:    value,
		Currency: cur,
		Location: strings.TrimSpace(d.Location),
		Notes:    notes,
	}, nil
}

// Bounds of an asset value.
const (
	// MaxValue is the largest value of a single asset.
	MaxValue = 1_000_000_000_000_000
	// MaxDecimals is the largest number of decimal places of a value.
	MaxDecimals = 18
	// MaxNotesSize is the largest size of the notes, in bytes.
	MaxNotesSize = 1 << 20
)

var maxValue = decimal.NewFromInt(MaxValue)

// maxValueDigits is the number of integer digits of MaxValue. Comparing digits
// first avoids rescaling a huge exponent.
const maxValueDigits = 16

// checkValue returns why v is not a valid asset value, or "".
func checkValue(v decimal.Decimal) string {
	switch {
	case v.IsNegative():
		return "cannot be negative"
	case v.Exponent() < -MaxDecimals:
		// Exponent is not normalized: 1.50 has two decimals.
		return fmt.Sprintf("cannot have more than %d decimals", MaxDecimals)
	case !v.IsZero() && (int64(v.NumDigits())+int64(v.Exponent()) > maxValueDigits || v.GreaterThan(maxValue)):
		return fmt.Sprintf("cannot be greater than %d", int64(MaxValue))
	}
	return ""
}
