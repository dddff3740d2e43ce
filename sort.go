package assets

import (
	"fmt"
	"strings"
)

// SortKey is a column assets can be sorted by.
type SortKey string

const (
	ByName     SortKey = "Name"
	ByType     SortKey = "Type"
	ByValue    SortKey = "Value"
	ByCurrency SortKey = "Currency"
	ByLocation SortKey = "Location"
	ByNotes    SortKey = "Notes"
)

// SortKeys lists all sort keys, in column order.
var SortKeys = []SortKey{ByName, ByType, ByValue, ByCurrency, ByLocation, ByNotes}

func (k SortKey) valid() bool {
	for _, x := range SortKeys {
		if k == x {
			return true
		}
	}
	return false
}

// ParseSortKey parses a sort key, case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	for _, k := range SortKeys {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", &ValidationError{Field: "sort key", Reason: fmt.Sprintf("unknown key %q", s)}
}

// Direction of a sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// Order labels how the current sequence relates to the last sort.
type Order int

const (
	// Unsorted: no sort has been applied yet.
	Unsorted Order = iota
	// Sorted: the last sort is still in effect (creations and deletions are not
	// taken into account).
	Sorted
	// ManuallyAdjusted: assets have been moved after the last sort.
	ManuallyAdjusted
)

func (o Order) String() string {
	switch o {
	case Sorted:
		return "sorted"
	case ManuallyAdjusted:
		return "manually adjusted"
	default:
		return "unsorted"
	}
}

// SortState is the state of the sort/order state machine. Key and Direction
// are the last sort applied, they are kept in the ManuallyAdjusted state so
// that sorting again by the same key still toggles.
type SortState struct {
	Order     Order
	Key       SortKey
	Direction Direction
}

func (s SortState) String() string {
	if s.Order == Unsorted {
		return s.Order.String()
	}
	return fmt.Sprintf("%s (%s, %s)", s.Order, s.Key, s.Direction)
}

// toggle returns the state after sorting by key.
func (s SortState) toggle(key SortKey) SortState {
	if s.Order != Unsorted && s.Key == key {
		return SortState{Order: Sorted, Key: key, Direction: 1 - s.Direction}
	}
	return SortState{Order: Sorted, Key: key, Direction: Ascending}
}

// adjusted returns the state after a manual move.
func (s SortState) adjusted() SortState {
	if s.Order == Sorted {
		s.Order = ManuallyAdjusted
	}
	return s
}
