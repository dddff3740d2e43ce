package assets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// Collection is the ordered list of assets of a session. It owns the order,
// the sort state, the display currency and the current rate table, and it is
// the only writer of its Store.
//
// Mutators (Create, Update, Delete, MoveUp, MoveDown, SortBy, Sort,
// SetDisplayCurrency) are not safe for concurrent use. Rates, SetRates and
// View may be called at any time: the rate table is swapped atomically.
type Collection struct {
	store   Store
	logger  *zap.Logger
	assets  []Asset
	display string
	sort    SortState
	rates   atomic.Pointer[RateTable]
}

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger used to report warnings.
func WithLogger(l *zap.Logger) Option { return func(c *Collection) { c.logger = l } }

// WithRates sets the initial rate table.
func WithRates(t RateTable) Option { return func(c *Collection) { c.rates.Store(&t) } }

// WithDisplayCurrency sets the initial display currency.
func WithDisplayCurrency(code string) Option {
	return func(c *Collection) { c.display = strings.ToUpper(code) }
}

// Open loads all assets from store into a new Collection.
// By default rates are FallbackRates and the display currency is Reference.
func Open(ctx context.Context, store Store, opts ...Option) (*Collection, error) {
	c := &Collection{
		store:   store,
		logger:  zap.NewNop(),
		display: Reference,
	}
	fallback := FallbackRates()
	c.rates.Store(&fallback)
	for _, opt := range opts {
		opt(c)
	}
	if !c.Rates().Has(c.display) {
		return nil, fmt.Errorf("display currency %q: %w", c.display, ErrInvalidCurrency)
	}

	list, err := store.LoadAll(ctx)
	if err != nil {
		return nil, PersistenceError("load assets", err)
	}
	seen := make(map[ID]bool, len(list))
	for _, a := range list {
		if seen[a.ID] {
			return nil, fmt.Errorf("load assets: %w: duplicate id %s", ErrPersistence, a.ID)
		}
		seen[a.ID] = true
	}
	c.assets = list
	c.logger.Debug("collection opened", zap.Int("assets", len(list)))
	return c, nil
}

// Close closes the underlying store.
func (c *Collection) Close() error { return c.store.Close() }

// Len returns the number of assets.
func (c *Collection) Len() int { return len(c.assets) }

// Assets returns a copy of the assets, in order.
func (c *Collection) Assets() []Asset { return slices.Clone(c.assets) }

// Get returns the asset identified by id.
func (c *Collection) Get(id ID) (Asset, error) {
	i := c.index(id)
	if i < 0 {
		return Asset{}, fmt.Errorf("asset %s: %w", id, ErrNotFound)
	}
	return c.assets[i], nil
}

// SortState returns the current sort state.
func (c *Collection) SortState() SortState { return c.sort }

// DisplayCurrency returns the current display currency.
func (c *Collection) DisplayCurrency() string { return c.display }

// SetDisplayCurrency changes the display currency. It does not re-sort.
func (c *Collection) SetDisplayCurrency(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !c.Rates().Has(code) {
		return fmt.Errorf("display currency %q: %w", code, ErrInvalidCurrency)
	}
	c.display = code
	return nil
}

// Rates returns the current rate table.
func (c *Collection) Rates() RateTable { return *c.rates.Load() }

// SetRates replaces the rate table.
func (c *Collection) SetRates(t RateTable) { c.rates.Store(&t) }

// RefreshRates fetches a new rate table from p. On failure the fallback table
// is installed and the error is returned, to be reported as a warning.
// If the display currency is no longer part of the rates, it is reset to
// Reference.
func (c *Collection) RefreshRates(ctx context.Context, p RateProvider) error {
	t, err := FetchOrFallback(ctx, p, c.logger)
	c.SetRates(t)
	if !t.Has(c.display) {
		c.logger.Warn("display currency not in new rates, reset",
			zap.String("currency", c.display), zap.String("reset", Reference))
		c.display = Reference
	}
	return err
}

func (c *Collection) index(id ID) int {
	return slices.IndexFunc(c.assets, func(a Asset) bool { return a.ID == id })
}

func (c *Collection) ids() []ID {
	ids := make([]ID, len(c.assets))
	for i, a := range c.assets {
		ids[i] = a.ID
	}
	return ids
}

// Create validates d, persists it and appends the new asset at the end of the
// order, whatever the current sort.
func (c *Collection) Create(ctx context.Context, d Draft) (Asset, error) {
	a, err := d.validate(c.Rates().Has)
	if err != nil {
		return Asset{}, err
	}
	id, err := c.store.Create(ctx, a)
	if err != nil {
		return Asset{}, PersistenceError("create asset", err)
	}
	a.ID = id
	c.assets = append(c.assets, a)
	c.logger.Debug("asset created", zap.String("id", id.String()), zap.String("name", a.Name))
	return a, nil
}

// Update validates d and replaces the asset identified by id, at the same
// position.
func (c *Collection) Update(ctx context.Context, id ID, d Draft) (Asset, error) {
	a, err := d.validate(c.Rates().Has)
	if err != nil {
		return Asset{}, err
	}
	i := c.index(id)
	if i < 0 {
		return Asset{}, fmt.Errorf("update asset %s: %w", id, ErrNotFound)
	}
	a.ID = id
	if err := c.store.Update(ctx, id, a); err != nil {
		return Asset{}, PersistenceError("update asset", err)
	}
	c.assets[i] = a
	c.logger.Debug("asset updated", zap.String("id", id.String()))
	return a, nil
}

// Delete removes the asset identified by id.
func (c *Collection) Delete(ctx context.Context, id ID) error {
	i := c.index(id)
	if i < 0 {
		c.logger.Warn("cannot delete unknown asset", zap.String("id", id.String()))
		return fmt.Errorf("delete asset %s: %w", id, ErrNotFound)
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return PersistenceError("delete asset", err)
	}
	c.assets = slices.Delete(c.assets, i, i+1)
	c.logger.Debug("asset deleted", zap.String("id", id.String()))
	return nil
}

// MoveUp swaps the asset with the previous one.
func (c *Collection) MoveUp(ctx context.Context, id ID) error { return c.move(ctx, id, -1) }

// MoveDown swaps the asset with the next one.
func (c *Collection) MoveDown(ctx context.Context, id ID) error { return c.move(ctx, id, +1) }

func (c *Collection) move(ctx context.Context, id ID, direction int) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("move asset %s: %w", id, ErrNotFound)
	}
	j := i + direction
	if j < 0 || j >= len(c.assets) {
		c.logger.Warn("asset already at boundary", zap.String("id", id.String()), zap.Int("position", i))
		return fmt.Errorf("move asset %s: %w", id, ErrAtBoundary)
	}

	c.assets[i], c.assets[j] = c.assets[j], c.assets[i]
	if err := c.saveOrder(ctx); err != nil {
		c.assets[i], c.assets[j] = c.assets[j], c.assets[i]
		return err
	}
	c.sort = c.sort.adjusted()
	return nil
}

// saveOrder persists the current order when the store keeps one.
func (c *Collection) saveOrder(ctx context.Context) error {
	ordered, ok := c.store.(OrderStore)
	if !ok {
		return nil
	}
	if err := ordered.SaveOrder(ctx, c.ids()); err != nil {
		return PersistenceError("save order", err)
	}
	return nil
}

// Sort sorts by key using the collection's display currency and rates.
func (c *Collection) Sort(ctx context.Context, key SortKey) error {
	return c.SortBy(ctx, key, c.display, c.Rates())
}

// SortBy sorts all assets by key, stably. Sorting again by the same key flips
// the direction, sorting by another key starts ascending.
//
// Values are compared once converted to display using rates.
func (c *Collection) SortBy(ctx context.Context, key SortKey, display string, rates RateTable) error {
	if !key.valid() {
		return fmt.Errorf("sort: %w", &ValidationError{Field: "sort key", Reason: "unknown key " + string(key)})
	}
	if !rates.Has(display) {
		return fmt.Errorf("sort by %s: display currency %q: %w", key, display, ErrInvalidCurrency)
	}

	next := c.sort.toggle(key)

	cmp, err := c.comparator(key, display, rates)
	if err != nil {
		return err
	}
	if next.Direction == Descending {
		asc := cmp
		cmp = func(a, b Asset) int { return asc(b, a) }
	}

	previous := slices.Clone(c.assets)
	slices.SortStableFunc(c.assets, cmp)
	if err := c.saveOrder(ctx); err != nil {
		c.assets = previous
		return err
	}
	c.sort = next
	return nil
}

// comparator returns the ascending comparison of assets by key.
func (c *Collection) comparator(key SortKey, display string, rates RateTable) (func(a, b Asset) int, error) {
	switch key {
	case ByName:
		return func(a, b Asset) int { return strings.Compare(a.Name, b.Name) }, nil
	case ByType:
		return func(a, b Asset) int { return strings.Compare(string(a.Type), string(b.Type)) }, nil
	case ByCurrency:
		return func(a, b Asset) int { return strings.Compare(a.Currency, b.Currency) }, nil
	case ByLocation:
		return func(a, b Asset) int { return strings.Compare(a.Location, b.Location) }, nil
	case ByNotes:
		return func(a, b Asset) int { return strings.Compare(a.Notes, b.Notes) }, nil
	}

	// ByValue: convert once, before sorting.
	converted := make(map[ID]Money, len(c.assets))
	for _, a := range c.assets {
		v, err := Convert(a.Value, a.Currency, display, rates)
		if errors.Is(err, ErrInvalidCurrency) {
			return nil, fmt.Errorf("sort by value: %w", err)
		}
		if err != nil {
			c.logger.Warn("sorting with substituted currency", zap.String("id", a.ID.String()), zap.Error(err))
		}
		converted[a.ID] = M(v, display)
	}
	return func(a, b Asset) int { return converted[a.ID].Amount().Cmp(converted[b.ID].Amount()) }, nil
}

// View projects the assets into display using rates. It changes nothing.
func (c *Collection) View(display string, rates RateTable) (View, error) {
	if !rates.Has(display) {
		return View{}, fmt.Errorf("view: display currency %q: %w", display, ErrInvalidCurrency)
	}
	return View{
		currency: display,
		rates:    rates,
		assets:   slices.Clone(c.assets),
		sort:     c.sort,
	}, nil
}

// Current is the View in the collection's display currency and rates.
func (c *Collection) Current() (View, error) { return c.View(c.display, c.Rates()) }
