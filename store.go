package assets

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Store is the durable boundary of a Collection. Lookups are always by ID.
//
// Create assigns the ID, the ID of the asset passed to Create or Update is
// ignored. Errors wrap ErrNotFound or ErrPersistence.
type Store interface {
	// LoadAll returns all assets in storage order.
	LoadAll(ctx context.Context) ([]Asset, error)
	Create(ctx context.Context, a Asset) (ID, error)
	Update(ctx context.Context, id ID, a Asset) error
	Delete(ctx context.Context, id ID) error
	// Close releases resources. It is idempotent.
	Close() error
}

// OrderStore is implemented by stores that keep an explicit order.
// SaveOrder receives every ID known to the store, in the new order.
type OrderStore interface {
	Store
	SaveOrder(ctx context.Context, ids []ID) error
}

// MemoryStore is a Store that lives in memory only.
// Assets are kept in a map indexed by ID, and the order in a separate slice.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[ID]Asset
	order  []ID
	closed bool
}

// NewMemoryStore returns a MemoryStore holding a copy of initial, in order.
// Initial assets receive a fresh ID when they don't have one.
func NewMemoryStore(initial ...Asset) *MemoryStore {
	s := &MemoryStore{byID: make(map[ID]Asset)}
	for _, a := range initial {
		if a.ID == "" {
			a.ID = NewID()
		}
		s.byID[a.ID] = a
		s.order = append(s.order, a.ID)
	}
	return s
}

func (s *MemoryStore) check(op string) error {
	if s.closed {
		return fmt.Errorf("%s: %w: store is closed", op, ErrPersistence)
	}
	return nil
}

func (s *MemoryStore) LoadAll(ctx context.Context) ([]Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("load"); err != nil {
		return nil, err
	}
	list := make([]Asset, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.byID[id])
	}
	return list, nil
}

func (s *MemoryStore) Create(ctx context.Context, a Asset) (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("create"); err != nil {
		return "", err
	}
	a.ID = NewID()
	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	return a.ID, nil
}

func (s *MemoryStore) Update(ctx context.Context, id ID, a Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update"); err != nil {
		return err
	}
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	a.ID = id
	s.byID[id] = a
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete"); err != nil {
		return err
	}
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(x ID) bool { return x == id })
	return nil
}

func (s *MemoryStore) SaveOrder(ctx context.Context, ids []ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("save order"); err != nil {
		return err
	}
	if err := sameIDs(s.order, ids); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	s.order = slices.Clone(ids)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// sameIDs checks that ids is a permutation of current.
func sameIDs(current, ids []ID) error {
	if len(current) != len(ids) {
		return fmt.Errorf("%w: order has %d ids, store has %d", ErrPersistence, len(ids), len(current))
	}
	known := make(map[ID]bool, len(current))
	for _, id := range current {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: order contains %s more than once or unknown", ErrNotFound, id)
		}
		delete(known, id)
	}
	return nil
}
