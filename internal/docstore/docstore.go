// Package docstore implements the whole-collection JSON document store.
//
// Every entity collection is one JSON array document, read and rewritten
// wholesale on each mutation. A per-collection mutex is held across the
// read-modify-write in Update, so two in-flight mutations of the same
// collection cannot lose each other's writes.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Collection names, one JSON document each.
const (
	CollUsers          = "users"
	CollVendorProfiles = "vendorProfiles"
	CollServices       = "services"
	CollBookings       = "bookings"
	CollBudgets        = "budgets"
	CollLegacyVendors  = "vendors"
	CollTraditions     = "traditions"
	CollNotifications  = "notifications"
)

// Backend reads and writes raw collection documents by name.
// Read returns (nil, nil) for a collection that does not exist yet.
type Backend interface {
	Read(ctx context.Context, collection string) ([]byte, error)
	Write(ctx context.Context, collection string, data []byte) error
}

// Store serializes access to collections on top of a Backend.
type Store struct {
	backend Backend

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(backend Backend) *Store {
	return &Store{backend: backend, locks: make(map[string]*sync.Mutex)}
}

func (s *Store) lock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

func load[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	raw, err := s.backend.Read(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("read collection %q: %w", collection, err)
	}
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode collection %q: %w", collection, err)
	}
	return items, nil
}

func save[T any](ctx context.Context, s *Store, collection string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection %q: %w", collection, err)
	}
	if err := s.backend.Write(ctx, collection, raw); err != nil {
		return fmt.Errorf("write collection %q: %w", collection, err)
	}
	return nil
}

// LoadAll returns every record of a collection. A missing collection loads
// as an empty slice.
func LoadAll[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()
	return load[T](ctx, s, collection)
}

// SaveAll rewrites a collection. Prefer Update for read-modify-write.
func SaveAll[T any](ctx context.Context, s *Store, collection string, items []T) error {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()
	return save(ctx, s, collection, items)
}

// Update applies fn to the current records and persists the result, holding
// the collection lock for the whole cycle. fn returning an error aborts the
// write and the error is returned unchanged.
func Update[T any](ctx context.Context, s *Store, collection string, fn func([]T) ([]T, error)) ([]T, error) {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()

	items, err := load[T](ctx, s, collection)
	if err != nil {
		return nil, err
	}
	next, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := save(ctx, s, collection, next); err != nil {
		return nil, err
	}
	return next, nil
}
