package deck

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrCollectionNotFound is returned when a collection id is unknown.
var ErrCollectionNotFound = errors.New("collection not found")

// Library is the registry of all card collections known to the application.
type Library struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{collections: make(map[string]*Collection)}
}

// CreateCollection creates and registers a new empty collection.
func (l *Library) CreateCollection(name string, now time.Time) *Collection {
	col := NewCollection(name, now)

	l.mu.Lock()
	l.collections[col.ID()] = col
	l.mu.Unlock()

	return col
}

// Collection returns the collection with the given id.
func (l *Library) Collection(id string) (*Collection, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	col, exists := l.collections[id]
	if !exists {
		return nil, ErrCollectionNotFound
	}
	return col, nil
}

// Collections returns all collections ordered by creation time, ties broken
// by id.
func (l *Library) Collections() []*Collection {
	l.mu.RLock()
	cols := make([]*Collection, 0, len(l.collections))
	for _, col := range l.collections {
		cols = append(cols, col)
	}
	l.mu.RUnlock()

	sort.Slice(cols, func(i, j int) bool {
		if !cols[i].CreatedAt().Equal(cols[j].CreatedAt()) {
			return cols[i].CreatedAt().Before(cols[j].CreatedAt())
		}
		return cols[i].ID() < cols[j].ID()
	})
	return cols
}

// DeleteCollection removes a collection; its cards become unreachable.
func (l *Library) DeleteCollection(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.collections[id]; !exists {
		return ErrCollectionNotFound
	}
	delete(l.collections, id)
	return nil
}

// Snapshot captures every collection for persistence.
func (l *Library) Snapshot() []CollectionSnapshot {
	cols := l.Collections()
	snaps := make([]CollectionSnapshot, 0, len(cols))
	for _, col := range cols {
		snaps = append(snaps, col.Snapshot())
	}
	return snaps
}

// RestoreLibrary rebuilds a library from persisted collection snapshots.
func RestoreLibrary(snaps []CollectionSnapshot) *Library {
	lib := NewLibrary()
	for _, s := range snaps {
		lib.collections[s.ID] = RestoreCollection(s)
	}
	return lib
}
