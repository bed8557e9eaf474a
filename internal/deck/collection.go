package deck

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCardNotFound is returned when a card id does not exist in a collection.
var ErrCardNotFound = errors.New("card not found")

// ErrDuplicateCard is returned when a card id is inserted twice.
var ErrDuplicateCard = errors.New("card already exists")

// Collection is a named set of cards. It owns its cards exclusively: a card
// belongs to exactly one collection and becomes unreachable when the
// collection is deleted.
//
// Each card sits behind its own lock, so scheduling events on the same card
// serialize while events on distinct cards proceed in parallel. Readers of a
// card take its read lock and therefore always observe a fully pre- or
// post-mutation state, never a torn one.
type Collection struct {
	id        string
	name      string
	createdAt time.Time

	mu      sync.RWMutex // guards the entries map, not the cards themselves
	entries map[string]*cardEntry
}

type cardEntry struct {
	mu   sync.RWMutex
	card Card
}

// NewCollection creates an empty collection with a generated id.
func NewCollection(name string, now time.Time) *Collection {
	return &Collection{
		id:        uuid.New().String(),
		name:      name,
		createdAt: now,
		entries:   make(map[string]*cardEntry),
	}
}

// ID returns the collection's stable identifier.
func (c *Collection) ID() string { return c.id }

// Name returns the collection's display name.
func (c *Collection) Name() string { return c.name }

// CreatedAt returns the collection's creation time.
func (c *Collection) CreatedAt() time.Time { return c.createdAt }

// AddCard inserts a card produced by the content pipeline.
func (c *Collection) AddCard(card Card) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[card.ID]; exists {
		return ErrDuplicateCard
	}
	c.entries[card.ID] = &cardEntry{card: card}
	return nil
}

// Card returns a snapshot of the card with the given id.
func (c *Collection) Card(id string) (Card, error) {
	entry, err := c.entry(id)
	if err != nil {
		return Card{}, err
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	return entry.card, nil
}

// RemoveCard deletes a card. Deletion is a collection-management operation;
// the scheduler never removes cards.
func (c *Collection) RemoveCard(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; !exists {
		return ErrCardNotFound
	}
	delete(c.entries, id)
	return nil
}

// Len returns the number of cards in the collection.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cards returns a snapshot of all cards, ordered by creation time with ties
// broken by id so callers see a deterministic order.
func (c *Collection) Cards() []Card {
	c.mu.RLock()
	cards := make([]Card, 0, len(c.entries))
	for _, entry := range c.entries {
		entry.mu.RLock()
		cards = append(cards, entry.card)
		entry.mu.RUnlock()
	}
	c.mu.RUnlock()

	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID < cards[j].ID
	})
	return cards
}

// Update applies fn to the card with the given id while holding the card's
// write lock for the entire read-modify-write cycle, and returns the updated
// snapshot. Concurrent updates to the same card serialize; updates to
// distinct cards do not block each other.
func (c *Collection) Update(id string, fn func(Card) Card) (Card, error) {
	entry, err := c.entry(id)
	if err != nil {
		return Card{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.card = fn(entry.card)
	return entry.card, nil
}

func (c *Collection) entry(id string) (*cardEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[id]
	if !exists {
		return nil, ErrCardNotFound
	}
	return entry, nil
}

// Aggregates holds metrics derived from a collection's cards, recomputed on
// demand rather than stored.
type Aggregates struct {
	TotalReviews int       `json:"total_reviews"`
	AverageEase  float64   `json:"average_ease"`
	LastReviewAt time.Time `json:"last_review_at,omitempty"`
}

// Aggregates computes the collection's derived metrics. An empty collection
// yields the zero value.
func (c *Collection) Aggregates() Aggregates {
	cards := c.Cards()
	if len(cards) == 0 {
		return Aggregates{}
	}

	var agg Aggregates
	var easeSum float64
	for _, card := range cards {
		agg.TotalReviews += card.ReviewCount
		easeSum += card.EaseFactor
		if card.LastReviewedAt.After(agg.LastReviewAt) {
			agg.LastReviewAt = card.LastReviewedAt
		}
	}
	agg.AverageEase = easeSum / float64(len(cards))
	return agg
}

// CollectionSnapshot is the persistence form of a collection. The storage
// layer saves and restores these; the live Collection keeps its cards behind
// per-card locks.
type CollectionSnapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Cards     []Card    `json:"cards"`
}

// Snapshot captures the collection's full state for persistence.
func (c *Collection) Snapshot() CollectionSnapshot {
	return CollectionSnapshot{
		ID:        c.id,
		Name:      c.name,
		CreatedAt: c.createdAt,
		Cards:     c.Cards(),
	}
}

// RestoreCollection rebuilds a collection from a persisted snapshot.
func RestoreCollection(s CollectionSnapshot) *Collection {
	col := &Collection{
		id:        s.ID,
		name:      s.Name,
		createdAt: s.CreatedAt,
		entries:   make(map[string]*cardEntry, len(s.Cards)),
	}
	for _, card := range s.Cards {
		col.entries[card.ID] = &cardEntry{card: card}
	}
	return col
}
