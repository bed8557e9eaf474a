// Package session builds review queues from card collections. All of its
// operations are read-only with respect to card state; only the scheduler
// mutates cards.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/memodeck/memodeck/internal/deck"
)

// Default caps on the new/review mix of a study session.
const (
	DefaultMaxNew    = 5
	DefaultMaxReview = 20
)

// ErrNegativeLimit is returned when a session is requested with a negative
// cap. Negative caps are a caller-contract violation and fail fast rather
// than clamping, to surface integration bugs early.
var ErrNegativeLimit = errors.New("session limit must not be negative")

// DailyQueue returns every due card across the given collections, most
// overdue first, ties broken by card id. Cards not yet due are excluded
// entirely.
func DailyQueue(now time.Time, collections ...*deck.Collection) []deck.Card {
	var due []deck.Card
	for _, col := range collections {
		for _, card := range col.Cards() {
			if card.IsDue(now) {
				due = append(due, card)
			}
		}
	}
	sortByDue(due)
	return due
}

// Builder assembles randomized study sessions. The random source is injected
// so tests can assert shuffle behavior with a fixed seed; it is not safe for
// concurrent use by multiple goroutines.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a session builder. A nil rng falls back to a source
// seeded from the current time.
func NewBuilder(rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Builder{rng: rng}
}

// StudySession selects up to maxNew never-reviewed cards and up to maxReview
// due review cards from the collection, then returns the combined set in
// randomized order so presentation order cannot be gamed. When fewer cards
// are available than the caps, all available cards are returned; the result
// is never padded and never repeats a card.
func (b *Builder) StudySession(col *deck.Collection, maxNew, maxReview int, now time.Time) ([]deck.Card, error) {
	if maxNew < 0 || maxReview < 0 {
		return nil, fmt.Errorf("%w: maxNew=%d maxReview=%d", ErrNegativeLimit, maxNew, maxReview)
	}

	var newCards, reviews []deck.Card
	for _, card := range col.Cards() {
		switch {
		case card.IsNew():
			// Cards() is in creation order, so the cap keeps the oldest
			// unseen cards.
			if len(newCards) < maxNew {
				newCards = append(newCards, card)
			}
		case card.IsDue(now):
			reviews = append(reviews, card)
		}
	}

	// Most overdue reviews win the cap.
	sortByDue(reviews)
	if len(reviews) > maxReview {
		reviews = reviews[:maxReview]
	}

	mix := make([]deck.Card, 0, len(newCards)+len(reviews))
	mix = append(mix, newCards...)
	mix = append(mix, reviews...)

	b.rng.Shuffle(len(mix), func(i, j int) {
		mix[i], mix[j] = mix[j], mix[i]
	})
	return mix, nil
}

func sortByDue(cards []deck.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].NextReviewAt.Equal(cards[j].NextReviewAt) {
			return cards[i].NextReviewAt.Before(cards[j].NextReviewAt)
		}
		return cards[i].ID < cards[j].ID
	})
}
