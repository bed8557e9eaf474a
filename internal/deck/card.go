// Package deck holds the card and collection data model for the study core.
// Cards are value types; the scheduler is the only component that mutates
// their scheduling state, and it does so through Collection.Update so the
// read-modify-write cycle is atomic per card.
package deck

import (
	"time"

	"github.com/google/uuid"
)

// Ease factor bounds and default. The scheduler clamps silently at the
// boundaries rather than erroring.
const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
	DefaultEaseFactor = 2.5
)

// Card represents one learnable question/answer unit together with its
// spaced-repetition scheduling state.
type Card struct {
	ID        string    `json:"id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"created_at"`

	// Scheduling state. Invariants: MinEaseFactor <= EaseFactor <= MaxEaseFactor,
	// IntervalDays >= 0, ReviewCount == AgainCount+GoodCount+EasyCount.
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int64     `json:"interval_days"`
	NextReviewAt   time.Time `json:"next_review_at"`
	ReviewCount    int       `json:"review_count"`
	AgainCount     int       `json:"again_count"`
	GoodCount      int       `json:"good_count"`
	EasyCount      int       `json:"easy_count"`
	LastReviewedAt time.Time `json:"last_reviewed_at,omitempty"`
}

// NewCard creates a card with default scheduling state, due immediately.
func NewCard(front, back string, now time.Time) Card {
	return Card{
		ID:           uuid.New().String(),
		Front:        front,
		Back:         back,
		CreatedAt:    now,
		EaseFactor:   DefaultEaseFactor,
		NextReviewAt: now,
	}
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.ReviewCount == 0
}

// IsDue reports whether the card should be reviewed at the given time.
// Cards that have never been reviewed are always due.
func (c Card) IsDue(now time.Time) bool {
	if c.IsNew() {
		return true
	}
	return !c.NextReviewAt.After(now)
}
