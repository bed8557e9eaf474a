// Package scheduler implements the SM-2 derived difficulty-adjustment
// algorithm that maps a review outcome to a card's next scheduling state.
package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/memodeck/memodeck/internal/deck"
)

const (
	againEasePenalty  = 0.2
	easyEaseBonus     = 0.15
	easyIntervalBonus = 1.3

	// A failed card comes back within the same sitting.
	relearnDelay = 10 * time.Minute

	firstGoodIntervalDays  = 1
	secondGoodIntervalDays = 6
	firstEasyIntervalDays  = 4

	// Intervals are unbounded for any plausible study horizon but saturate
	// here (about 100,000 years) so the ceil arithmetic cannot overflow.
	maxIntervalDays = 36_500_000
)

// Next computes the card state that follows one review outcome at the given
// time. It is a pure function: the input card is not mutated, and every
// previously-valid card state maps to a valid new state for any of the three
// outcomes.
//
// Interval multiplication always rounds up, so the learner never sees a
// shorter-than-deserved gap, and intervals grow monotonically while the ease
// factor stays >= 1.
func Next(c deck.Card, outcome Outcome, now time.Time) deck.Card {
	c.ReviewCount++
	c.LastReviewedAt = now

	switch outcome {
	case Again:
		c.AgainCount++
		// Failure discards the accumulated interval but keeps the ease
		// history beyond the single fixed penalty.
		c.IntervalDays = 0
		c.EaseFactor = clampEase(c.EaseFactor - againEasePenalty)
		c.NextReviewAt = now.Add(relearnDelay)

	case Easy:
		c.EasyCount++
		if c.IntervalDays == 0 {
			c.IntervalDays = firstEasyIntervalDays
		} else {
			c.IntervalDays = ceilDays(float64(c.IntervalDays) * c.EaseFactor * easyIntervalBonus)
		}
		c.EaseFactor = clampEase(c.EaseFactor + easyEaseBonus)
		c.NextReviewAt = addDays(now, c.IntervalDays)

	default: // Good
		c.GoodCount++
		switch c.IntervalDays {
		case 0:
			c.IntervalDays = firstGoodIntervalDays
		case 1:
			c.IntervalDays = secondGoodIntervalDays
		default:
			c.IntervalDays = ceilDays(float64(c.IntervalDays) * c.EaseFactor)
		}
		c.NextReviewAt = addDays(now, c.IntervalDays)
	}

	return c
}

// Scheduler is the single mutation entry point for card scheduling state.
// The zero value is usable; Clock and OnApplied are optional.
type Scheduler struct {
	// Clock supplies the current time; nil means time.Now. Tests inject a
	// fixed clock here.
	Clock func() time.Time

	// OnApplied, when set, is invoked with the updated card after every
	// successful scheduling event. Callers use it to propagate mutations
	// (persistence, notifications) without the core doing any I/O itself.
	OnApplied func(deck.Card)
}

// New creates a scheduler that uses the wall clock.
func New() *Scheduler {
	return &Scheduler{}
}

// Apply runs one scheduling event for the identified card.
func (s *Scheduler) Apply(col *deck.Collection, cardID string, outcome Outcome) (deck.Card, error) {
	now := time.Now()
	if s.Clock != nil {
		now = s.Clock()
	}
	return s.ApplyAt(col, cardID, outcome, now)
}

// ApplyAt runs one scheduling event at an explicit time. The card's full
// read-modify-write cycle executes under its lock, so a concurrent call on
// the same card cannot interleave and the counter invariants cannot be
// violated by a lost update; calls on distinct cards proceed in parallel.
func (s *Scheduler) ApplyAt(col *deck.Collection, cardID string, outcome Outcome, now time.Time) (deck.Card, error) {
	if !outcome.Valid() {
		return deck.Card{}, fmt.Errorf("%w: %d", ErrInvalidOutcome, int(outcome))
	}

	updated, err := col.Update(cardID, func(c deck.Card) deck.Card {
		return Next(c, outcome, now)
	})
	if err != nil {
		return deck.Card{}, fmt.Errorf("applying %s to card %s: %w", outcome, cardID, err)
	}

	if s.OnApplied != nil {
		s.OnApplied(updated)
	}
	return updated, nil
}

func clampEase(ease float64) float64 {
	if ease < deck.MinEaseFactor {
		return deck.MinEaseFactor
	}
	if ease > deck.MaxEaseFactor {
		return deck.MaxEaseFactor
	}
	return ease
}

func ceilDays(days float64) int64 {
	d := math.Ceil(days)
	if d >= float64(maxIntervalDays) {
		return maxIntervalDays
	}
	return int64(d)
}

// addDays uses calendar arithmetic rather than a Duration multiply, which
// would overflow int64 nanoseconds near 10^5 days.
func addDays(t time.Time, days int64) time.Time {
	return t.AddDate(0, 0, int(days))
}
