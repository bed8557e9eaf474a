// Package stats derives aggregate counts and time estimates from card
// collections. All operations are pure reads; empty collections yield zero
// values rather than errors.
package stats

import (
	"time"

	"github.com/memodeck/memodeck/internal/deck"
)

// SecondsPerCard is the per-card time assumption behind study estimates.
const SecondsPerCard = 30

// CollectionStats aggregates review-state counts for one collection.
// DueCards counts both never-reviewed cards and cards past their next review
// time.
type CollectionStats struct {
	TotalCards   int `json:"total_cards"`
	DueCards     int `json:"due_cards"`
	NewCards     int `json:"new_cards"`
	TotalReviews int `json:"total_reviews"`
}

// Collect computes the stats for a collection at the given time.
func Collect(col *deck.Collection, now time.Time) CollectionStats {
	var s CollectionStats
	for _, card := range col.Cards() {
		s.TotalCards++
		s.TotalReviews += card.ReviewCount
		if card.IsNew() {
			s.NewCards++
		}
		if card.IsDue(now) {
			s.DueCards++
		}
	}
	return s
}

// DueCount returns the number of due cards (new + overdue) across the
// collections.
func DueCount(now time.Time, collections ...*deck.Collection) int {
	due := 0
	for _, col := range collections {
		for _, card := range col.Cards() {
			if card.IsDue(now) {
				due++
			}
		}
	}
	return due
}

// EstimateStudyMinutes estimates how long clearing the due cards across the
// collections would take, at SecondsPerCard per card, floored to whole
// minutes.
func EstimateStudyMinutes(now time.Time, collections ...*deck.Collection) int {
	return DueCount(now, collections...) * SecondsPerCard / 60
}
