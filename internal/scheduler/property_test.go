package scheduler

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/memodeck/memodeck/internal/deck"
)

// genOutcomes generates arbitrary review histories.
func genOutcomes() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(Again, Good, Easy))
}

// replay applies the outcome sequence to a fresh card, advancing the clock a
// day per review, and returns the final state.
func replay(outcomes []Outcome) deck.Card {
	card := deck.NewCard("front", "back", testNow)
	now := testNow
	for _, outcome := range outcomes {
		card = Next(card, outcome, now)
		now = now.AddDate(0, 0, 1)
	}
	return card
}

func TestSchedulerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ease factor stays within bounds", prop.ForAll(
		func(outcomes []Outcome) bool {
			card := replay(outcomes)
			return card.EaseFactor >= deck.MinEaseFactor && card.EaseFactor <= deck.MaxEaseFactor
		},
		genOutcomes(),
	))

	properties.Property("interval never goes negative", prop.ForAll(
		func(outcomes []Outcome) bool {
			return replay(outcomes).IntervalDays >= 0
		},
		genOutcomes(),
	))

	properties.Property("counter identity holds after every history", prop.ForAll(
		func(outcomes []Outcome) bool {
			card := replay(outcomes)
			return card.ReviewCount == card.AgainCount+card.GoodCount+card.EasyCount &&
				card.ReviewCount == len(outcomes)
		},
		genOutcomes(),
	))

	properties.Property("a final failure always leaves the card reset", prop.ForAll(
		func(outcomes []Outcome) bool {
			card := replay(append(outcomes, Again))
			return card.IntervalDays == 0
		},
		genOutcomes(),
	))

	properties.Property("every state reached is a valid input again", prop.ForAll(
		func(outcomes []Outcome, extra int) bool {
			card := replay(outcomes)
			// One more review of any kind must still produce a valid state.
			next := Next(card, []Outcome{Again, Good, Easy}[extra%3], testNow.AddDate(10, 0, 0))
			return next.EaseFactor >= deck.MinEaseFactor &&
				next.EaseFactor <= deck.MaxEaseFactor &&
				next.IntervalDays >= 0 &&
				next.ReviewCount == card.ReviewCount+1
		},
		genOutcomes(),
		gen.IntRange(0, 2),
	))

	properties.Property("reviewed cards are never due before their interval elapses", prop.ForAll(
		func(outcomes []Outcome) bool {
			if len(outcomes) == 0 {
				return true
			}
			card := replay(outcomes)
			if card.IntervalDays == 0 {
				return true
			}
			// The card must not be due the moment it was rescheduled.
			return !card.IsDue(card.LastReviewedAt.Add(time.Minute))
		},
		genOutcomes(),
	))

	properties.TestingRun(t)
}
