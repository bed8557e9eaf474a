package stats

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/memodeck/memodeck/internal/deck"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func addCard(t *testing.T, col *deck.Collection, card deck.Card) {
	t.Helper()
	if err := col.AddCard(card); err != nil {
		t.Fatalf("AddCard: %v", err)
	}
}

func reviewedCard(due time.Time, reviews int) deck.Card {
	card := deck.NewCard("front", "back", testNow.Add(-30*24*time.Hour))
	card.ReviewCount = reviews
	card.GoodCount = reviews
	card.IntervalDays = 1
	card.NextReviewAt = due
	card.LastReviewedAt = due.AddDate(0, 0, -1)
	return card
}

func TestCollectEmptyCollection(t *testing.T) {
	col := deck.NewCollection("empty", testNow)
	if diff := cmp.Diff(CollectionStats{}, Collect(col, testNow)); diff != "" {
		t.Errorf("empty collection stats (-want +got):\n%s", diff)
	}
}

func TestCollectCounts(t *testing.T) {
	col := deck.NewCollection("test", testNow)
	addCard(t, col, deck.NewCard("new", "card", testNow))
	addCard(t, col, reviewedCard(testNow.Add(-time.Hour), 3))
	addCard(t, col, reviewedCard(testNow.Add(time.Hour), 2))

	want := CollectionStats{
		TotalCards:   3,
		DueCards:     2, // the new card plus the overdue one
		NewCards:     1,
		TotalReviews: 5,
	}
	if diff := cmp.Diff(want, Collect(col, testNow)); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestDueCountSpansCollections(t *testing.T) {
	a := deck.NewCollection("a", testNow)
	b := deck.NewCollection("b", testNow)
	addCard(t, a, reviewedCard(testNow.Add(-time.Hour), 1))
	addCard(t, b, deck.NewCard("new", "card", testNow))
	addCard(t, b, reviewedCard(testNow.Add(time.Hour), 1))

	if got := DueCount(testNow, a, b); got != 2 {
		t.Errorf("expected 2 due cards, got %d", got)
	}
}

func TestEstimateStudyMinutesFloors(t *testing.T) {
	cases := []struct {
		due  int
		want int
	}{
		{0, 0},
		{1, 0},  // 30s floors to zero minutes
		{2, 1},  // exactly one minute
		{3, 1},  // 90s floors to one
		{10, 5},
	}
	for _, tc := range cases {
		col := deck.NewCollection("test", testNow)
		for i := 0; i < tc.due; i++ {
			addCard(t, col, reviewedCard(testNow.Add(-time.Hour), 1))
		}
		if got := EstimateStudyMinutes(testNow, col); got != tc.want {
			t.Errorf("%d due cards: expected %d minutes, got %d", tc.due, tc.want, got)
		}
	}
}
