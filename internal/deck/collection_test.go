package deck

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCollectionAddAndGet(t *testing.T) {
	col := NewCollection("biology", testNow)
	if col.ID() == "" {
		t.Error("expected collection to have an id")
	}
	if col.Name() != "biology" {
		t.Errorf("expected name %q, got %q", "biology", col.Name())
	}

	card := NewCard("front", "back", testNow)
	if err := col.AddCard(card); err != nil {
		t.Fatalf("AddCard: %v", err)
	}
	if err := col.AddCard(card); !errors.Is(err, ErrDuplicateCard) {
		t.Errorf("expected ErrDuplicateCard, got %v", err)
	}

	got, err := col.Card(card.ID)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if diff := cmp.Diff(card, got); diff != "" {
		t.Errorf("card mismatch (-want +got):\n%s", diff)
	}

	if _, err := col.Card("missing"); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}

func TestCollectionRemoveCard(t *testing.T) {
	col := NewCollection("test", testNow)
	card := NewCard("front", "back", testNow)
	if err := col.AddCard(card); err != nil {
		t.Fatalf("AddCard: %v", err)
	}

	if err := col.RemoveCard(card.ID); err != nil {
		t.Fatalf("RemoveCard: %v", err)
	}
	if col.Len() != 0 {
		t.Errorf("expected empty collection, got %d cards", col.Len())
	}
	if err := col.RemoveCard(card.ID); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}

func TestCollectionCardsOrder(t *testing.T) {
	col := NewCollection("test", testNow)
	var want []string
	for i := 0; i < 5; i++ {
		card := NewCard("front", "back", testNow.Add(time.Duration(i)*time.Minute))
		want = append(want, card.ID)
		if err := col.AddCard(card); err != nil {
			t.Fatalf("AddCard: %v", err)
		}
	}

	cards := col.Cards()
	if len(cards) != 5 {
		t.Fatalf("expected 5 cards, got %d", len(cards))
	}
	for i, card := range cards {
		if card.ID != want[i] {
			t.Errorf("position %d: expected card %s, got %s", i, want[i], card.ID)
		}
	}
}

func TestCollectionUpdate(t *testing.T) {
	col := NewCollection("test", testNow)
	card := NewCard("front", "back", testNow)
	if err := col.AddCard(card); err != nil {
		t.Fatalf("AddCard: %v", err)
	}

	updated, err := col.Update(card.ID, func(c Card) Card {
		c.ReviewCount++
		c.GoodCount++
		return c
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ReviewCount != 1 {
		t.Errorf("expected review count 1, got %d", updated.ReviewCount)
	}

	stored, err := col.Card(card.ID)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if stored.ReviewCount != 1 {
		t.Errorf("update not visible: review count %d", stored.ReviewCount)
	}

	if _, err := col.Update("missing", func(c Card) Card { return c }); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}

// TestCollectionUpdateAtomic runs concurrent read-modify-write cycles on one
// card; none may be lost.
func TestCollectionUpdateAtomic(t *testing.T) {
	col := NewCollection("test", testNow)
	card := NewCard("front", "back", testNow)
	if err := col.AddCard(card); err != nil {
		t.Fatalf("AddCard: %v", err)
	}

	const workers = 100
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := col.Update(card.ID, func(c Card) Card {
				c.ReviewCount++
				c.GoodCount++
				return c
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	final, err := col.Card(card.ID)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if final.ReviewCount != workers {
		t.Errorf("lost update: expected %d, got %d", workers, final.ReviewCount)
	}
	if final.ReviewCount != final.GoodCount {
		t.Errorf("torn update: review=%d good=%d", final.ReviewCount, final.GoodCount)
	}
}

func TestCollectionAggregates(t *testing.T) {
	col := NewCollection("test", testNow)

	if diff := cmp.Diff(Aggregates{}, col.Aggregates()); diff != "" {
		t.Errorf("empty collection aggregates (-want +got):\n%s", diff)
	}

	a := NewCard("a", "a", testNow)
	a.ReviewCount, a.GoodCount = 3, 3
	a.EaseFactor = 2.0
	a.LastReviewedAt = testNow.Add(-time.Hour)

	b := NewCard("b", "b", testNow)
	b.ReviewCount, b.EasyCount = 5, 5
	b.EaseFactor = 3.0
	b.LastReviewedAt = testNow

	for _, card := range []Card{a, b} {
		if err := col.AddCard(card); err != nil {
			t.Fatalf("AddCard: %v", err)
		}
	}

	agg := col.Aggregates()
	if agg.TotalReviews != 8 {
		t.Errorf("expected 8 total reviews, got %d", agg.TotalReviews)
	}
	if agg.AverageEase != 2.5 {
		t.Errorf("expected average ease 2.5, got %v", agg.AverageEase)
	}
	if !agg.LastReviewAt.Equal(testNow) {
		t.Errorf("expected last review %v, got %v", testNow, agg.LastReviewAt)
	}
}

func TestCollectionSnapshotRoundTrip(t *testing.T) {
	col := NewCollection("test", testNow)
	for i := 0; i < 3; i++ {
		card := NewCard("front", "back", testNow.Add(time.Duration(i)*time.Second))
		if err := col.AddCard(card); err != nil {
			t.Fatalf("AddCard: %v", err)
		}
	}

	snap := col.Snapshot()
	restored := RestoreCollection(snap)

	if restored.ID() != col.ID() || restored.Name() != col.Name() {
		t.Error("restored collection identity mismatch")
	}
	if diff := cmp.Diff(col.Cards(), restored.Cards()); diff != "" {
		t.Errorf("restored cards mismatch (-want +got):\n%s", diff)
	}
}
