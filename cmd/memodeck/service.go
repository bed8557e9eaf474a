package main

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/memodeck/memodeck/internal/config"
	"github.com/memodeck/memodeck/internal/deck"
	"github.com/memodeck/memodeck/internal/scheduler"
	"github.com/memodeck/memodeck/internal/session"
	"github.com/memodeck/memodeck/internal/stats"
	"github.com/memodeck/memodeck/internal/storage"
)

// Variable to allow mocking time.Now in tests.
var timeNow = time.Now

// StudyService wires the scheduling core to persistence and exposes the
// operations the tool surface needs. The core itself performs no I/O; the
// service saves the library after every mutation.
type StudyService struct {
	Library   *deck.Library
	Scheduler *scheduler.Scheduler
	Sessions  *session.Builder
	Store     storage.Store
	Logger    *zap.Logger

	cfg config.Config
}

// NewStudyService loads the library from the store and assembles the service.
func NewStudyService(store storage.Store, cfg config.Config) (*StudyService, error) {
	lib, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading library: %w", err)
	}

	logger := newLogger(cfg.Logging.Level)

	s := &StudyService{
		Library:  lib,
		Sessions: session.NewBuilder(nil),
		Store:    store,
		Logger:   logger,
		cfg:      cfg,
	}
	s.Scheduler = &scheduler.Scheduler{
		Clock: func() time.Time { return timeNow() },
		OnApplied: func(card deck.Card) {
			logger.Debug("card scheduled",
				zap.String("card_id", card.ID),
				zap.Int64("interval_days", card.IntervalDays),
				zap.Float64("ease_factor", card.EaseFactor),
				zap.Time("next_review_at", card.NextReviewAt))
		},
	}
	return s, nil
}

func newLogger(level string) *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	logConfig.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := logConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// CreateCollection registers a new empty collection and persists it.
func (s *StudyService) CreateCollection(name string) (CollectionInfo, error) {
	col := s.Library.CreateCollection(name, timeNow())
	s.Logger.Debug("collection created", zap.String("collection_id", col.ID()), zap.String("name", name))

	if err := s.Store.Save(s.Library); err != nil {
		return CollectionInfo{}, fmt.Errorf("saving library after creating collection: %w", err)
	}
	return collectionInfo(col), nil
}

// ListCollections returns every collection with its derived aggregates.
func (s *StudyService) ListCollections() []CollectionInfo {
	cols := s.Library.Collections()
	infos := make([]CollectionInfo, 0, len(cols))
	for _, col := range cols {
		infos = append(infos, collectionInfo(col))
	}
	return infos
}

// CreateCard inserts a new card with default scheduling state into a
// collection, as the content pipeline would.
func (s *StudyService) CreateCard(collectionID, front, back string) (deck.Card, error) {
	col, err := s.Library.Collection(collectionID)
	if err != nil {
		return deck.Card{}, fmt.Errorf("getting collection %s: %w", collectionID, err)
	}

	card := deck.NewCard(front, back, timeNow())
	if err := col.AddCard(card); err != nil {
		return deck.Card{}, fmt.Errorf("adding card to collection %s: %w", collectionID, err)
	}
	s.Logger.Debug("card created", zap.String("card_id", card.ID), zap.String("collection_id", collectionID))

	if err := s.Store.Save(s.Library); err != nil {
		return deck.Card{}, fmt.Errorf("saving library after creating card: %w", err)
	}
	return card, nil
}

// DeleteCard removes a card from a collection.
func (s *StudyService) DeleteCard(collectionID, cardID string) error {
	col, err := s.Library.Collection(collectionID)
	if err != nil {
		return fmt.Errorf("getting collection %s: %w", collectionID, err)
	}
	if err := col.RemoveCard(cardID); err != nil {
		return fmt.Errorf("removing card %s: %w", cardID, err)
	}
	if err := s.Store.Save(s.Library); err != nil {
		return fmt.Errorf("saving library after deleting card: %w", err)
	}
	return nil
}

// ListCards returns a collection's cards with its stats.
func (s *StudyService) ListCards(collectionID string) ([]deck.Card, stats.CollectionStats, error) {
	col, err := s.Library.Collection(collectionID)
	if err != nil {
		return nil, stats.CollectionStats{}, fmt.Errorf("getting collection %s: %w", collectionID, err)
	}
	return col.Cards(), stats.Collect(col, timeNow()), nil
}

// SubmitReview forwards one (card, outcome) pair to the scheduler and
// persists the updated state.
func (s *StudyService) SubmitReview(collectionID, cardID string, outcome scheduler.Outcome) (deck.Card, error) {
	return s.SubmitReviewWithTime(collectionID, cardID, outcome, timeNow())
}

// SubmitReviewWithTime is SubmitReview with an explicit timestamp so tests
// can supply a simulated "now".
func (s *StudyService) SubmitReviewWithTime(collectionID, cardID string, outcome scheduler.Outcome, now time.Time) (deck.Card, error) {
	s.Logger.Debug("submit review",
		zap.String("collection_id", collectionID),
		zap.String("card_id", cardID),
		zap.Stringer("outcome", outcome))

	col, err := s.Library.Collection(collectionID)
	if err != nil {
		return deck.Card{}, fmt.Errorf("getting collection %s: %w", collectionID, err)
	}

	updated, err := s.Scheduler.ApplyAt(col, cardID, outcome, now)
	if err != nil {
		return deck.Card{}, err
	}

	if err := s.Store.Save(s.Library); err != nil {
		return deck.Card{}, fmt.Errorf("saving library after review: %w", err)
	}
	return updated, nil
}

// DailyQueue returns all due cards across the named collections (or all
// collections when none are named), most overdue first.
func (s *StudyService) DailyQueue(collectionIDs []string) ([]deck.Card, error) {
	cols, err := s.resolveCollections(collectionIDs)
	if err != nil {
		return nil, err
	}
	return session.DailyQueue(timeNow(), cols...), nil
}

// StudySession builds a randomized session mix from one collection. Negative
// caps are rejected by the queue builder; caps below zero never clamp.
func (s *StudyService) StudySession(collectionID string, maxNew, maxReview int) ([]deck.Card, error) {
	col, err := s.Library.Collection(collectionID)
	if err != nil {
		return nil, fmt.Errorf("getting collection %s: %w", collectionID, err)
	}
	return s.Sessions.StudySession(col, maxNew, maxReview, timeNow())
}

// CollectionStats reports aggregate counts for one collection.
func (s *StudyService) CollectionStats(collectionID string) (stats.CollectionStats, error) {
	col, err := s.Library.Collection(collectionID)
	if err != nil {
		return stats.CollectionStats{}, fmt.Errorf("getting collection %s: %w", collectionID, err)
	}
	return stats.Collect(col, timeNow()), nil
}

// EstimateStudyMinutes reports the due count and the whole-minute estimate
// that feeds the external reminder scheduler.
func (s *StudyService) EstimateStudyMinutes(collectionIDs []string) (dueCards, minutes int, err error) {
	cols, err := s.resolveCollections(collectionIDs)
	if err != nil {
		return 0, 0, err
	}
	now := timeNow()
	return stats.DueCount(now, cols...), stats.EstimateStudyMinutes(now, cols...), nil
}

// SessionDefaults returns the configured session caps.
func (s *StudyService) SessionDefaults() (maxNew, maxReview int) {
	return s.cfg.Session.MaxNew, s.cfg.Session.MaxReview
}

// WithRand replaces the session builder's random source. Tests use a fixed
// seed to make shuffle assertions deterministic.
func (s *StudyService) WithRand(rng *rand.Rand) {
	s.Sessions = session.NewBuilder(rng)
}

func (s *StudyService) resolveCollections(ids []string) ([]*deck.Collection, error) {
	if len(ids) == 0 {
		return s.Library.Collections(), nil
	}
	cols := make([]*deck.Collection, 0, len(ids))
	for _, id := range ids {
		col, err := s.Library.Collection(id)
		if err != nil {
			return nil, fmt.Errorf("getting collection %s: %w", id, err)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func collectionInfo(col *deck.Collection) CollectionInfo {
	return CollectionInfo{
		ID:         col.ID(),
		Name:       col.Name(),
		CreatedAt:  col.CreatedAt(),
		Aggregates: col.Aggregates(),
	}
}
