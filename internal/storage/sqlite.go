package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/memodeck/memodeck/internal/deck"
)

// SQLiteStore persists the library in a SQLite database. Save replaces the
// stored snapshot inside a single transaction, so readers of the file never
// see a half-written library.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and ensures the schema
// is in place.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStore{conn: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Load reads every collection and its cards from the database.
func (s *SQLiteStore) Load() (*deck.Library, error) {
	rows, err := s.conn.Query(`SELECT id, name, created_at FROM collections ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var snaps []deck.CollectionSnapshot
	for rows.Next() {
		var snap deck.CollectionSnapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}

	for i := range snaps {
		cards, err := s.loadCards(snaps[i].ID)
		if err != nil {
			return nil, err
		}
		snaps[i].Cards = cards
	}
	return deck.RestoreLibrary(snaps), nil
}

func (s *SQLiteStore) loadCards(collectionID string) ([]deck.Card, error) {
	rows, err := s.conn.Query(`
		SELECT id, front, back, created_at, ease_factor, interval_days,
		       next_review_at, review_count, again_count, good_count,
		       easy_count, last_reviewed_at
		FROM cards WHERE collection_id = ?
		ORDER BY created_at, id
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards for collection %s: %w", collectionID, err)
	}
	defer rows.Close()

	var cards []deck.Card
	for rows.Next() {
		var card deck.Card
		var lastReviewed sql.NullTime
		if err := rows.Scan(
			&card.ID,
			&card.Front,
			&card.Back,
			&card.CreatedAt,
			&card.EaseFactor,
			&card.IntervalDays,
			&card.NextReviewAt,
			&card.ReviewCount,
			&card.AgainCount,
			&card.GoodCount,
			&card.EasyCount,
			&lastReviewed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		if lastReviewed.Valid {
			card.LastReviewedAt = lastReviewed.Time
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

// Save replaces the stored snapshot with the library's current state.
func (s *SQLiteStore) Save(lib *deck.Library) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cards`); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM collections`); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}

	for _, snap := range lib.Snapshot() {
		if _, err := tx.Exec(`
			INSERT INTO collections (id, name, created_at) VALUES (?, ?, ?)
		`, snap.ID, snap.Name, snap.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert collection %s: %w", snap.ID, err)
		}

		for _, card := range snap.Cards {
			var lastReviewed sql.NullTime
			if !card.LastReviewedAt.IsZero() {
				lastReviewed = sql.NullTime{Time: card.LastReviewedAt, Valid: true}
			}
			if _, err := tx.Exec(`
				INSERT INTO cards (
					id, collection_id, front, back, created_at,
					ease_factor, interval_days, next_review_at,
					review_count, again_count, good_count, easy_count,
					last_reviewed_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				card.ID,
				snap.ID,
				card.Front,
				card.Back,
				card.CreatedAt,
				card.EaseFactor,
				card.IntervalDays,
				card.NextReviewAt,
				card.ReviewCount,
				card.AgainCount,
				card.GoodCount,
				card.EasyCount,
				lastReviewed,
			); err != nil {
				return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
var _ Store = (*SQLiteStore)(nil)
