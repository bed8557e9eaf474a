package storage

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
	id               TEXT PRIMARY KEY,
	collection_id    TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	front            TEXT NOT NULL,
	back             TEXT NOT NULL,
	created_at       TIMESTAMP NOT NULL,
	ease_factor      REAL NOT NULL,
	interval_days    INTEGER NOT NULL,
	next_review_at   TIMESTAMP NOT NULL,
	review_count     INTEGER NOT NULL,
	again_count      INTEGER NOT NULL,
	good_count       INTEGER NOT NULL,
	easy_count       INTEGER NOT NULL,
	last_reviewed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cards_collection ON cards(collection_id);
`
