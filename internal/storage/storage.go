// Package storage persists library snapshots. The scheduling core performs
// no I/O of its own; the caller saves after the scheduler returns updated
// state.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/memodeck/memodeck/internal/deck"
)

// Store is the persistence boundary for the study library.
type Store interface {
	Load() (*deck.Library, error)
	Save(lib *deck.Library) error
	Close() error
}

// librarySnapshot is the JSON file layout.
type librarySnapshot struct {
	Collections []deck.CollectionSnapshot `json:"collections"`
	LastUpdated time.Time                 `json:"last_updated"`
}

// FileStore persists the library as a single JSON file, written atomically
// via a temp file and rename.
type FileStore struct {
	filePath string
	mu       sync.Mutex
}

// NewFileStore creates a file store for the given path. The file is created
// on first Save.
func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

// Load reads the library from disk. A missing or empty file yields an empty
// library.
func (fs *FileStore) Load() (*deck.Library, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		return deck.NewLibrary(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	if len(data) == 0 {
		return deck.NewLibrary(), nil
	}

	var snap librarySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storage data: %w", err)
	}
	return deck.RestoreLibrary(snap.Collections), nil
}

// Save writes the library to disk atomically.
func (fs *FileStore) Save(lib *deck.Library) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	snap := librarySnapshot{
		Collections: lib.Snapshot(),
		LastUpdated: time.Now(),
	}
	if snap.Collections == nil {
		snap.Collections = []deck.CollectionSnapshot{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage data: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fs.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tempFile := fs.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, fs.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// Close implements Store; a file store holds no open resources.
func (fs *FileStore) Close() error { return nil }
