// Package store wraps the on-disk key-value database that keeps the
// user's watchlist and preferences between runs.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/asdine/storm"
)

// settingsBucket holds the persisted user state. Values are JSON-encoded
// by storm's default codec.
const settingsBucket = "settings"

// Keys within the settings bucket.
const (
	KeySelectedCoins = "selectedCoins"
	KeyUserPrefs     = "userPrefs"
)

// Store is a handle to the bolt-backed settings database.
type Store struct {
	db *storm.DB
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := storm.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes a value under the given settings key.
func (s *Store) Put(key string, value any) error {
	if err := s.db.Set(settingsBucket, key, value); err != nil {
		return fmt.Errorf("store put %s: %w", key, err)
	}
	return nil
}

// Load reads the value stored under key into dest. It returns false with
// no error when the key has never been written.
func (s *Store) Load(key string, dest any) (bool, error) {
	err := s.db.Get(settingsBucket, key, dest)
	if err == storm.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store load %s: %w", key, err)
	}
	return true, nil
}

// Delete removes a settings key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Delete(settingsBucket, key)
	if err != nil && err != storm.ErrNotFound {
		return fmt.Errorf("store delete %s: %w", key, err)
	}
	return nil
}
