// Package memory is an in-process storage backend used for development and
// tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintrack/internal/storage"
)

// Store keeps each key as its JSON encoding, so callers never share memory
// with stored values.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewFromFiles seeds the store from base/<key>.json files. Unreadable or
// invalid files are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	matches, _ := filepath.Glob(filepath.Join(base, "*.json"))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil || !json.Valid(raw) {
			continue
		}
		key := strings.TrimSuffix(filepath.Base(path), ".json")
		s.items[key] = raw
	}
	return s
}

func (s *Store) Load(_ context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", storage.ErrStorage, key, err)
	}
	return true, nil
}

func (s *Store) Save(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", storage.ErrStorage, key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = raw
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// Keys lists the stored keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys
}
