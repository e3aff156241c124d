package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// MemoryStore keeps values in process. With a snapshot path it is loaded at
// start and written back on every change.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	path string
}

// NewMemoryStore returns an empty store that is never written to disk.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

// NewMemoryStoreFromPath loads a JSON snapshot written by a previous run.
// A missing file yields an empty store bound to path.
func NewMemoryStoreFromPath(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	s.path = path
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for k, v := range snap {
		s.data[k] = append([]byte(nil), v...)
	}
	return s, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return s.persistLocked()
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.persistLocked()
}

func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// persistLocked writes the snapshot atomically. Values that are not valid JSON
// are stored as JSON strings.
func (s *MemoryStore) persistLocked() error {
	if s.path == "" {
		return nil
	}
	snap := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		if json.Valid(v) {
			snap[k] = v
			continue
		}
		quoted, err := json.Marshal(string(v))
		if err != nil {
			return err
		}
		snap[k] = quoted
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
