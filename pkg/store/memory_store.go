package store

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. It stands in for the browser
// key-value store in tests and examples.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (s *MemoryStore) Load(_ context.Context, key string) (Record, bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return Record{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return Record{}, false, nil
	}
	return cloneRecord(record), true, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, record Record) (Meta, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	s.records[key] = cloneRecord(record)
	s.mu.Unlock()
	return cloneMeta(record.Meta), nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// Len reports how many keys currently hold a record.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
