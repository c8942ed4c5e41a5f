package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// InMemoryStore keeps serialized records in a process-local map. Used by
// tests and the dev loop; contents vanish on restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	logger  *slog.Logger
}

// NewInMemoryStore creates an empty in-memory record store.
func NewInMemoryStore(logger *slog.Logger) *InMemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryStore{
		records: make(map[string][]byte),
		logger:  logger.With("component", "inmemory_store"),
	}
}

// Load implements Store.
func (s *InMemoryStore) Load(ctx context.Context, userID string) (*ConversationRecord, LoadSource, error) {
	s.mu.RLock()
	b, exists := s.records[userID]
	s.mu.RUnlock()

	if !exists {
		return NewRecord(userID), SourceDefaultNew, nil
	}

	var record ConversationRecord
	if err := json.Unmarshal(b, &record); err != nil || !record.Valid() {
		s.logger.Warn("corrupt record, using default", "user_id", userID, "error", err)
		return NewRecord(userID), SourceDefaultRecovered, nil
	}
	record.UserID = userID
	return &record, SourceStored, nil
}

// Save implements Store.
func (s *InMemoryStore) Save(ctx context.Context, record *ConversationRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		return ErrStoreClosed
	}
	s.records[record.UserID] = b
	return nil
}

// Close implements Store.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Corrupt overwrites a stored record with unparseable bytes. Test hook for
// exercising the SourceDefaultRecovered path.
func (s *InMemoryStore) Corrupt(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = []byte("{not json")
}
