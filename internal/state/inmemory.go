package state

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// InMemoryStore is a simple in-process state store for local/dev use.
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string][]byte)}
}

func (s *InMemoryStore) Load(_ context.Context, conversationID string) (*Conversation, error) {
	s.mu.RLock()
	blob, ok := s.blobs[conversationID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var conv Conversation
	if err := json.Unmarshal(blob, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *InMemoryStore) Save(_ context.Context, conv *Conversation) error {
	conv.UpdatedAt = time.Now().UTC()
	blob, err := json.Marshal(conv)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[conv.ID] = blob
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
