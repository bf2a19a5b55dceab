// Package draft keeps the text an admin is typing for each ticket until the
// backend confirms it was sent.
package draft

import (
	"context"
	"sync"
)

// Store is a draft slot per ticket id. Get returns "" for an empty slot.
type Store interface {
	Get(ctx context.Context, ticketID string) (string, error)
	Put(ctx context.Context, ticketID, text string) error
	Delete(ctx context.Context, ticketID string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, ticketID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drafts[ticketID], nil
}

// Put stores text; an empty text clears the slot.
func (s *MemoryStore) Put(_ context.Context, ticketID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == "" {
		delete(s.drafts, ticketID)
		return nil
	}
	s.drafts[ticketID] = text
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, ticketID)
	return nil
}
