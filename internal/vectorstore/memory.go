package vectorstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store used when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	cases map[uuid.UUID][]Sentence
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cases: make(map[uuid.UUID][]Sentence)}
}

func (s *MemoryStore) Upsert(_ context.Context, caseID uuid.UUID, sentences []Sentence) error {
	cp := make([]Sentence, len(sentences))
	copy(cp, sentences)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[caseID] = cp
	return nil
}

func (s *MemoryStore) Search(_ context.Context, caseID uuid.UUID, query []float32, topK int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Rank(query, s.cases[caseID], topK), nil
}

func (s *MemoryStore) Delete(_ context.Context, caseID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cases, caseID)
	return nil
}
