package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRunStore implements RunStore for testing and for runs with history
// disabled.
type InMemoryRunStore struct {
	mu   sync.RWMutex
	runs []Run
}

// NewInMemoryRunStore creates a new in-memory store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{}
}

// Record adds a run to the store.
func (s *InMemoryRunStore) Record(ctx context.Context, run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	for _, r := range s.runs {
		if r.ID == run.ID {
			return "", fmt.Errorf("run already exists: %s", run.ID)
		}
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Keys = slices.Clone(run.Keys)
	run.Given = slices.Clone(run.Given)

	s.runs = append(s.runs, run)
	return run.ID, nil
}

// Get retrieves a run by ID. Returns nil if not found.
func (s *InMemoryRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

// List returns matching runs, newest first.
func (s *InMemoryRunStore) List(ctx context.Context, filter Filter) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Run
	for i := len(s.runs) - 1; i >= 0; i-- {
		if !filter.matches(s.runs[i]) {
			continue
		}
		out = append(out, s.runs[i])
	}
	// Later insertions win ties between equal timestamps.
	slices.SortStableFunc(out, func(a, b Run) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Close is a no-op.
func (s *InMemoryRunStore) Close() error {
	return nil
}
