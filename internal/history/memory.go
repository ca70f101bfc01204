package history

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent runs in memory. Intended for
// single-process deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    []Run // newest first
	maxRuns int
}

// NewMemoryStore creates an in-memory run store holding at most maxRuns runs.
func NewMemoryStore(maxRuns int) *MemoryStore {
	if maxRuns < 1 {
		maxRuns = 100
	}
	return &MemoryStore{maxRuns: maxRuns}
}

// SaveRun stores a run, evicting the oldest once capacity is reached.
func (s *MemoryStore) SaveRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append([]Run{run}, s.runs...)
	if len(s.runs) > s.maxRuns {
		s.runs = s.runs[:s.maxRuns]
	}
	return nil
}

// ListRuns returns recent runs, newest first.
func (s *MemoryStore) ListRuns(ctx context.Context, dataset string, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		if dataset != "" && run.Dataset != dataset {
			continue
		}
		results = append(results, run)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
