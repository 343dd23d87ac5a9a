package history

import (
	"sort"
	"sync"

	"bcup-go/internal/bcup"
)

// MemoryStore is an in-memory bcup.HistoryStore. Used in tests and for the
// "memory" history backend.
type MemoryStore struct {
	mu   sync.Mutex
	recs []*bcup.RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) RecordRun(rec *bcup.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rec
	s.recs = append(s.recs, &clone)
	return nil
}

func (s *MemoryStore) ListRuns(limit int) ([]*bcup.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*bcup.RunRecord, len(s.recs))
	copy(out, s.recs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ bcup.HistoryStore = (*MemoryStore)(nil)
