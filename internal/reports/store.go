// Package reports keeps generated audits so they can be re-rendered and exported by ID.
package reports

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/presence-audit/internal/types"
)

// ErrNotFound is returned when no report has the requested ID, or when it
// belongs to another session.
var ErrNotFound = errors.New("report not found")

// Store persists reports. Reads are scoped to the session that generated the report.
type Store interface {
	Save(ctx context.Context, report types.Report) error
	Get(ctx context.Context, session string, id uuid.UUID) (types.Report, error)
	// List returns up to limit of session's reports, newest first.
	List(ctx context.Context, session string, limit int) ([]types.Report, error)
}

// DefaultCapacity bounds a MemoryStore created with a non-positive capacity.
const DefaultCapacity = 100

// MemoryStore is a bounded in-process Store. When full, the oldest report is evicted.
type MemoryStore struct {
	capacity int

	mu      sync.RWMutex
	byID    map[uuid.UUID]types.Report
	ordered []uuid.UUID // oldest first
}

// NewMemoryStore creates an empty store holding at most capacity reports.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		byID:     make(map[uuid.UUID]types.Report),
	}
}

func (s *MemoryStore) Save(_ context.Context, report types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[report.ID]; !exists {
		s.ordered = append(s.ordered, report.ID)
	}
	s.byID[report.ID] = report

	for len(s.ordered) > s.capacity {
		delete(s.byID, s.ordered[0])
		s.ordered = s.ordered[1:]
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, session string, id uuid.UUID) (types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok || r.Session != session {
		return types.Report{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) List(_ context.Context, session string, limit int) ([]types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Report, 0, len(s.ordered))
	for _, id := range s.ordered {
		if r := s.byID[id]; r.Session == session {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
