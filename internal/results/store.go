package results

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/innovatorlabs/itype/internal/quiz"
)

// Record is one stored evaluation outcome. Records live only in process
// memory; there is deliberately no durable persistence of user sessions.
type Record struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Evaluation *quiz.Evaluation `json:"evaluation"`
}

// Store keeps recent evaluations so clients can re-fetch a result page by
// ID. Entries expire after the configured TTL.
type Store struct {
	mu    sync.RWMutex
	items map[string]*Record
	ttl   time.Duration
}

// NewStore creates a result store with the given retention.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		items: make(map[string]*Record),
		ttl:   ttl,
	}
	go s.cleanup()
	return s
}

func (s *Store) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-s.ttl)
		s.mu.Lock()
		for id, rec := range s.items {
			if rec.CreatedAt.Before(cutoff) {
				delete(s.items, id)
			}
		}
		s.mu.Unlock()
	}
}

// Put stores an evaluation under a fresh ID and returns the record.
func (s *Store) Put(ev *quiz.Evaluation) *Record {
	rec := &Record{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Evaluation: ev,
	}

	s.mu.Lock()
	s.items[rec.ID] = rec
	s.mu.Unlock()

	return rec
}

// Get fetches a record by ID. Expired records are treated as absent.
func (s *Store) Get(id string) (*Record, bool) {
	s.mu.RLock()
	rec, ok := s.items[id]
	s.mu.RUnlock()

	if !ok || time.Since(rec.CreatedAt) > s.ttl {
		return nil, false
	}
	return rec, true
}

// Delete forgets a record. Returns whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

// Stats returns store statistics.
func (s *Store) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"stored_results": len(s.items),
		"ttl_seconds":    s.ttl.Seconds(),
	}
}
