package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"screening-quiz-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultStore, used when
// no durable ledger is configured.
type ResultStore struct {
	mu      sync.RWMutex
	results []domain.Result
	nextID  int64
}

func NewResultStore() *ResultStore {
	return &ResultStore{nextID: 1}
}

func (s *ResultStore) Insert(_ context.Context, result domain.Result) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result.ID = s.nextID
	s.nextID++
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	s.results = append(s.results, result)
	return result, nil
}

func (s *ResultStore) Get(_ context.Context, id int64) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.results {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Result{}, domain.ErrInvalidResult
}

func (s *ResultStore) List(_ context.Context) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortNewestFirst(s.results), nil
}

func (s *ResultStore) ListByApplication(_ context.Context, applicationID int64) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]domain.Result, 0)
	for _, r := range s.results {
		if r.ApplicationID == applicationID {
			filtered = append(filtered, r)
		}
	}
	return sortNewestFirst(filtered), nil
}

func (s *ResultStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := len(s.results)
	s.results = nil
	return deleted, nil
}

func sortNewestFirst(results []domain.Result) []domain.Result {
	out := make([]domain.Result, len(results))
	copy(out, results)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
