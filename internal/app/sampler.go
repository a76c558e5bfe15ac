package app

import (
	"math/rand"
	"sync"
	"time"

	"screening-quiz-service/internal/domain"
)

// Sampler draws randomized question subsets without replacement.
type Sampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSampler() *Sampler {
	return &Sampler{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSamplerWithSource is test-only for deterministic draws.
func NewSamplerWithSource(src rand.Source) *Sampler {
	return &Sampler{rnd: rand.New(src)}
}

// Sample returns n distinct questions drawn uniformly from pool. When n
// meets or exceeds the pool size the whole pool is returned in random order.
// The pool slice is never mutated and every call reshuffles from scratch.
func (s *Sampler) Sample(pool []domain.Question, n int) ([]domain.Question, error) {
	if n <= 0 {
		return nil, domain.ErrInvalidSampleSize
	}
	out := make([]domain.Question, len(pool))
	copy(out, pool)

	s.mu.Lock()
	s.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	s.mu.Unlock()

	if n < len(out) {
		out = out[:n]
	}
	return out, nil
}
