package app_test

import (
	"fmt"
	"testing"

	"screening-quiz-service/internal/app"
	"screening-quiz-service/internal/domain"
)

func TestSampleReturnsDistinctSubset(t *testing.T) {
	sampler := app.NewSampler()
	pool := questionPool(20)

	sampled, err := sampler.Sample(pool, 5)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sampled) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(sampled))
	}
	assertDistinctFromPool(t, sampled, pool)
}

func TestSampleSaturatesAtPoolSize(t *testing.T) {
	sampler := app.NewSampler()
	pool := questionPool(4)

	for _, n := range []int{4, 5, 100} {
		sampled, err := sampler.Sample(pool, n)
		if err != nil {
			t.Fatalf("sample(%d): %v", n, err)
		}
		if len(sampled) != len(pool) {
			t.Fatalf("sample(%d): expected full pool of %d, got %d", n, len(pool), len(sampled))
		}
		assertDistinctFromPool(t, sampled, pool)
	}
}

func TestSampleEmptyPool(t *testing.T) {
	sampler := app.NewSampler()

	sampled, err := sampler.Sample(nil, 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sampled) != 0 {
		t.Fatalf("expected empty sample, got %d", len(sampled))
	}
}

func TestSampleRejectsNonPositiveCount(t *testing.T) {
	sampler := app.NewSampler()
	pool := questionPool(3)

	for _, n := range []int{0, -1} {
		if _, err := sampler.Sample(pool, n); err != domain.ErrInvalidSampleSize {
			t.Fatalf("sample(%d): expected ErrInvalidSampleSize, got %v", n, err)
		}
	}
}

func TestSampleReshufflesEveryCall(t *testing.T) {
	sampler := app.NewSampler()
	pool := questionPool(30)

	first, err := sampler.Sample(pool, 30)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	// With 30! orderings a repeat across a handful of draws means the
	// shuffle is broken, not that we got unlucky.
	for i := 0; i < 5; i++ {
		next, err := sampler.Sample(pool, 30)
		if err != nil {
			t.Fatalf("sample: %v", err)
		}
		if !sameOrder(first, next) {
			return
		}
	}
	t.Fatalf("expected at least one differing order across repeated samples")
}

func TestSampleDoesNotMutatePool(t *testing.T) {
	sampler := app.NewSampler()
	pool := questionPool(10)
	original := make([]domain.Question, len(pool))
	copy(original, pool)

	if _, err := sampler.Sample(pool, 10); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if !sameOrder(original, pool) {
		t.Fatalf("pool order changed by sampling")
	}
}

func assertDistinctFromPool(t *testing.T, sampled, pool []domain.Question) {
	t.Helper()
	inPool := make(map[int64]bool, len(pool))
	for _, q := range pool {
		inPool[q.ID] = true
	}
	seen := make(map[int64]bool, len(sampled))
	for _, q := range sampled {
		if !inPool[q.ID] {
			t.Fatalf("sampled question %d not in pool", q.ID)
		}
		if seen[q.ID] {
			t.Fatalf("question %d sampled twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func sameOrder(a, b []domain.Question) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func questionPool(n int) []domain.Question {
	pool := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, domain.Question{
			ID:      int64(i + 1),
			Text:    fmt.Sprintf("Question %d?", i+1),
			OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
			Correct: domain.ChoiceA,
		})
	}
	return pool
}
