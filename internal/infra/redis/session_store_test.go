package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"screening-quiz-service/internal/domain"
	redisinfra "screening-quiz-service/internal/infra/redis"
)

func newTestStore(t *testing.T, ttl time.Duration) (*redisinfra.SessionStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisinfra.NewSessionStore(client, ttl), srv
}

func sampleSession() domain.QuizSession {
	return domain.QuizSession{
		ID:            "deadbeef",
		ApplicationID: 1,
		UserName:      "Jordan Smith",
		UserEmail:     "jordan@example.com",
		State:         domain.SessionInProgress,
		Questions: []domain.Question{
			{ID: 1, ApplicationID: 1, Text: "Q?", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: domain.ChoiceB},
		},
		Answers:   map[int64]domain.Choice{},
		StartedAt: time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	session := sampleSession()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserName != session.UserName || got.State != session.State {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Questions) != 1 || got.Questions[0].Correct != domain.ChoiceB {
		t.Fatalf("answer key lost in round trip: %+v", got.Questions)
	}
	if !got.StartedAt.Equal(session.StartedAt) {
		t.Fatalf("started at mismatch: %v vs %v", got.StartedAt, session.StartedAt)
	}
}

func TestSessionStoreTTL(t *testing.T) {
	store, srv := newTestStore(t, 2*time.Hour)
	ctx := context.Background()

	session := sampleSession()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := srv.TTL("quiz:session:" + session.ID); got != 2*time.Hour {
		t.Fatalf("expected TTL 2h, got %v", got)
	}

	srv.FastForward(2*time.Hour + time.Second)
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after TTL, got %v", err)
	}
}

func TestSessionStoreSaveRefreshesTTL(t *testing.T) {
	store, srv := newTestStore(t, time.Hour)
	ctx := context.Background()

	session := sampleSession()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	srv.FastForward(30 * time.Minute)

	session.State = domain.SessionSubmitted
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := srv.TTL("quiz:session:" + session.ID); got != time.Hour {
		t.Fatalf("expected TTL reset to 1h, got %v", got)
	}
}

func TestSessionStoreDelete(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	session := sampleSession()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestSessionStoreUnreachableServer(t *testing.T) {
	store, srv := newTestStore(t, time.Hour)
	srv.Close()

	if err := store.Save(context.Background(), sampleSession()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on save, got %v", err)
	}
	if _, err := store.Get(context.Background(), "deadbeef"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on get, got %v", err)
	}
}

func TestSessionStoreUnknownID(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
