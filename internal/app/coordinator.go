package app

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"screening-quiz-service/internal/domain"
)

// Catalog is the read/write surface over applications and their question
// pools. The durable store and the in-memory fallback both implement it so
// callers never special-case the source.
type Catalog interface {
	Applications(ctx context.Context) ([]domain.Application, error)
	ApplicationByID(ctx context.Context, id int64) (domain.Application, error)
	ApplicationByName(ctx context.Context, name string) (domain.Application, error)
	QuestionsFor(ctx context.Context, applicationID int64) ([]domain.Question, error)
	CreateApplication(ctx context.Context, app domain.Application) (domain.Application, error)
	UpdateApplication(ctx context.Context, id int64, update domain.ApplicationUpdate) (domain.Application, error)
	ReplaceQuestions(ctx context.Context, applicationID int64, questions []domain.Question) (int, error)
}

const (
	sourceUnknown int32 = iota
	sourceStore
	sourceFallback
)

// Coordinator routes catalog calls to the durable question store when it is
// reachable and non-empty, and to the fallback catalog otherwise. The probe
// runs once per process through singleflight; both outcomes are sticky for
// the process lifetime.
type Coordinator struct {
	store    Catalog // nil when no durable store is configured
	fallback Catalog
	sf       singleflight.Group
	state    atomic.Int32
}

func NewCoordinator(store, fallback Catalog) *Coordinator {
	return &Coordinator{store: store, fallback: fallback}
}

// SourceName reports which catalog serves requests, for health reporting.
func (c *Coordinator) SourceName() string {
	switch c.state.Load() {
	case sourceStore:
		return "store"
	case sourceFallback:
		return "fallback"
	}
	return "unprobed"
}

func (c *Coordinator) source(_ context.Context) Catalog {
	switch c.state.Load() {
	case sourceStore:
		return c.store
	case sourceFallback:
		return c.fallback
	}

	v, _, _ := c.sf.Do("probe", func() (interface{}, error) {
		// A concurrent caller may have settled the state while we queued.
		switch c.state.Load() {
		case sourceStore:
			return c.store, nil
		case sourceFallback:
			return c.fallback, nil
		}

		if c.store == nil {
			c.state.Store(sourceFallback)
			return c.fallback, nil
		}

		// The outcome is process-scoped, so the probe must not inherit the
		// first caller's request context: a cancelled request would stick
		// the process to the fallback with a healthy store.
		probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		apps, err := c.store.Applications(probeCtx)
		if err != nil {
			log.Printf("question store probe failed, serving fallback catalog: %v", err)
			c.state.Store(sourceFallback)
			return c.fallback, nil
		}
		if len(apps) == 0 {
			log.Printf("question store is empty, serving fallback catalog")
			c.state.Store(sourceFallback)
			return c.fallback, nil
		}
		c.state.Store(sourceStore)
		return c.store, nil
	})
	return v.(Catalog)
}

func (c *Coordinator) Applications(ctx context.Context) ([]domain.Application, error) {
	return c.source(ctx).Applications(ctx)
}

func (c *Coordinator) ApplicationByID(ctx context.Context, id int64) (domain.Application, error) {
	return c.source(ctx).ApplicationByID(ctx, id)
}

func (c *Coordinator) ApplicationByName(ctx context.Context, name string) (domain.Application, error) {
	return c.source(ctx).ApplicationByName(ctx, name)
}

func (c *Coordinator) QuestionsFor(ctx context.Context, applicationID int64) ([]domain.Question, error) {
	return c.source(ctx).QuestionsFor(ctx, applicationID)
}

func (c *Coordinator) CreateApplication(ctx context.Context, app domain.Application) (domain.Application, error) {
	return c.source(ctx).CreateApplication(ctx, app)
}

func (c *Coordinator) UpdateApplication(ctx context.Context, id int64, update domain.ApplicationUpdate) (domain.Application, error) {
	return c.source(ctx).UpdateApplication(ctx, id, update)
}

func (c *Coordinator) ReplaceQuestions(ctx context.Context, applicationID int64, questions []domain.Question) (int, error) {
	return c.source(ctx).ReplaceQuestions(ctx, applicationID, questions)
}
