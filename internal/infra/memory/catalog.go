package memory

import (
	"context"
	"sort"
	"sync"

	"screening-quiz-service/internal/domain"
)

// Catalog is an in-memory implementation of app.Catalog. It backs the
// fallback data source and doubles as the store for no-database deployments,
// so the full admin surface works against it.
type Catalog struct {
	mu             sync.RWMutex
	apps           map[int64]domain.Application
	questions      map[int64][]domain.Question
	nextAppID      int64
	nextQuestionID int64
}

func NewCatalog() *Catalog {
	return &Catalog{
		apps:           make(map[int64]domain.Application),
		questions:      make(map[int64][]domain.Question),
		nextAppID:      1,
		nextQuestionID: 1,
	}
}

func (c *Catalog) Applications(_ context.Context) ([]domain.Application, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	apps := make([]domain.Application, 0, len(c.apps))
	for _, app := range c.apps {
		app.QuestionCount = usableCount(c.questions[app.ID])
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps, nil
}

func (c *Catalog) ApplicationByID(_ context.Context, id int64) (domain.Application, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	app, ok := c.apps[id]
	if !ok {
		return domain.Application{}, domain.ErrApplicationNotFound
	}
	app.QuestionCount = usableCount(c.questions[id])
	return app, nil
}

func (c *Catalog) ApplicationByName(_ context.Context, name string) (domain.Application, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, app := range c.apps {
		if app.Name == name {
			app.QuestionCount = usableCount(c.questions[app.ID])
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrApplicationNotFound
}

func (c *Catalog) QuestionsFor(_ context.Context, applicationID int64) ([]domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pool := c.questions[applicationID]
	out := make([]domain.Question, len(pool))
	copy(out, pool)
	return out, nil
}

func (c *Catalog) CreateApplication(_ context.Context, app domain.Application) (domain.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.apps {
		if existing.Name == app.Name {
			return domain.Application{}, domain.ErrDuplicateName
		}
	}
	if app.MaxQuestions <= 0 {
		app.MaxQuestions = 25
	}
	app.ID = c.nextAppID
	c.nextAppID++
	c.apps[app.ID] = app

	app.QuestionCount = 0
	return app, nil
}

func (c *Catalog) UpdateApplication(_ context.Context, id int64, update domain.ApplicationUpdate) (domain.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	app, ok := c.apps[id]
	if !ok {
		return domain.Application{}, domain.ErrApplicationNotFound
	}
	if update.Name != nil {
		for otherID, existing := range c.apps {
			if otherID != id && existing.Name == *update.Name {
				return domain.Application{}, domain.ErrDuplicateName
			}
		}
		app.Name = *update.Name
	}
	if update.Description != nil {
		app.Description = *update.Description
	}
	if update.MaxQuestions != nil {
		app.MaxQuestions = clampToPool(*update.MaxQuestions, usableCount(c.questions[id]))
	}
	c.apps[id] = app

	app.QuestionCount = usableCount(c.questions[id])
	return app, nil
}

// ReplaceQuestions swaps an application's entire pool in one step, so
// concurrent readers observe either the old or the new complete set.
func (c *Catalog) ReplaceQuestions(_ context.Context, applicationID int64, questions []domain.Question) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.apps[applicationID]; !ok {
		return 0, domain.ErrApplicationNotFound
	}
	pool := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		q.ID = c.nextQuestionID
		c.nextQuestionID++
		q.ApplicationID = applicationID
		pool = append(pool, q)
	}
	c.questions[applicationID] = pool
	return len(pool), nil
}

// usableCount reports how many questions in the pool can be presented,
// matching what the sampler will actually serve.
func usableCount(pool []domain.Question) int {
	n := 0
	for _, q := range pool {
		if q.Usable() {
			n++
		}
	}
	return n
}

// clampToPool caps the per-attempt maximum at the pool size when a pool
// exists; an empty pool leaves the requested value untouched.
func clampToPool(max, poolSize int) int {
	if poolSize > 0 && max > poolSize {
		return poolSize
	}
	return max
}
