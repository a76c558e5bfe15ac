package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"screening-quiz-service/internal/domain"
	"screening-quiz-service/internal/infra/memory"
)

func seedQuestions(n int) []domain.Question {
	pool := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, domain.Question{
			Text:    fmt.Sprintf("Question %d?", i+1),
			OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
			Correct: domain.ChoiceA,
		})
	}
	return pool
}

func TestCatalogCreateAndList(t *testing.T) {
	catalog := memory.NewCatalog()
	ctx := context.Background()

	for _, name := range []string{"UES", "RoadOps", "Digital"} {
		if _, err := catalog.CreateApplication(ctx, domain.Application{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	apps, err := catalog.Applications(ctx)
	if err != nil {
		t.Fatalf("applications: %v", err)
	}
	if len(apps) != 3 {
		t.Fatalf("expected 3 applications, got %d", len(apps))
	}
	// Listing is name-sorted.
	for i, want := range []string{"Digital", "RoadOps", "UES"} {
		if apps[i].Name != want {
			t.Fatalf("apps[%d] = %q, want %q", i, apps[i].Name, want)
		}
	}
}

func TestCatalogRejectsDuplicateName(t *testing.T) {
	catalog := memory.NewCatalog()
	ctx := context.Background()

	if _, err := catalog.CreateApplication(ctx, domain.Application{Name: "RoadOps"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := catalog.CreateApplication(ctx, domain.Application{Name: "RoadOps"}); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	other, err := catalog.CreateApplication(ctx, domain.Application{Name: "UES"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	taken := "RoadOps"
	if _, err := catalog.UpdateApplication(ctx, other.ID, domain.ApplicationUpdate{Name: &taken}); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName on rename, got %v", err)
	}
}

func TestCatalogQuestionCountTracksPool(t *testing.T) {
	catalog := memory.NewCatalog()
	ctx := context.Background()

	created, err := catalog.CreateApplication(ctx, domain.Application{Name: "RoadOps"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.QuestionCount != 0 {
		t.Fatalf("new application should have 0 questions, got %d", created.QuestionCount)
	}

	if _, err := catalog.ReplaceQuestions(ctx, created.ID, seedQuestions(7)); err != nil {
		t.Fatalf("replace questions: %v", err)
	}
	got, err := catalog.ApplicationByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("application by id: %v", err)
	}
	if got.QuestionCount != 7 {
		t.Fatalf("expected question count 7, got %d", got.QuestionCount)
	}
}

func TestCatalogQuestionCountSkipsUnusable(t *testing.T) {
	catalog := memory.NewCatalog()
	ctx := context.Background()

	created, err := catalog.CreateApplication(ctx, domain.Application{Name: "RoadOps"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pool := seedQuestions(4)
	pool = append(pool,
		domain.Question{Text: "No options", Correct: domain.ChoiceA},
		domain.Question{Text: "Bad key", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: "Z"},
	)
	if _, err := catalog.ReplaceQuestions(ctx, created.ID, pool); err != nil {
		t.Fatalf("replace questions: %v", err)
	}

	got, err := catalog.ApplicationByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("application by id: %v", err)
	}
	if got.QuestionCount != 4 {
		t.Fatalf("expected 4 usable questions counted, got %d", got.QuestionCount)
	}

	apps, err := catalog.Applications(ctx)
	if err != nil {
		t.Fatalf("applications: %v", err)
	}
	if apps[0].QuestionCount != 4 {
		t.Fatalf("listing counted %d questions, want 4", apps[0].QuestionCount)
	}
}

func TestCatalogUpdateClampsMaxToPool(t *testing.T) {
	catalog := memory.NewCatalog()
	ctx := context.Background()

	created, err := catalog.CreateApplication(ctx, domain.Application{Name: "RoadOps", MaxQuestions: 25})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := catalog.ReplaceQuestions(ctx, created.ID, seedQuestions(10)); err != nil {
		t.Fatalf("replace questions: %v", err)
	}

	max := 50
	updated, err := catalog.UpdateApplication(ctx, created.ID, domain.ApplicationUpdate{MaxQuestions: &max})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.MaxQuestions != 10 {
		t.Fatalf("expected max clamped to pool size 10, got %d", updated.MaxQuestions)
	}

	// With an empty pool the requested value is kept as-is.
	empty, err := catalog.CreateApplication(ctx, domain.Application{Name: "UES"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err = catalog.UpdateApplication(ctx, empty.ID, domain.ApplicationUpdate{MaxQuestions: &max})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.MaxQuestions != 50 {
		t.Fatalf("expected max 50 on empty pool, got %d", updated.MaxQuestions)
	}
}

func TestCatalogReplaceQuestionsIsAtomic(t *testing.T) {
	catalog := memory.NewCatalog()
	ctx := context.Background()

	created, err := catalog.CreateApplication(ctx, domain.Application{Name: "RoadOps"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := catalog.ReplaceQuestions(ctx, created.ID, seedQuestions(5)); err != nil {
		t.Fatalf("replace questions: %v", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			size := 5 + i%2*3 // alternate 5 and 8
			if _, err := catalog.ReplaceQuestions(ctx, created.ID, seedQuestions(size)); err != nil {
				t.Errorf("replace questions: %v", err)
				return
			}
		}
	}()

	// Readers must only ever observe a complete set, never a partial swap.
	for i := 0; i < 200; i++ {
		pool, err := catalog.QuestionsFor(ctx, created.ID)
		if err != nil {
			t.Fatalf("questions for: %v", err)
		}
		if len(pool) != 5 && len(pool) != 8 {
			t.Fatalf("observed partial pool of %d questions", len(pool))
		}
	}
	close(done)
	wg.Wait()
}

func TestCatalogUnknownApplication(t *testing.T) {
	catalog := memory.NewCatalog()
	ctx := context.Background()

	if _, err := catalog.ApplicationByID(ctx, 42); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
	if _, err := catalog.ApplicationByName(ctx, "nope"); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
	if _, err := catalog.UpdateApplication(ctx, 42, domain.ApplicationUpdate{}); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
	if _, err := catalog.ReplaceQuestions(ctx, 42, seedQuestions(1)); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestFallbackCatalogSeed(t *testing.T) {
	catalog := memory.NewFallbackCatalog()
	ctx := context.Background()

	apps, err := catalog.Applications(ctx)
	if err != nil {
		t.Fatalf("applications: %v", err)
	}
	if len(apps) != 4 {
		t.Fatalf("expected 4 seeded applications, got %d", len(apps))
	}

	byName := make(map[string]domain.Application, len(apps))
	for _, app := range apps {
		byName[app.Name] = app
	}
	for _, name := range []string{"RoadOps", "RoadSales", "UES", "Digital"} {
		app, ok := byName[name]
		if !ok {
			t.Fatalf("missing seeded application %q", name)
		}
		if app.QuestionCount != 3 {
			t.Fatalf("%s: expected 3 questions, got %d", name, app.QuestionCount)
		}
		if app.MaxQuestions != 25 {
			t.Fatalf("%s: expected max 25, got %d", name, app.MaxQuestions)
		}
		pool, err := catalog.QuestionsFor(ctx, app.ID)
		if err != nil {
			t.Fatalf("%s questions: %v", name, err)
		}
		for _, q := range pool {
			if !q.Usable() {
				t.Fatalf("%s: seeded question %q is not usable", name, q.Text)
			}
		}
	}
}
