package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"screening-quiz-service/internal/domain"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, session domain.QuizSession) error
	Get(ctx context.Context, id string) (domain.QuizSession, error)
	Delete(ctx context.Context, id string) error
}

// ResultStore is the append-only ledger of completed quiz attempts.
type ResultStore interface {
	Insert(ctx context.Context, result domain.Result) (domain.Result, error)
	Get(ctx context.Context, id int64) (domain.Result, error)
	List(ctx context.Context) ([]domain.Result, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]domain.Result, error)
	Clear(ctx context.Context) (int, error)
}

// QuizService contains the core quiz use cases: sampling questions, running
// server-graded quiz sessions, and maintaining the result ledger.
type QuizService struct {
	catalog    Catalog
	sessions   SessionRepository
	results    ResultStore
	sampler    *Sampler
	feed       *ResultFeed
	submits    singleflight.Group
	now        func() time.Time
	defaultMax int
}

func NewQuizService(catalog Catalog, sessions SessionRepository, results ResultStore) *QuizService {
	return NewQuizServiceWithClock(catalog, sessions, results, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(catalog Catalog, sessions SessionRepository, results ResultStore, now func() time.Time) *QuizService {
	return &QuizService{
		catalog:    catalog,
		sessions:   sessions,
		results:    results,
		sampler:    NewSampler(),
		feed:       NewResultFeed(),
		now:        now,
		defaultMax: 25,
	}
}

// SetDefaultMaxQuestions overrides the per-attempt question cap applied to
// new applications that do not specify their own.
func (s *QuizService) SetDefaultMaxQuestions(n int) {
	if n > 0 {
		s.defaultMax = n
	}
}

// Feed exposes the live result feed for transport-layer subscribers.
func (s *QuizService) Feed() *ResultFeed {
	return s.feed
}

// Applications lists the quiz tracks of the active catalog source.
func (s *QuizService) Applications(ctx context.Context) ([]domain.Application, error) {
	return s.catalog.Applications(ctx)
}

func (s *QuizService) ApplicationByID(ctx context.Context, id int64) (domain.Application, error) {
	return s.catalog.ApplicationByID(ctx, id)
}

func (s *QuizService) CreateApplication(ctx context.Context, app domain.Application) (domain.Application, error) {
	app.Name = strings.TrimSpace(app.Name)
	if app.Name == "" {
		return domain.Application{}, fmt.Errorf("%w: application name is required", domain.ErrInvalidRequest)
	}
	if app.MaxQuestions <= 0 {
		app.MaxQuestions = s.defaultMax
	}
	return s.catalog.CreateApplication(ctx, app)
}

func (s *QuizService) UpdateApplication(ctx context.Context, id int64, update domain.ApplicationUpdate) (domain.Application, error) {
	if update.MaxQuestions != nil && *update.MaxQuestions <= 0 {
		return domain.Application{}, fmt.Errorf("%w: maxQuestions must be positive", domain.ErrInvalidRequest)
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return domain.Application{}, fmt.Errorf("%w: application name is required", domain.ErrInvalidRequest)
	}
	return s.catalog.UpdateApplication(ctx, id, update)
}

// QuestionCount reports the size of an application's usable pool.
func (s *QuizService) QuestionCount(ctx context.Context, applicationID int64) (int, error) {
	pool, err := s.usablePool(ctx, applicationID)
	if err != nil {
		return 0, err
	}
	return len(pool), nil
}

// SampleQuestions returns a randomized, answer-key-free subset of an
// application's pool. A zero count falls back to the application's
// configured maximum. An empty pool yields an empty list, not an error.
func (s *QuizService) SampleQuestions(ctx context.Context, applicationID int64, count int) ([]domain.PublicQuestion, error) {
	app, err := s.catalog.ApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	pool, err := s.usablePool(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return []domain.PublicQuestion{}, nil
	}
	if count <= 0 {
		count = app.MaxQuestions
	}
	if count <= 0 {
		count = len(pool)
	}
	sampled, err := s.sampler.Sample(pool, count)
	if err != nil {
		return nil, err
	}
	return publicViews(sampled), nil
}

// StartQuizRequest carries the applicant identity and chosen track.
type StartQuizRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ApplicationID int64  `json:"applicationId"`
}

// StartedQuiz is the response to a successful session start.
type StartedQuiz struct {
	SessionID      string                  `json:"sessionId"`
	Application    domain.Application      `json:"application"`
	Questions      []domain.PublicQuestion `json:"questions"`
	TotalQuestions int                     `json:"totalQuestions"`
	StartedAt      time.Time               `json:"startedAt"`
}

// StartQuiz samples a question set and opens a server-side session. The
// answer keys stay with the session; the caller only receives public views.
func (s *QuizService) StartQuiz(ctx context.Context, req StartQuizRequest) (StartedQuiz, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		return StartedQuiz{}, fmt.Errorf("%w: name and email are required", domain.ErrInvalidRequest)
	}

	app, err := s.catalog.ApplicationByID(ctx, req.ApplicationID)
	if err != nil {
		return StartedQuiz{}, err
	}
	pool, err := s.usablePool(ctx, app.ID)
	if err != nil {
		return StartedQuiz{}, err
	}
	if len(pool) == 0 {
		return StartedQuiz{}, domain.ErrNoQuestions
	}

	count := app.MaxQuestions
	if count <= 0 {
		count = len(pool)
	}
	sampled, err := s.sampler.Sample(pool, count)
	if err != nil {
		return StartedQuiz{}, err
	}

	id, err := newSessionID()
	if err != nil {
		return StartedQuiz{}, fmt.Errorf("session id: %w", err)
	}
	session := domain.QuizSession{
		ID:            id,
		ApplicationID: app.ID,
		UserName:      name,
		UserEmail:     email,
		State:         domain.SessionInProgress,
		Questions:     sampled,
		Answers:       make(map[int64]domain.Choice),
		StartedAt:     s.now().UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return StartedQuiz{}, fmt.Errorf("save session: %w", err)
	}

	return StartedQuiz{
		SessionID:      session.ID,
		Application:    app,
		Questions:      publicViews(sampled),
		TotalQuestions: len(sampled),
		StartedAt:      session.StartedAt,
	}, nil
}

// SubmitQuiz grades a session server-side and records the result. Submission
// is idempotent: a second submit for the same session returns the already
// recorded result instead of creating a duplicate. Unanswered questions
// count as wrong.
func (s *QuizService) SubmitQuiz(ctx context.Context, sessionID string, answers map[int64]domain.Choice) (domain.Result, error) {
	v, err, _ := s.submits.Do("submit:"+sessionID, func() (interface{}, error) {
		session, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			return domain.Result{}, err
		}
		if session.State == domain.SessionSubmitted {
			return s.results.Get(ctx, session.ResultID)
		}

		score := 0
		graded := make(map[int64]domain.Choice, len(answers))
		for _, q := range session.Questions {
			choice, ok := answers[q.ID]
			if !ok {
				continue
			}
			graded[q.ID] = choice
			if choice == q.Correct {
				score++
			}
		}

		elapsed := int(math.Floor(s.now().Sub(session.StartedAt).Seconds()))
		if elapsed < 0 {
			elapsed = 0
		}

		result, err := s.RecordResult(ctx, domain.Result{
			ApplicationID:    session.ApplicationID,
			UserName:         session.UserName,
			UserEmail:        session.UserEmail,
			Score:            score,
			TotalQuestions:   len(session.Questions),
			TimeTakenSeconds: elapsed,
		})
		if err != nil {
			return domain.Result{}, err
		}

		session.State = domain.SessionSubmitted
		session.Answers = graded
		session.ResultID = result.ID
		if err := s.sessions.Save(ctx, session); err != nil {
			// The result is already in the ledger; failing now would make
			// the client retry and record a duplicate.
			log.Printf("mark session %s submitted: %v", session.ID, err)
		}
		return result, nil
	})
	if err != nil {
		return domain.Result{}, err
	}
	return v.(domain.Result), nil
}

// RecordResult validates a result record and appends it to the ledger.
// Percentage is always recomputed server-side.
func (s *QuizService) RecordResult(ctx context.Context, result domain.Result) (domain.Result, error) {
	if result.TotalQuestions <= 0 {
		return domain.Result{}, fmt.Errorf("%w: totalQuestions must be positive", domain.ErrInvalidResult)
	}
	if result.Score < 0 || result.Score > result.TotalQuestions {
		return domain.Result{}, fmt.Errorf("%w: score %d out of range for %d questions", domain.ErrInvalidResult, result.Score, result.TotalQuestions)
	}
	app, err := s.catalog.ApplicationByID(ctx, result.ApplicationID)
	if err != nil {
		return domain.Result{}, err
	}

	result.ApplicationName = app.Name
	result.Percentage = Percentage(result.Score, result.TotalQuestions)
	if result.CreatedAt.IsZero() {
		result.CreatedAt = s.now().UTC()
	}

	stored, err := s.results.Insert(ctx, result)
	if err != nil {
		return domain.Result{}, fmt.Errorf("insert result: %w", err)
	}
	s.feed.Publish(stored)
	return stored, nil
}

// ListResults returns all recorded attempts, newest first.
func (s *QuizService) ListResults(ctx context.Context) ([]domain.Result, error) {
	return s.results.List(ctx)
}

// ResultsFor returns the attempts for one application, newest first.
func (s *QuizService) ResultsFor(ctx context.Context, applicationID int64) ([]domain.Result, error) {
	return s.results.ListByApplication(ctx, applicationID)
}

// ClearResults wipes the ledger and reports how many records were removed.
func (s *QuizService) ClearResults(ctx context.Context) (int, error) {
	return s.results.Clear(ctx)
}

// Stats aggregates the whole ledger.
func (s *QuizService) Stats(ctx context.Context) (domain.StatsSummary, error) {
	results, err := s.results.List(ctx)
	if err != nil {
		return domain.StatsSummary{}, err
	}
	return Summarize(results), nil
}

// ImportQuestions replaces an application's entire pool with the given
// batch. The swap is atomic with respect to concurrent readers.
func (s *QuizService) ImportQuestions(ctx context.Context, applicationID int64, questions []domain.Question) (int, error) {
	if _, err := s.catalog.ApplicationByID(ctx, applicationID); err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		return 0, domain.ErrEmptyImport
	}
	return s.catalog.ReplaceQuestions(ctx, applicationID, questions)
}

// DashboardApplication augments an application with its ledger aggregates.
type DashboardApplication struct {
	domain.Application
	QuizCount    int     `json:"quizCount"`
	AverageScore float64 `json:"averageScore"`
}

// Dashboard is the admin overview across applications and the ledger.
type Dashboard struct {
	Applications      []DashboardApplication `json:"applications"`
	TotalApplications int                    `json:"totalApplications"`
	TotalQuestions    int                    `json:"totalQuestions"`
	TotalQuizzes      int                    `json:"totalQuizzes"`
}

func (s *QuizService) Dashboard(ctx context.Context) (Dashboard, error) {
	apps, err := s.catalog.Applications(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	results, err := s.results.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	counts := make(map[int64]int)
	sums := make(map[int64]int)
	for _, r := range results {
		counts[r.ApplicationID]++
		sums[r.ApplicationID] += r.Percentage
	}

	dash := Dashboard{
		TotalApplications: len(apps),
		TotalQuizzes:      len(results),
	}
	for _, app := range apps {
		entry := DashboardApplication{Application: app, QuizCount: counts[app.ID]}
		if entry.QuizCount > 0 {
			entry.AverageScore = math.Round(float64(sums[app.ID])/float64(entry.QuizCount)*100) / 100
		}
		dash.Applications = append(dash.Applications, entry)
		dash.TotalQuestions += app.QuestionCount
	}
	return dash, nil
}

func (s *QuizService) usablePool(ctx context.Context, applicationID int64) ([]domain.Question, error) {
	pool, err := s.catalog.QuestionsFor(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	usable := pool[:0:0]
	for _, q := range pool {
		if q.Usable() {
			usable = append(usable, q)
		}
	}
	return usable, nil
}

func publicViews(questions []domain.Question) []domain.PublicQuestion {
	views := make([]domain.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		views = append(views, q.Public())
	}
	return views
}

func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
