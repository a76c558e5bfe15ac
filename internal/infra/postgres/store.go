package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"screening-quiz-service/internal/domain"
)

// Store implements both app.Catalog and app.ResultStore over Postgres.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

type applicationRow struct {
	bun.BaseModel `bun:"table:applications,alias:a"`

	ID            int64  `bun:"id,pk,autoincrement"`
	Name          string `bun:"name,notnull"`
	Description   string `bun:"description,notnull"`
	MaxQuestions  int    `bun:"max_questions,notnull"`
	QuestionCount int    `bun:"question_count,scanonly"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID            int64  `bun:"id,pk,autoincrement"`
	ApplicationID int64  `bun:"application_id,notnull"`
	Question      string `bun:"question,notnull"`
	OptionA       string `bun:"option_a,notnull"`
	OptionB       string `bun:"option_b,notnull"`
	OptionC       string `bun:"option_c,notnull"`
	OptionD       string `bun:"option_d,notnull"`
	CorrectAnswer string `bun:"correct_answer,notnull"`
}

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results,alias:r"`

	ID               int64     `bun:"id,pk,autoincrement"`
	ApplicationID    int64     `bun:"application_id,notnull"`
	UserName         string    `bun:"user_name,notnull"`
	UserEmail        string    `bun:"user_email,notnull"`
	Score            int       `bun:"score,notnull"`
	TotalQuestions   int       `bun:"total_questions,notnull"`
	Percentage       int       `bun:"percentage,notnull"`
	TimeTakenSeconds int       `bun:"time_taken_seconds,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
	ApplicationName  string    `bun:"application_name,scanonly"`
}

// Counts only questions the sampler can serve, so listings agree with the
// question-count endpoint.
const questionCountExpr = `(SELECT count(*) FROM questions q
	WHERE q.application_id = a.id
	AND q.question <> ''
	AND q.option_a <> '' AND q.option_b <> '' AND q.option_c <> '' AND q.option_d <> ''
	AND q.correct_answer IN ('A', 'B', 'C', 'D'))`

func (s *Store) Applications(ctx context.Context) ([]domain.Application, error) {
	var rows []applicationRow
	err := s.db.NewSelect().Model(&rows).
		ColumnExpr("a.*").
		ColumnExpr(questionCountExpr + " AS question_count").
		OrderExpr("a.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	apps := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.toDomain())
	}
	return apps, nil
}

func (s *Store) ApplicationByID(ctx context.Context, id int64) (domain.Application, error) {
	var row applicationRow
	err := s.db.NewSelect().Model(&row).
		ColumnExpr("a.*").
		ColumnExpr(questionCountExpr + " AS question_count").
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Application{}, domain.ErrApplicationNotFound
		}
		return domain.Application{}, fmt.Errorf("load application: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ApplicationByName(ctx context.Context, name string) (domain.Application, error) {
	var row applicationRow
	err := s.db.NewSelect().Model(&row).
		ColumnExpr("a.*").
		ColumnExpr(questionCountExpr + " AS question_count").
		Where("a.name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Application{}, domain.ErrApplicationNotFound
		}
		return domain.Application{}, fmt.Errorf("load application: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) QuestionsFor(ctx context.Context, applicationID int64) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).
		Where("q.application_id = ?", applicationID).
		OrderExpr("q.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.toDomain())
	}
	return questions, nil
}

func (s *Store) CreateApplication(ctx context.Context, app domain.Application) (domain.Application, error) {
	row := applicationRow{
		Name:         app.Name,
		Description:  app.Description,
		MaxQuestions: app.MaxQuestions,
	}
	if row.MaxQuestions <= 0 {
		row.MaxQuestions = 25
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.Application{}, domain.ErrDuplicateName
		}
		return domain.Application{}, fmt.Errorf("create application: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateApplication(ctx context.Context, id int64, update domain.ApplicationUpdate) (domain.Application, error) {
	var out domain.Application
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row applicationRow
		err := tx.NewSelect().Model(&row).
			ColumnExpr("a.*").
			ColumnExpr(questionCountExpr + " AS question_count").
			Where("a.id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrApplicationNotFound
			}
			return fmt.Errorf("load application: %w", err)
		}

		if update.Name != nil {
			row.Name = *update.Name
		}
		if update.Description != nil {
			row.Description = *update.Description
		}
		if update.MaxQuestions != nil {
			row.MaxQuestions = *update.MaxQuestions
			// Clamp to the pool so a single attempt can never request more
			// questions than exist.
			if row.QuestionCount > 0 && row.MaxQuestions > row.QuestionCount {
				row.MaxQuestions = row.QuestionCount
			}
		}

		if _, err := tx.NewUpdate().Model(&row).
			Column("name", "description", "max_questions").
			WherePK().
			Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateName
			}
			return fmt.Errorf("update application: %w", err)
		}
		out = row.toDomain()
		return nil
	})
	if err != nil {
		return domain.Application{}, err
	}
	return out, nil
}

// ReplaceQuestions swaps an application's pool inside one transaction, so a
// concurrent reader sees either the old or the new complete set.
func (s *Store) ReplaceQuestions(ctx context.Context, applicationID int64, questions []domain.Question) (int, error) {
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, questionRow{
			ApplicationID: applicationID,
			Question:      q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: string(q.Correct),
		})
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).
			Where("application_id = ?", applicationID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete old pool: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert new pool: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Store) Insert(ctx context.Context, result domain.Result) (domain.Result, error) {
	row := resultRow{
		ApplicationID:    result.ApplicationID,
		UserName:         result.UserName,
		UserEmail:        result.UserEmail,
		Score:            result.Score,
		TotalQuestions:   result.TotalQuestions,
		Percentage:       result.Percentage,
		TimeTakenSeconds: result.TimeTakenSeconds,
		CreatedAt:        result.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.Result{}, fmt.Errorf("insert result: %w", err)
	}
	stored := row.toDomain()
	stored.ApplicationName = result.ApplicationName
	return stored, nil
}

func (s *Store) Get(ctx context.Context, id int64) (domain.Result, error) {
	var row resultRow
	err := s.db.NewSelect().Model(&row).
		ColumnExpr("r.*").
		ColumnExpr("a.name AS application_name").
		Join("JOIN applications AS a ON a.id = r.application_id").
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Result{}, domain.ErrInvalidResult
		}
		return domain.Result{}, fmt.Errorf("load result: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) List(ctx context.Context) ([]domain.Result, error) {
	return s.listResults(ctx, 0)
}

func (s *Store) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Result, error) {
	return s.listResults(ctx, applicationID)
}

func (s *Store) listResults(ctx context.Context, applicationID int64) ([]domain.Result, error) {
	q := s.db.NewSelect().Model((*resultRow)(nil)).
		ColumnExpr("r.*").
		ColumnExpr("a.name AS application_name").
		Join("JOIN applications AS a ON a.id = r.application_id").
		OrderExpr("r.created_at DESC, r.id DESC")
	if applicationID > 0 {
		q = q.Where("r.application_id = ?", applicationID)
	}

	var rows []resultRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	results := make([]domain.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.toDomain())
	}
	return results, nil
}

func (s *Store) Clear(ctx context.Context) (int, error) {
	res, err := s.db.NewDelete().Model((*resultRow)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(deleted), nil
}

func (row applicationRow) toDomain() domain.Application {
	return domain.Application{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		QuestionCount: row.QuestionCount,
		MaxQuestions:  row.MaxQuestions,
	}
}

func (row questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:            row.ID,
		ApplicationID: row.ApplicationID,
		Text:          row.Question,
		OptionA:       row.OptionA,
		OptionB:       row.OptionB,
		OptionC:       row.OptionC,
		OptionD:       row.OptionD,
		Correct:       domain.Choice(row.CorrectAnswer),
	}
}

func (row resultRow) toDomain() domain.Result {
	return domain.Result{
		ID:               row.ID,
		ApplicationID:    row.ApplicationID,
		ApplicationName:  row.ApplicationName,
		UserName:         row.UserName,
		UserEmail:        row.UserEmail,
		Score:            row.Score,
		TotalQuestions:   row.TotalQuestions,
		Percentage:       row.Percentage,
		TimeTakenSeconds: row.TimeTakenSeconds,
		CreatedAt:        row.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
