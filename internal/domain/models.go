package domain

import (
	"strings"
	"time"
)

// Choice is one of the four answer labels of a multiple-choice question.
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
	ChoiceC Choice = "C"
	ChoiceD Choice = "D"
)

// ParseChoice normalizes raw input ("a", " B ") into a Choice.
func ParseChoice(raw string) (Choice, bool) {
	c := Choice(strings.ToUpper(strings.TrimSpace(raw)))
	switch c {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return c, true
	}
	return "", false
}

// Application is a named quiz track with its own question pool.
type Application struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	QuestionCount int    `json:"questionCount"`
	MaxQuestions  int    `json:"maxQuestions"`
}

// ApplicationUpdate carries the admin-editable fields of an application.
// Nil pointers leave the current value untouched.
type ApplicationUpdate struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	MaxQuestions *int    `json:"maxQuestions"`
}

// Question is a single multiple-choice item belonging to one application.
// Correct never leaves the server; clients see PublicQuestion.
type Question struct {
	ID            int64  `json:"id"`
	ApplicationID int64  `json:"applicationId"`
	Text          string `json:"text"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	Correct       Choice `json:"correct"`
}

// Usable reports whether the question can be presented: four non-empty
// options and a valid correct label.
func (q Question) Usable() bool {
	if q.Text == "" || q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
		return false
	}
	_, ok := ParseChoice(string(q.Correct))
	return ok
}

// PublicQuestion is the answer-key-free view served to quiz takers.
type PublicQuestion struct {
	ID      int64             `json:"id"`
	Text    string            `json:"text"`
	Options map[Choice]string `json:"options"`
}

// Public strips the answer key from a question.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:   q.ID,
		Text: q.Text,
		Options: map[Choice]string{
			ChoiceA: q.OptionA,
			ChoiceB: q.OptionB,
			ChoiceC: q.OptionC,
			ChoiceD: q.OptionD,
		},
	}
}

// SessionState tracks the lifecycle of a quiz session.
type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionSubmitted  SessionState = "submitted"
)

// QuizSession is the server-side record of one quiz attempt in flight.
// The sampled questions are stored with their answer keys so grading never
// depends on client-reported scores.
type QuizSession struct {
	ID            string           `json:"id"`
	ApplicationID int64            `json:"applicationId"`
	UserName      string           `json:"userName"`
	UserEmail     string           `json:"userEmail"`
	State         SessionState     `json:"state"`
	Questions     []Question       `json:"questions"`
	Answers       map[int64]Choice `json:"answers"`
	StartedAt     time.Time        `json:"startedAt"`
	ResultID      int64            `json:"resultId,omitempty"`
}

// Result is the immutable record of one completed quiz attempt.
type Result struct {
	ID               int64     `json:"id"`
	ApplicationID    int64     `json:"applicationId"`
	ApplicationName  string    `json:"applicationName,omitempty"`
	UserName         string    `json:"name"`
	UserEmail        string    `json:"email"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"totalQuestions"`
	Percentage       int       `json:"percentage"`
	TimeTakenSeconds int       `json:"timeTakenSeconds"`
	CreatedAt        time.Time `json:"createdAt"`
}

// StatsSummary aggregates the result ledger for the admin view.
type StatsSummary struct {
	Count          int     `json:"count"`
	MeanPercentage float64 `json:"meanPercentage"`
	MaxPercentage  int     `json:"maxPercentage"`
	MinPercentage  int     `json:"minPercentage"`
	Buckets        Buckets `json:"buckets"`
}

// Buckets counts results by percentage band.
type Buckets struct {
	Excellent int `json:"excellent"` // >= 90
	Good      int `json:"good"`      // [75, 90)
	Average   int `json:"average"`   // [60, 75)
	Poor      int `json:"poor"`      // < 60
}
