package domain

import (
	"context"
	"time"
)

// Question belongs to an olympiad event, ordered within it.
// swagger:model Question
type Question struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Text      string `json:"text"`
	SortOrder int    `json:"sort_order"`
	// Options are ordered by (sort_order, id). Exactly one is correct.
	Options []*AnswerOption `json:"options"`
}

// AnswerOption is one choice for a question.
// swagger:model AnswerOption
type AnswerOption struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	SortOrder  int    `json:"sort_order"`
	// IsCorrect is never serialized to API responses; the controller maps
	// options to a public DTO without it.
	IsCorrect bool `json:"-"`
}

// TestResult is the scored outcome of an olympiad participant's test attempt.
// Created exactly once per registration; re-submission returns the stored row.
// swagger:model TestResult
type TestResult struct {
	ID             string `json:"id"`
	RegistrationID string `json:"registration_id"`
	Score          int    `json:"score"`
	// Answers maps question id to the chosen answer option id.
	Answers    map[string]string `json:"answers"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at"`
}

// QuestionRepository reads an event's questions with their options.
type QuestionRepository interface {
	ListByEventID(ctx context.Context, eventID string) ([]*Question, error)
}

// TestResultRepository defines storage operations for test results.
type TestResultRepository interface {
	Create(ctx context.Context, result *TestResult) error
	GetByRegistrationID(ctx context.Context, registrationID string) (*TestResult, error)
}

// QuizService exposes the gated test-taking flow for olympiad events.
type QuizService interface {
	// GetTest returns the event's questions for a paid olympiad
	// registration. ErrForbidden when the event is not an olympiad or the
	// payment is not settled; ErrAlreadySubmitted when a result exists.
	GetTest(ctx context.Context, registrationID string) (*Event, []*Question, error)
	// Submit scores the answers and persists the result. Returns
	// (result, created, err): created is false when a prior result exists,
	// in which case that result is returned unchanged.
	Submit(ctx context.Context, registrationID string, answers map[string]string) (*TestResult, bool, error)
	// Result returns the stored result for the registration, or ErrNotFound.
	Result(ctx context.Context, registrationID string) (*TestResult, error)
}
