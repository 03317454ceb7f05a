package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eventregistry/internal/domain"
)

type questionRepository struct {
	DB *sql.DB
}

func NewQuestionRepository(db *sql.DB) domain.QuestionRepository {
	return &questionRepository{
		DB: db,
	}
}

func (r *questionRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Question, error) {
	query := `
		SELECT id, event_id, text, sort_order
		FROM questions
		WHERE event_id = $1
		ORDER BY sort_order, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*domain.Question, 0)
	byID := make(map[string]*domain.Question)
	for rows.Next() {
		q := &domain.Question{Options: []*domain.AnswerOption{}}
		if err := rows.Scan(&q.ID, &q.EventID, &q.Text, &q.SortOrder); err != nil {
			return nil, err
		}
		questions = append(questions, q)
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return questions, nil
	}

	optQuery := `
		SELECT o.id, o.question_id, o.text, o.sort_order, o.is_correct
		FROM answer_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.event_id = $1
		ORDER BY o.sort_order, o.id
	`
	optRows, err := r.DB.QueryContext(ctx, optQuery, eventID)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		o := &domain.AnswerOption{}
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.SortOrder, &o.IsCorrect); err != nil {
			return nil, err
		}
		if q, ok := byID[o.QuestionID]; ok {
			q.Options = append(q.Options, o)
		}
	}
	return questions, optRows.Err()
}

type testResultRepository struct {
	DB *sql.DB
}

func NewTestResultRepository(db *sql.DB) domain.TestResultRepository {
	return &testResultRepository{
		DB: db,
	}
}

func (r *testResultRepository) Create(ctx context.Context, result *domain.TestResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	query := `
		INSERT INTO test_results (registration_id, score, answers, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		result.RegistrationID, result.Score, answers, result.StartedAt, result.FinishedAt,
	).Scan(&result.ID)
}

func (r *testResultRepository) GetByRegistrationID(ctx context.Context, registrationID string) (*domain.TestResult, error) {
	query := `
		SELECT id, registration_id, score, answers, started_at, finished_at
		FROM test_results
		WHERE registration_id = $1
	`
	result := &domain.TestResult{}
	var answers []byte
	var finishedNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, registrationID).Scan(
		&result.ID, &result.RegistrationID, &result.Score, &answers, &result.StartedAt, &finishedNull,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if finishedNull.Valid {
		result.FinishedAt = &finishedNull.Time
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &result.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if result.Answers == nil {
		result.Answers = map[string]string{}
	}
	return result, nil
}
