package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventregistry/internal/domain"
)

type quizService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	paymentRepo      domain.PaymentRepository
	questionRepo     domain.QuestionRepository
	resultRepo       domain.TestResultRepository
	emails           domain.EmailService
	logger           *slog.Logger
	now              func() time.Time
}

// NewQuizService creates the gated test-taking service for olympiad events.
func NewQuizService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	paymentRepo domain.PaymentRepository,
	questionRepo domain.QuestionRepository,
	resultRepo domain.TestResultRepository,
	emails domain.EmailService,
	logger *slog.Logger,
) domain.QuizService {
	return &quizService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		paymentRepo:      paymentRepo,
		questionRepo:     questionRepo,
		resultRepo:       resultRepo,
		emails:           emails,
		logger:           logger,
		now:              time.Now,
	}
}

// gate checks the test preconditions: olympiad event, settled payment.
// There is no separate unlock flag; the live payment status is the gate.
func (s *quizService) gate(ctx context.Context, registrationID string) (*domain.Registration, *domain.Event, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	if event.Type != domain.EventTypeOlympiad {
		return nil, nil, domain.ErrForbidden
	}
	payment, err := s.paymentRepo.GetByRegistrationID(ctx, registrationID)
	if err != nil {
		return nil, nil, fmt.Errorf("get payment: %w", err)
	}
	if payment.Status != domain.PaymentStatusPaid {
		return nil, nil, domain.ErrForbidden
	}
	return reg, event, nil
}

func (s *quizService) GetTest(ctx context.Context, registrationID string) (*domain.Event, []*domain.Question, error) {
	_, event, err := s.gate(ctx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.resultRepo.GetByRegistrationID(ctx, registrationID); err == nil {
		return nil, nil, domain.ErrAlreadySubmitted
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("get test result: %w", err)
	}
	questions, err := s.questionRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}
	return event, questions, nil
}

func (s *quizService) Submit(ctx context.Context, registrationID string, answers map[string]string) (*domain.TestResult, bool, error) {
	reg, event, err := s.gate(ctx, registrationID)
	if err != nil {
		return nil, false, err
	}

	// Re-submission returns the stored result unchanged, never a rescoring.
	if existing, err := s.resultRepo.GetByRegistrationID(ctx, registrationID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get test result: %w", err)
	}

	questions, err := s.questionRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, false, fmt.Errorf("list questions: %w", err)
	}

	if answers == nil {
		answers = map[string]string{}
	}
	result := &domain.TestResult{
		RegistrationID: registrationID,
		Score:          score(questions, answers),
		Answers:        answers,
		StartedAt:      s.now(),
	}
	finished := s.now()
	result.FinishedAt = &finished

	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, false, fmt.Errorf("create test result: %w", err)
	}

	s.emails.SendTestResult(ctx, reg.Email, event.Title, result.Score)
	s.logger.InfoContext(ctx, "test submitted",
		"registration_id", registrationID, "event", event.Slug, "score", result.Score)
	return result, true, nil
}

func (s *quizService) Result(ctx context.Context, registrationID string) (*domain.TestResult, error) {
	result, err := s.resultRepo.GetByRegistrationID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get test result: %w", err)
	}
	return result, nil
}

// score counts questions whose chosen option is the correct one. Unanswered
// questions and unknown option ids simply score nothing; they never abort
// the submission.
func score(questions []*domain.Question, answers map[string]string) int {
	total := 0
	for _, q := range questions {
		chosen, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, opt := range q.Options {
			if opt.ID == chosen && opt.IsCorrect {
				total++
				break
			}
		}
	}
	return total
}
