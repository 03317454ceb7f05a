package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"eventregistry/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	emails           domain.EmailService
	logger           *slog.Logger
}

// NewRegistrationService creates a RegistrationService with the given dependencies.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	emails domain.EmailService,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		emails:           emails,
		logger:           logger,
	}
}

func validateRegistrationInput(input domain.RegistrationInput) *domain.ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(input.FullName) == "" {
		fields["full_name"] = "full name is required"
	}
	if strings.TrimSpace(input.Organization) == "" {
		fields["organization"] = "organization is required"
	}
	if strings.TrimSpace(input.City) == "" {
		fields["city"] = "city is required"
	}
	if strings.TrimSpace(input.Phone) == "" {
		fields["phone"] = "phone is required"
	}
	if addr, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil || addr.Address != strings.TrimSpace(input.Email) {
		fields["email"] = "a valid email address is required"
	}
	if !input.ConsentPD {
		fields["consent_pd"] = "consent to personal data processing is required"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *registrationService) Create(ctx context.Context, eventSlug string, input domain.RegistrationInput) (*domain.Registration, error) {
	event, err := s.eventRepo.GetPublishedBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// The consent gate rejects before anything is written.
	if verr := validateRegistrationInput(input); verr != nil {
		return nil, verr
	}

	reg := domain.NewRegistration(
		event.ID,
		strings.TrimSpace(input.FullName),
		strings.TrimSpace(input.Organization),
		strings.TrimSpace(input.City),
		strings.TrimSpace(input.Email),
		strings.TrimSpace(input.Phone),
		input.ConsentPD,
		time.Now(),
	)
	// The repository inserts the registration and its pending payment
	// in one transaction.
	if _, err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.emails.SendRegistrationReceived(ctx, reg.Email, event.Title, reg.FullName)

	s.logger.InfoContext(ctx, "registration created",
		"registration_id", reg.ID, "event", event.Slug)
	return reg, nil
}
