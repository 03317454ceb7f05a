package domain

import (
	"context"
	"time"
)

// Registration represents a participant's submitted intent to attend one event.
// swagger:model Registration
type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	FullName     string    `json:"full_name"`
	Organization string    `json:"organization"`
	City         string    `json:"city"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	ConsentPD    bool      `json:"consent_pd"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewRegistration returns a new Registration. ID is set by the repository on create.
func NewRegistration(eventID, fullName, organization, city, email, phone string, consent bool, createdAt time.Time) *Registration {
	return &Registration{
		EventID:      eventID,
		FullName:     fullName,
		Organization: organization,
		City:         city,
		Email:        email,
		Phone:        phone,
		ConsentPD:    consent,
		CreatedAt:    createdAt,
	}
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Create inserts the registration and its child payment (status pending,
	// no external id) in one transaction, so every registration has exactly
	// one payment from the start.
	Create(ctx context.Context, reg *Registration) (*Payment, error)
	GetByID(ctx context.Context, id string) (*Registration, error)
}

// RegistrationInput is the field set collected from the registration form.
type RegistrationInput struct {
	FullName     string
	Organization string
	City         string
	Email        string
	Phone        string
	ConsentPD    bool
}

// RegistrationService creates registrations for published events.
type RegistrationService interface {
	// Create validates the input (including the personal-data consent gate),
	// persists the registration with its pending payment, and sends a
	// best-effort "registration received" email. Returns *ValidationError
	// for rejected input and ErrNotFound for unknown/unpublished events.
	Create(ctx context.Context, eventSlug string, input RegistrationInput) (*Registration, error)
}
