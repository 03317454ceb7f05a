package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventregistry/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Create inserts the registration together with its pending payment in one
// transaction, so downstream code never has to handle a missing payment row.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) (*domain.Payment, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	regQuery := `
		INSERT INTO registrations (event_id, full_name, organization, city, email, phone, consent_pd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, regQuery,
		reg.EventID, reg.FullName, reg.Organization, reg.City, reg.Email, reg.Phone, reg.ConsentPD, reg.CreatedAt,
	).Scan(&reg.ID)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	payment := &domain.Payment{
		RegistrationID: reg.ID,
		Status:         domain.PaymentStatusPending,
	}
	payQuery := `
		INSERT INTO payments (registration_id, status, external_id, created_at, updated_at)
		VALUES ($1, $2, '', NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, payQuery, reg.ID, domain.PaymentStatusPending).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return payment, nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, full_name, organization, city, email, phone, consent_pd, created_at
		FROM registrations
		WHERE id = $1
	`
	reg := &domain.Registration{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.EventID, &reg.FullName, &reg.Organization, &reg.City,
		&reg.Email, &reg.Phone, &reg.ConsentPD, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}
