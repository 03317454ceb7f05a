package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventregistry/internal/domain"
)

type paymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) domain.PaymentRepository {
	return &paymentRepository{
		DB: db,
	}
}

func (r *paymentRepository) GetByRegistrationID(ctx context.Context, registrationID string) (*domain.Payment, error) {
	query := `
		SELECT id, registration_id, status, external_id, paid_at, created_at, updated_at
		FROM payments
		WHERE registration_id = $1
	`
	return r.get(ctx, query, registrationID)
}

func (r *paymentRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error) {
	query := `
		SELECT id, registration_id, status, external_id, paid_at, created_at, updated_at
		FROM payments
		WHERE external_id = $1
	`
	return r.get(ctx, query, externalID)
}

func (r *paymentRepository) get(ctx context.Context, query string, arg string) (*domain.Payment, error) {
	p := &domain.Payment{}
	var paidAtNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.RegistrationID, &p.Status, &p.ExternalID, &paidAtNull, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if paidAtNull.Valid {
		p.PaidAt = &paidAtNull.Time
	}
	return p, nil
}

// SetExternalID records a fresh gateway payment id and reopens the row to
// pending. The status guard keeps a paid row final even if a stray creation
// attempt races the winning webhook.
func (r *paymentRepository) SetExternalID(ctx context.Context, registrationID, externalID string) (bool, error) {
	query := `
		UPDATE payments
		SET external_id = $2, status = $3, updated_at = NOW()
		WHERE registration_id = $1 AND status <> $4
	`
	result, err := r.DB.ExecContext(ctx, query, registrationID, externalID, domain.PaymentStatusPending, domain.PaymentStatusPaid)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkPaid is the compare-and-set that serializes concurrent reconciliation
// triggers: of any number of simultaneous callers, exactly one observes
// changed=true and owns the paid side effect.
func (r *paymentRepository) MarkPaid(ctx context.Context, registrationID string, paidAt time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2, paid_at = $3, updated_at = NOW()
		WHERE registration_id = $1 AND status <> $2
	`
	result, err := r.DB.ExecContext(ctx, query, registrationID, domain.PaymentStatusPaid, paidAt)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkFailed only moves a pending row; paid stays paid and failed stays as is.
func (r *paymentRepository) MarkFailed(ctx context.Context, registrationID string) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE registration_id = $1 AND status = $3
	`
	result, err := r.DB.ExecContext(ctx, query, registrationID, domain.PaymentStatusFailed, domain.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
