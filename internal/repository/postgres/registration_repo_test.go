package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventregistry/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	reg := func() *domain.Registration {
		return &domain.Registration{
			EventID:      "ev-1",
			FullName:     "Иванов Иван",
			Organization: "Школа №1",
			City:         "Москва",
			Email:        "ivanov@example.org",
			Phone:        "+7 900 000-00-00",
			ConsentPD:    true,
			CreatedAt:    createdAt,
		}
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO registrations \(event_id, full_name, organization, city, email, phone, consent_pd, created_at\)`).
			WithArgs("ev-1", "Иванов Иван", "Школа №1", "Москва", "ivanov@example.org", "+7 900 000-00-00", true, createdAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))
		mock.ExpectQuery(`INSERT INTO payments \(registration_id, status, external_id, created_at, updated_at\)`).
			WithArgs("reg-1", string(domain.PaymentStatusPending)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("pay-1", createdAt, createdAt))
		mock.ExpectCommit()

		repo := NewRegistrationRepository(db)
		r := reg()
		payment, err := repo.Create(ctx, r)
		require.NoError(t, err)
		require.Equal(t, "reg-1", r.ID)
		require.Equal(t, "pay-1", payment.ID)
		require.Equal(t, domain.PaymentStatusPending, payment.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("payment insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO registrations`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))
		mock.ExpectQuery(`INSERT INTO payments`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewRegistrationRepository(db)
		_, err = repo.Create(ctx, reg())
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegistrationRepository_GetByID(t *testing.T) {
	createdAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM registrations\s+WHERE id = \$1`).
			WithArgs("reg-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "full_name", "organization", "city", "email", "phone", "consent_pd", "created_at"}).
				AddRow("reg-1", "ev-1", "Иванов Иван", "Школа №1", "Москва", "ivanov@example.org", "+7 900 000-00-00", true, createdAt))

		repo := NewRegistrationRepository(db)
		r, err := repo.GetByID(context.Background(), "reg-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", r.EventID)
		require.True(t, r.ConsentPD)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM registrations`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewRegistrationRepository(db)
		_, err = repo.GetByID(context.Background(), "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
