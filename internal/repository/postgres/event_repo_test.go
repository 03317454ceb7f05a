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

var eventColumnNames = []string{
	"id", "title", "short_description", "description", "type", "event_date",
	"fee_minor", "is_published", "is_featured", "sort_order", "slug", "created_at", "updated_at",
}

func eventRow(rows *sqlmock.Rows, id, slug string, eventDate any) *sqlmock.Rows {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "Олимпиада", "Кратко", "Подробно", "olymp", eventDate,
		int64(50000), true, false, 1, slug, now, now)
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	eventDate := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		mock     func(mock sqlmock.Sqlmock)
		wantDate *time.Time
		wantErr  error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events\s+WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(eventRow(sqlmock.NewRows(eventColumnNames), "ev-1", "olymp-2024", eventDate))
			},
			wantDate: &eventDate,
		},
		{
			name: "null event date",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events\s+WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(eventRow(sqlmock.NewRows(eventColumnNames), "ev-1", "olymp-2024", nil))
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events\s+WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			event, err := repo.GetByID(ctx, "ev-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "ev-1", event.ID)
			require.Equal(t, domain.EventTypeOlympiad, event.Type)
			require.Equal(t, int64(50000), event.FeeMinor)
			if tt.wantDate == nil {
				require.Nil(t, event.EventDate)
			} else {
				require.Equal(t, *tt.wantDate, *event.EventDate)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetPublishedBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM events\s+WHERE slug = \$1 AND is_published = TRUE`).
		WithArgs("olymp-2024").
		WillReturnRows(eventRow(sqlmock.NewRows(eventColumnNames), "ev-1", "olymp-2024", nil))

	repo := NewEventRepository(db)
	event, err := repo.GetPublishedBySlug(context.Background(), "olymp-2024")
	require.NoError(t, err)
	require.Equal(t, "olymp-2024", event.Slug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(eventColumnNames)
	eventRow(rows, "ev-1", "olymp-2024", nil)
	eventRow(rows, "ev-2", "olymp-2025", nil)
	mock.ExpectQuery(`FROM events\s+WHERE is_published = TRUE AND \(\$1 = '' OR type = \$1\)`).
		WithArgs("olymp").
		WillReturnRows(rows)

	repo := NewEventRepository(db)
	events, err := repo.ListPublished(context.Background(), domain.EventTypeOlympiad)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "ev-1", events[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListFeatured(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM events\s+WHERE is_published = TRUE AND is_featured = TRUE`).
		WillReturnRows(eventRow(sqlmock.NewRows(eventColumnNames), "ev-1", "olymp-2024", nil))

	repo := NewEventRepository(db)
	events, err := repo.ListFeatured(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
