package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventregistry/internal/domain"
)

const eventColumns = `id, title, short_description, description, type, event_date, fee_minor, is_published, is_featured, sort_order, slug, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var dateNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.ShortDescription, &e.Description, &e.Type,
		&dateNull, &e.FeeMinor, &e.IsPublished, &e.IsFeatured, &e.SortOrder,
		&e.Slug, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dateNull.Valid {
		e.EventDate = &dateNull.Time
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetPublishedBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE slug = $1 AND is_published = TRUE
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListPublished(ctx context.Context, eventType domain.EventType) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE is_published = TRUE AND ($1 = '' OR type = $1)
		ORDER BY sort_order, id
	`
	return r.list(ctx, query, string(eventType))
}

func (r *eventRepository) ListFeatured(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE is_published = TRUE AND is_featured = TRUE
		ORDER BY sort_order, id
	`
	return r.list(ctx, query)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
