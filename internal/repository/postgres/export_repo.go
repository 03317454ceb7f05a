package postgres

import (
	"context"
	"database/sql"

	"eventregistry/internal/domain"
)

type exportRepository struct {
	DB *sql.DB
}

func NewExportRepository(db *sql.DB) domain.ExportRepository {
	return &exportRepository{
		DB: db,
	}
}

// ListRegistrationRows joins registrations with their event, payment, and
// test result. A registration always has a payment row; the COALESCE covers
// rows imported from older data.
func (r *exportRepository) ListRegistrationRows(ctx context.Context) ([]*domain.ExportRow, error) {
	query := `
		SELECT r.created_at, e.title, r.full_name, r.organization, r.city, r.email, r.phone,
		       COALESCE(p.status, 'pending'), tr.score
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		LEFT JOIN payments p ON p.registration_id = r.id
		LEFT JOIN test_results tr ON tr.registration_id = r.id
		ORDER BY r.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.ExportRow, 0)
	for rows.Next() {
		row := &domain.ExportRow{}
		var scoreNull sql.NullInt64
		if err := rows.Scan(
			&row.CreatedAt, &row.EventTitle, &row.FullName, &row.Organization,
			&row.City, &row.Email, &row.Phone, &row.PaymentStatus, &scoreNull,
		); err != nil {
			return nil, err
		}
		if scoreNull.Valid {
			score := int(scoreNull.Int64)
			row.Score = &score
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
