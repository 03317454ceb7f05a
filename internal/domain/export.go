package domain

import (
	"context"
	"io"
	"time"
)

// ExportRow is one line of the registrations report: registration contact
// fields joined with the event title, payment status, and test score.
type ExportRow struct {
	CreatedAt     time.Time
	EventTitle    string
	FullName      string
	Organization  string
	City          string
	Email         string
	Phone         string
	PaymentStatus PaymentStatus
	// Score is nil when no test result exists for the registration.
	Score *int
}

// ExportRepository reads the report rows. Strictly read-only.
type ExportRepository interface {
	ListRegistrationRows(ctx context.Context) ([]*ExportRow, error)
}

// ExportService writes the registrations report as CSV.
type ExportService interface {
	WriteCSV(ctx context.Context, w io.Writer) error
}
