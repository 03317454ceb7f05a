package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"eventregistry/internal/domain"
)

type exportService struct {
	exportRepo domain.ExportRepository
}

// NewExportService creates the read-only registrations report service.
func NewExportService(exportRepo domain.ExportRepository) domain.ExportService {
	return &exportService{exportRepo: exportRepo}
}

var exportHeader = []string{
	"Дата", "Мероприятие", "ФИО", "Уч. заведение", "Город", "Email", "Телефон", "Статус оплаты", "Результат",
}

func (s *exportService) WriteCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.exportRepo.ListRegistrationRows(ctx)
	if err != nil {
		return fmt.Errorf("list export rows: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		score := ""
		if row.Score != nil {
			score = strconv.Itoa(*row.Score)
		}
		record := []string{
			row.CreatedAt.Format("2006-01-02 15:04:05"),
			row.EventTitle,
			row.FullName,
			row.Organization,
			row.City,
			row.Email,
			row.Phone,
			string(row.PaymentStatus),
			score,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
