package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventregistry/internal/domain"
)

type emailService struct {
	mailer         domain.Mailer
	logger         *slog.Logger
	materialsEmail string
}

// NewEmailService returns an EmailService that sends plain-text notifications
// through the given Mailer. Every send is best-effort: failures are logged
// and never returned, so mail outages cannot break registration or payment.
func NewEmailService(mailer domain.Mailer, logger *slog.Logger, materialsEmail string) domain.EmailService {
	return &emailService{mailer: mailer, logger: logger, materialsEmail: materialsEmail}
}

func (s *emailService) send(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := s.mailer.Send(to, subject, "", body); err != nil {
		s.logger.WarnContext(ctx, "email send failed", "to", to, "subject", subject, "err", err)
	}
}

func (s *emailService) SendRegistrationReceived(ctx context.Context, to, eventTitle, fullName string) {
	body := fmt.Sprintf("Уважаемый(ая) %s, ваша заявка на мероприятие '%s' получена.", fullName, eventTitle)
	s.send(ctx, to, "Заявка получена", body)
}

func (s *emailService) SendPaymentSucceeded(ctx context.Context, to, eventTitle string) {
	s.send(ctx, to, "Оплата успешна", fmt.Sprintf("Оплата за '%s' прошла успешно.", eventTitle))
}

func (s *emailService) SendPaymentFailed(ctx context.Context, to, eventTitle string) {
	s.send(ctx, to, "Оплата не прошла", fmt.Sprintf("Оплата за '%s' не прошла. Попробуйте снова.", eventTitle))
}

func (s *emailService) SendMaterialsInstructions(ctx context.Context, to, eventTitle string) {
	body := fmt.Sprintf("Согласно информационному письму перешлите данные и чек на адрес %s.", s.materialsEmail)
	s.send(ctx, to, "Инструкции по отправке материалов", body)
}

func (s *emailService) SendTestResult(ctx context.Context, to, eventTitle string, score int) {
	s.send(ctx, to, "Результат теста", fmt.Sprintf("Ваш результат по '%s': %d", eventTitle, score))
}
