package services

import (
	"context"
	"log/slog"

	"eventregistry/internal/domain"
)

type accessController struct {
	emails domain.EmailService
	logger *slog.Logger
}

// NewAccessController creates the post-payment access controller. It is
// invoked by the payment service exactly once per registration, from the
// transition that won the paid compare-and-set.
func NewAccessController(emails domain.EmailService, logger *slog.Logger) domain.AccessController {
	return &accessController{emails: emails, logger: logger}
}

// OnPaid dispatches the type-specific post-payment capability. Olympiad test
// access needs no persisted flag: the quiz service checks the live payment
// status, so unlocking only means the gate now passes.
func (c *accessController) OnPaid(ctx context.Context, reg *domain.Registration, event *domain.Event) {
	c.emails.SendPaymentSucceeded(ctx, reg.Email, event.Title)

	if event.Type == domain.EventTypeOlympiad {
		c.logger.InfoContext(ctx, "test access unlocked",
			"registration_id", reg.ID, "event", event.Slug)
		return
	}
	c.emails.SendMaterialsInstructions(ctx, reg.Email, event.Title)
}
