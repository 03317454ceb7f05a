package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailService defines the domain-level notification emails. All sends are
// best-effort: implementations log failures and never propagate them, so a
// broken mail provider can never break registration or payment flows.
type EmailService interface {
	SendRegistrationReceived(ctx context.Context, to, eventTitle, fullName string)
	SendPaymentSucceeded(ctx context.Context, to, eventTitle string)
	SendPaymentFailed(ctx context.Context, to, eventTitle string)
	// SendMaterialsInstructions tells contest/conference participants where
	// to send their materials after payment.
	SendMaterialsInstructions(ctx context.Context, to, eventTitle string)
	SendTestResult(ctx context.Context, to, eventTitle string, score int)
}
