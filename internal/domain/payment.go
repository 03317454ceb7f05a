package domain

import (
	"context"
	"time"
)

// PaymentStatus is the local lifecycle state of a payment.
// paid is terminal; failed may be superseded by a fresh attempt.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Gateway-side payment statuses as reported by the provider.
const (
	GatewayStatusPending           = "pending"
	GatewayStatusWaitingForCapture = "waiting_for_capture"
	GatewayStatusSucceeded         = "succeeded"
	GatewayStatusCanceled          = "canceled"
)

// Payment tracks a registration's fee settlement state. One-to-one with
// Registration; mutated only by the reconciliation service.
// swagger:model Payment
type Payment struct {
	ID             string        `json:"id"`
	RegistrationID string        `json:"registration_id"`
	Status         PaymentStatus `json:"status"`
	// ExternalID is the gateway transaction id; empty until a gateway
	// payment has been created for this row.
	ExternalID string     `json:"external_id"`
	PaidAt     *time.Time `json:"paid_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PaymentRepository defines storage operations for payments.
//
// MarkPaid and MarkFailed are conditional updates: they return changed=false
// when the row was already past the guarded state. Reconciliation relies on
// MarkPaid's compare-and-set to fire the paid side effect exactly once.
type PaymentRepository interface {
	GetByRegistrationID(ctx context.Context, registrationID string) (*Payment, error)
	GetByExternalID(ctx context.Context, externalID string) (*Payment, error)
	// SetExternalID records a freshly created gateway payment and reopens
	// the row to pending. It never touches a paid row (changed=false).
	SetExternalID(ctx context.Context, registrationID, externalID string) (changed bool, err error)
	// MarkPaid transitions to paid unless already paid.
	MarkPaid(ctx context.Context, registrationID string, paidAt time.Time) (changed bool, err error)
	// MarkFailed transitions pending to failed; paid and failed rows are left alone.
	MarkFailed(ctx context.Context, registrationID string) (changed bool, err error)
}

// CreatePaymentRequest is the input for creating a payment at the gateway.
type CreatePaymentRequest struct {
	AmountMinor    int64
	Currency       string
	Description    string
	ReturnURL      string
	RegistrationID string
}

// GatewayPayment is the provider's view of a payment.
type GatewayPayment struct {
	ExternalID  string
	Status      string
	Paid        bool
	CheckoutURL string
	Metadata    map[string]string
}

// PaymentGateway wraps the external payment provider. Implementations must
// translate provider failures into *GatewayError and FindPayment must return
// ErrNotFound for unknown ids.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*GatewayPayment, error)
	FindPayment(ctx context.Context, externalID string) (*GatewayPayment, error)
	// CancelPayment is only valid while the gateway-side status is pending.
	CancelPayment(ctx context.Context, externalID string) error
}

// WebhookNotification is a parsed gateway notification.
type WebhookNotification struct {
	Event          string
	ExternalID     string
	Status         string
	RegistrationID string
}

// StartPaymentResult is returned by PaymentService.Start.
type StartPaymentResult struct {
	Payment     *Payment `json:"payment"`
	CheckoutURL string   `json:"checkout_url"`
}

// PaymentService owns the payment lifecycle: gateway payment creation and
// the reconciliation state machine fed by browser return, webhook, and
// manual retry.
type PaymentService interface {
	// Start creates a gateway payment for the registration's fee and stores
	// the new external id. A paid registration is refused with ErrForbidden.
	// Free events (zero fee) are marked paid immediately without a gateway
	// round trip.
	Start(ctx context.Context, registrationID string) (*StartPaymentResult, error)
	// Reconcile fetches the authoritative status from the gateway and applies
	// the transition. Gateway errors are absorbed: the returned status is
	// then the persisted one (commonly pending) and err is nil.
	Reconcile(ctx context.Context, registrationID string) (PaymentStatus, error)
	// HandleWebhook applies a gateway notification. Unresolvable
	// registrations are logged and swallowed so the gateway gets its ack.
	HandleWebhook(ctx context.Context, n WebhookNotification) error
}

// AccessController decides the post-payment capability for a registration:
// test access for olympiads, instructional email for contests/conferences.
// Invoked exactly once per registration, by the winning paid transition.
type AccessController interface {
	OnPaid(ctx context.Context, reg *Registration, event *Event)
}
