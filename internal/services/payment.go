package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventregistry/internal/domain"
	"eventregistry/internal/metrics"
)

// PaymentConfig holds the deployment-fixed parameters of the payment flow.
type PaymentConfig struct {
	ReturnURL string
	Currency  string
}

type paymentService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	paymentRepo      domain.PaymentRepository
	gateway          domain.PaymentGateway
	access           domain.AccessController
	emails           domain.EmailService
	logger           *slog.Logger
	cfg              PaymentConfig
	now              func() time.Time
}

// NewPaymentService creates the payment lifecycle service. All three
// reconciliation triggers (browser return, webhook, manual retry) funnel into
// the same transition function; the paid side effect is gated on the
// repository's compare-and-set, so it fires exactly once per registration no
// matter how many triggers race.
func NewPaymentService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	paymentRepo domain.PaymentRepository,
	gateway domain.PaymentGateway,
	access domain.AccessController,
	emails domain.EmailService,
	logger *slog.Logger,
	cfg PaymentConfig,
) domain.PaymentService {
	return &paymentService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		paymentRepo:      paymentRepo,
		gateway:          gateway,
		access:           access,
		emails:           emails,
		logger:           logger,
		cfg:              cfg,
		now:              time.Now,
	}
}

func (s *paymentService) load(ctx context.Context, registrationID string) (*domain.Registration, *domain.Event, *domain.Payment, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("get registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get event: %w", err)
	}
	payment, err := s.paymentRepo.GetByRegistrationID(ctx, registrationID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get payment: %w", err)
	}
	return reg, event, payment, nil
}

func (s *paymentService) Start(ctx context.Context, registrationID string) (*domain.StartPaymentResult, error) {
	reg, event, payment, err := s.load(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentStatusPaid {
		return nil, domain.ErrForbidden
	}

	// A free event has nothing to collect: settle it immediately through the
	// same transition function so the paid side effect still fires once.
	if event.FeeMinor == 0 {
		if _, err := s.apply(ctx, reg, event, domain.GatewayStatusSucceeded); err != nil {
			return nil, err
		}
		payment, err = s.paymentRepo.GetByRegistrationID(ctx, registrationID)
		if err != nil {
			return nil, fmt.Errorf("get payment: %w", err)
		}
		return &domain.StartPaymentResult{Payment: payment}, nil
	}

	gp, err := s.gateway.CreatePayment(ctx, domain.CreatePaymentRequest{
		AmountMinor:    event.FeeMinor,
		Currency:       s.cfg.Currency,
		Description:    fmt.Sprintf("Оплата участия: %s (%s)", event.Title, reg.FullName),
		ReturnURL:      s.cfg.ReturnURL + "?registration=" + reg.ID,
		RegistrationID: reg.ID,
	})
	if err != nil {
		// The pre-created pending payment row is untouched; the caller may
		// simply retry later.
		return nil, fmt.Errorf("create gateway payment: %w", err)
	}
	metrics.PaymentsStarted.Inc()

	changed, err := s.paymentRepo.SetExternalID(ctx, reg.ID, gp.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("store external id: %w", err)
	}
	if !changed {
		// The registration got paid while we were talking to the gateway.
		// The fresh gateway payment is now orphaned; cancel it best-effort.
		s.logger.WarnContext(ctx, "payment already settled, canceling new gateway payment",
			"registration_id", reg.ID, "external_id", gp.ExternalID)
		if cerr := s.gateway.CancelPayment(ctx, gp.ExternalID); cerr != nil {
			s.logger.WarnContext(ctx, "cancel orphaned gateway payment failed",
				"external_id", gp.ExternalID, "err", cerr)
		}
		return nil, domain.ErrForbidden
	}

	payment, err = s.paymentRepo.GetByRegistrationID(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	s.logger.InfoContext(ctx, "gateway payment created",
		"registration_id", reg.ID, "external_id", gp.ExternalID, "status", gp.Status)
	return &domain.StartPaymentResult{Payment: payment, CheckoutURL: gp.CheckoutURL}, nil
}

func (s *paymentService) Reconcile(ctx context.Context, registrationID string) (domain.PaymentStatus, error) {
	metrics.ReconcileAttempts.Inc()

	reg, event, payment, err := s.load(ctx, registrationID)
	if err != nil {
		return "", err
	}
	if payment.Status == domain.PaymentStatusPaid {
		return domain.PaymentStatusPaid, nil
	}
	if payment.ExternalID == "" {
		// No gateway payment exists yet, so there is nothing to ask.
		return payment.Status, nil
	}

	gp, err := s.gateway.FindPayment(ctx, payment.ExternalID)
	if err != nil {
		// No authoritative status this attempt. Persisted state stands and
		// the next trigger re-checks.
		s.logger.WarnContext(ctx, "gateway lookup failed during reconcile",
			"registration_id", reg.ID, "external_id", payment.ExternalID, "err", err)
		return payment.Status, nil
	}
	return s.apply(ctx, reg, event, gp.Status)
}

func (s *paymentService) HandleWebhook(ctx context.Context, n domain.WebhookNotification) error {
	metrics.WebhooksReceived.Inc()

	reg, event, payment, err := s.resolve(ctx, n)
	if err != nil {
		return err
	}
	if reg == nil {
		metrics.WebhooksUnresolvable.Inc()
		s.logger.ErrorContext(ctx, "webhook could not be mapped to a registration",
			"external_id", n.ExternalID, "registration_id", n.RegistrationID, "status", n.Status)
		return nil
	}

	// A webhook can arrive before the browser leaves the checkout page;
	// record the external id if the row has none yet.
	if payment.ExternalID == "" && n.ExternalID != "" {
		if _, err := s.paymentRepo.SetExternalID(ctx, reg.ID, n.ExternalID); err != nil {
			return fmt.Errorf("store external id: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "gateway webhook",
		"event", n.Event, "external_id", n.ExternalID, "status", n.Status, "registration_id", reg.ID)

	_, err = s.apply(ctx, reg, event, n.Status)
	return err
}

// resolve maps a notification to a registration: metadata first, stored
// external id second. A nil registration with nil error means unresolvable.
func (s *paymentService) resolve(ctx context.Context, n domain.WebhookNotification) (*domain.Registration, *domain.Event, *domain.Payment, error) {
	if n.RegistrationID != "" {
		reg, event, payment, err := s.load(ctx, n.RegistrationID)
		if err == nil {
			return reg, event, payment, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, err
		}
	}
	if n.ExternalID != "" {
		payment, err := s.paymentRepo.GetByExternalID(ctx, n.ExternalID)
		if err == nil {
			reg, event, payment, err := s.load(ctx, payment.RegistrationID)
			if err != nil {
				return nil, nil, nil, err
			}
			return reg, event, payment, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, err
		}
	}
	return nil, nil, nil, nil
}

// apply is the single transition function behind every trigger. It is
// idempotent under arbitrary re-invocation and out-of-order delivery:
// the conditional updates in the payment repository decide who wins, and
// side effects fire only for the winner.
func (s *paymentService) apply(ctx context.Context, reg *domain.Registration, event *domain.Event, authoritativeStatus string) (domain.PaymentStatus, error) {
	switch authoritativeStatus {
	case domain.GatewayStatusSucceeded:
		changed, err := s.paymentRepo.MarkPaid(ctx, reg.ID, s.now())
		if err != nil {
			return "", fmt.Errorf("mark paid: %w", err)
		}
		if changed {
			metrics.PaymentsPaid.Inc()
			s.logger.InfoContext(ctx, "payment settled", "registration_id", reg.ID, "event", event.Slug)
			s.access.OnPaid(ctx, reg, event)
		}
		return domain.PaymentStatusPaid, nil

	case domain.GatewayStatusCanceled, "failed":
		changed, err := s.paymentRepo.MarkFailed(ctx, reg.ID)
		if err != nil {
			return "", fmt.Errorf("mark failed: %w", err)
		}
		if !changed {
			// The row was not pending: either already failed, or paid and
			// therefore final. Report what is persisted.
			payment, err := s.paymentRepo.GetByRegistrationID(ctx, reg.ID)
			if err != nil {
				return "", fmt.Errorf("get payment: %w", err)
			}
			return payment.Status, nil
		}
		metrics.PaymentsFailed.Inc()
		s.emails.SendPaymentFailed(ctx, reg.Email, event.Title)
		return domain.PaymentStatusFailed, nil

	default:
		// pending, waiting_for_capture, or anything unknown: leave the
		// persisted status alone and let the caller decide whether to retry.
		return domain.PaymentStatusPending, nil
	}
}
