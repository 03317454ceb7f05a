package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"eventregistry/internal/domain"
)

// Shared in-memory fakes for the service tests in this package.

type memEventRepo struct {
	events map[string]*domain.Event
	err    error
}

func (m *memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *memEventRepo) GetPublishedBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, ev := range m.events {
		if ev.Slug == slug && ev.IsPublished {
			return ev, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memEventRepo) ListPublished(ctx context.Context, eventType domain.EventType) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]*domain.Event, 0)
	for _, ev := range m.events {
		if ev.IsPublished && (eventType == "" || ev.Type == eventType) {
			result = append(result, ev)
		}
	}
	return result, nil
}

func (m *memEventRepo) ListFeatured(ctx context.Context) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]*domain.Event, 0)
	for _, ev := range m.events {
		if ev.IsPublished && ev.IsFeatured {
			result = append(result, ev)
		}
	}
	return result, nil
}

type memRegistrationRepo struct {
	mu            sync.Mutex
	registrations map[string]*domain.Registration
	payments      *memPaymentRepo
	nextID        int
	createErr     error
}

func newMemRegistrationRepo(payments *memPaymentRepo) *memRegistrationRepo {
	return &memRegistrationRepo{
		registrations: map[string]*domain.Registration{},
		payments:      payments,
		nextID:        1,
	}
}

func (m *memRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) (*domain.Payment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	reg.ID = "reg-" + strconv.Itoa(m.nextID)
	m.nextID++
	m.registrations[reg.ID] = reg
	payment := &domain.Payment{
		ID:             "pay-" + reg.ID,
		RegistrationID: reg.ID,
		Status:         domain.PaymentStatusPending,
	}
	if m.payments != nil {
		m.payments.put(payment)
	}
	return payment, nil
}

func (m *memRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (m *memRegistrationRepo) add(reg *domain.Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[reg.ID] = reg
}

// memPaymentRepo implements the conditional updates with a mutex, matching
// the row-level atomicity of the real repository.
type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: map[string]*domain.Payment{}}
}

func (m *memPaymentRepo) put(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.RegistrationID] = p
}

func (m *memPaymentRepo) GetByRegistrationID(ctx context.Context, registrationID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[registrationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memPaymentRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ExternalID == externalID && externalID != "" {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPaymentRepo) SetExternalID(ctx context.Context, registrationID, externalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[registrationID]
	if !ok || p.Status == domain.PaymentStatusPaid {
		return false, nil
	}
	p.ExternalID = externalID
	p.Status = domain.PaymentStatusPending
	return true, nil
}

func (m *memPaymentRepo) MarkPaid(ctx context.Context, registrationID string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[registrationID]
	if !ok || p.Status == domain.PaymentStatusPaid {
		return false, nil
	}
	p.Status = domain.PaymentStatusPaid
	p.PaidAt = &paidAt
	return true, nil
}

func (m *memPaymentRepo) MarkFailed(ctx context.Context, registrationID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[registrationID]
	if !ok || p.Status != domain.PaymentStatusPending {
		return false, nil
	}
	p.Status = domain.PaymentStatusFailed
	return true, nil
}

type memQuestionRepo struct {
	questions map[string][]*domain.Question
	err       error
}

func (m *memQuestionRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.questions[eventID], nil
}

type memResultRepo struct {
	mu      sync.Mutex
	results map[string]*domain.TestResult
}

func newMemResultRepo() *memResultRepo {
	return &memResultRepo{results: map[string]*domain.TestResult{}}
}

func (m *memResultRepo) Create(ctx context.Context, result *domain.TestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	result.ID = "res-" + result.RegistrationID
	m.results[result.RegistrationID] = result
	return nil
}

func (m *memResultRepo) GetByRegistrationID(ctx context.Context, registrationID string) (*domain.TestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[registrationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// recorderEmailService counts sends per kind so tests can assert
// exactly-once and best-effort behavior.
type recorderEmailService struct {
	mu                   sync.Mutex
	registrationReceived int
	paymentSucceeded     int
	paymentFailed        int
	materials            int
	testResults          int
}

func (r *recorderEmailService) SendRegistrationReceived(ctx context.Context, to, eventTitle, fullName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrationReceived++
}

func (r *recorderEmailService) SendPaymentSucceeded(ctx context.Context, to, eventTitle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paymentSucceeded++
}

func (r *recorderEmailService) SendPaymentFailed(ctx context.Context, to, eventTitle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paymentFailed++
}

func (r *recorderEmailService) SendMaterialsInstructions(ctx context.Context, to, eventTitle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials++
}

func (r *recorderEmailService) SendTestResult(ctx context.Context, to, eventTitle string, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.testResults++
}

// recorderAccess counts OnPaid invocations.
type recorderAccess struct {
	mu     sync.Mutex
	onPaid int
}

func (r *recorderAccess) OnPaid(ctx context.Context, reg *domain.Registration, event *domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPaid++
}

func (r *recorderAccess) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.onPaid
}

// stubGateway returns canned responses and records calls.
type stubGateway struct {
	mu           sync.Mutex
	created      []*domain.CreatePaymentRequest
	canceled     []string
	createResult *domain.GatewayPayment
	createErr    error
	findResult   *domain.GatewayPayment
	findErr      error
}

func (g *stubGateway) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, &req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.createResult, nil
}

func (g *stubGateway) FindPayment(ctx context.Context, externalID string) (*domain.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.findErr != nil {
		return nil, g.findErr
	}
	return g.findResult, nil
}

func (g *stubGateway) CancelPayment(ctx context.Context, externalID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canceled = append(g.canceled, externalID)
	return nil
}
