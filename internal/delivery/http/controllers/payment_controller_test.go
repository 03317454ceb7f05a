package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventregistry/internal/domain"
)

type mockPaymentService struct {
	startResult     *domain.StartPaymentResult
	startErr        error
	reconcileStatus domain.PaymentStatus
	reconcileErr    error
	webhookErr      error
	webhooks        []domain.WebhookNotification
}

func (m *mockPaymentService) Start(ctx context.Context, registrationID string) (*domain.StartPaymentResult, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	return m.startResult, nil
}

func (m *mockPaymentService) Reconcile(ctx context.Context, registrationID string) (domain.PaymentStatus, error) {
	if m.reconcileErr != nil {
		return "", m.reconcileErr
	}
	return m.reconcileStatus, nil
}

func (m *mockPaymentService) HandleWebhook(ctx context.Context, n domain.WebhookNotification) error {
	m.webhooks = append(m.webhooks, n)
	return m.webhookErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPaymentController_StartPayment_Success(t *testing.T) {
	svc := &mockPaymentService{startResult: &domain.StartPaymentResult{
		Payment:     &domain.Payment{ID: "pay-1", RegistrationID: "reg-1", Status: domain.PaymentStatusPending, ExternalID: "ext-1"},
		CheckoutURL: "https://pay/ext-1",
	}}
	ctrl := NewPaymentController(testLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/pay/start/reg-1", nil)
	req.SetPathValue("registrationID", "reg-1")
	w := httptest.NewRecorder()

	ctrl.StartPayment(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var resp struct {
		Data *domain.StartPaymentResult `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.CheckoutURL != "https://pay/ext-1" {
		t.Fatalf("wrong checkout url: %s", resp.Data.CheckoutURL)
	}
}

func TestPaymentController_StartPayment_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"already paid", domain.ErrForbidden, http.StatusForbidden},
		{"gateway down", &domain.GatewayError{Retryable: true, Err: errors.New("timeout")}, http.StatusBadGateway},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewPaymentController(testLogger(), &mockPaymentService{startErr: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/pay/start/reg-1", nil)
			req.SetPathValue("registrationID", "reg-1")
			w := httptest.NewRecorder()

			ctrl.StartPayment(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestPaymentController_PaymentReturn_Paid(t *testing.T) {
	ctrl := NewPaymentController(testLogger(), &mockPaymentService{reconcileStatus: domain.PaymentStatusPaid})

	req := httptest.NewRequest(http.MethodGet, "/pay/return?registration=reg-1", nil)
	w := httptest.NewRecorder()

	ctrl.PaymentReturn(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp struct {
		Data PaymentReturnResult `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Status != "paid" || resp.Data.Retry != 0 {
		t.Fatalf("unexpected result: %+v", resp.Data)
	}
}

func TestPaymentController_PaymentReturn_ProcessingRetryHints(t *testing.T) {
	tests := []struct {
		name        string
		retry       string
		wantRetry   int
		wantDelayMs int
	}{
		{"first attempt", "", 1, 1000},
		{"second attempt", "1", 2, 2000},
		{"delay capped", "5", 6, 10000},
		{"cap reached", "10", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewPaymentController(testLogger(), &mockPaymentService{reconcileStatus: domain.PaymentStatusPending})

			url := "/pay/return?registration=reg-1"
			if tt.retry != "" {
				url += "&retry=" + tt.retry
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			w := httptest.NewRecorder()

			ctrl.PaymentReturn(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			var resp struct {
				Data PaymentReturnResult `json:"data"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Data.Status != "processing" {
				t.Fatalf("expected processing, got %s", resp.Data.Status)
			}
			if resp.Data.Retry != tt.wantRetry || resp.Data.RetryAfterMs != tt.wantDelayMs {
				t.Fatalf("unexpected retry hints: %+v", resp.Data)
			}
		})
	}
}

func TestPaymentController_PaymentReturn_MissingRegistration(t *testing.T) {
	ctrl := NewPaymentController(testLogger(), &mockPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/pay/return", nil)
	w := httptest.NewRecorder()

	ctrl.PaymentReturn(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestPaymentController_Webhook_Success(t *testing.T) {
	svc := &mockPaymentService{}
	ctrl := NewPaymentController(testLogger(), svc)

	body := `{
		"event": "payment.succeeded",
		"object": {
			"id": "ext-1",
			"status": "succeeded",
			"metadata": {"registration_id": "reg-1"}
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/pay/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Webhook(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if len(svc.webhooks) != 1 {
		t.Fatalf("expected 1 forwarded notification, got %d", len(svc.webhooks))
	}
	n := svc.webhooks[0]
	if n.ExternalID != "ext-1" || n.Status != "succeeded" || n.RegistrationID != "reg-1" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestPaymentController_Webhook_NumericLegacyMetadata(t *testing.T) {
	svc := &mockPaymentService{}
	ctrl := NewPaymentController(testLogger(), svc)

	// Older integrations stored the registration reference as a number
	// under "reg_id".
	body := `{"event": "payment.succeeded", "object": {"id": "ext-1", "status": "succeeded", "metadata": {"reg_id": 42}}}`
	req := httptest.NewRequest(http.MethodPost, "/pay/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Webhook(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if svc.webhooks[0].RegistrationID != "42" {
		t.Fatalf("legacy numeric metadata not converted: %+v", svc.webhooks[0])
	}
}

func TestPaymentController_Webhook_MalformedJSON(t *testing.T) {
	svc := &mockPaymentService{}
	ctrl := NewPaymentController(testLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/pay/webhook", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	ctrl.Webhook(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if len(svc.webhooks) != 0 {
		t.Fatalf("nothing must be forwarded for unparseable payloads")
	}
}

func TestPaymentController_Webhook_ProcessingErrorStillAcked(t *testing.T) {
	svc := &mockPaymentService{webhookErr: errors.New("db down")}
	ctrl := NewPaymentController(testLogger(), svc)

	body := `{"event": "payment.succeeded", "object": {"id": "ext-1", "status": "succeeded", "metadata": {}}}`
	req := httptest.NewRequest(http.MethodPost, "/pay/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Webhook(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("processing failures must still be acknowledged, got %d", w.Code)
	}
	var resp struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Data["ok"] {
		t.Fatalf("expected ok ack, got %v", resp.Data)
	}
}
