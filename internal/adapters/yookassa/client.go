package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"eventregistry/internal/domain"
)

// Config holds YooKassa API credentials and endpoint.
type Config struct {
	ShopID    string
	SecretKey string
	APIBase   string
}

type client struct {
	httpClient *http.Client
	baseURL    string
	shopID     string
	secretKey  string
}

// NewClient returns a PaymentGateway backed by the YooKassa v3 REST API.
// When httpClient is nil a client with a 5s timeout is used, so a stuck
// gateway call can never hold a request open indefinitely.
func NewClient(cfg Config, httpClient *http.Client) domain.PaymentGateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	base := cfg.APIBase
	if base == "" {
		base = "https://api.yookassa.ru/v3"
	}
	return &client{
		httpClient: httpClient,
		baseURL:    base,
		shopID:     cfg.ShopID,
		secretKey:  cfg.SecretKey,
	}
}

type amountPayload struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmationPayload struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createPaymentPayload struct {
	Amount       amountPayload       `json:"amount"`
	Confirmation confirmationPayload `json:"confirmation"`
	Capture      bool                `json:"capture"`
	Description  string              `json:"description"`
	Metadata     map[string]string   `json:"metadata"`
}

type paymentPayload struct {
	ID           string               `json:"id"`
	Status       string               `json:"status"`
	Paid         bool                 `json:"paid"`
	Confirmation *confirmationPayload `json:"confirmation"`
	Metadata     map[string]string    `json:"metadata"`
}

// AmountValue formats an amount in minor units as a decimal string with
// exactly two fraction digits, as the gateway requires.
func AmountValue(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func (c *client) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.GatewayPayment, error) {
	payload := createPaymentPayload{
		Amount: amountPayload{
			Value:    AmountValue(req.AmountMinor),
			Currency: req.Currency,
		},
		Confirmation: confirmationPayload{
			Type:      "redirect",
			ReturnURL: req.ReturnURL,
		},
		Capture:     true,
		Description: req.Description,
		Metadata:    map[string]string{"registration_id": req.RegistrationID},
	}
	// A fresh idempotency key per creation attempt: retried creation mints a
	// new gateway payment instead of colliding with an abandoned one.
	resp, err := c.do(ctx, http.MethodPost, "/payments", uuid.NewString(), payload)
	if err != nil {
		return nil, err
	}
	return toGatewayPayment(resp), nil
}

func (c *client) FindPayment(ctx context.Context, externalID string) (*domain.GatewayPayment, error) {
	resp, err := c.do(ctx, http.MethodGet, "/payments/"+externalID, "", nil)
	if err != nil {
		return nil, err
	}
	return toGatewayPayment(resp), nil
}

func (c *client) CancelPayment(ctx context.Context, externalID string) error {
	_, err := c.do(ctx, http.MethodPost, "/payments/"+externalID+"/cancel", uuid.NewString(), struct{}{})
	return err
}

func (c *client) do(ctx context.Context, method, path, idempotenceKey string, payload any) (*paymentPayload, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, &domain.GatewayError{Retryable: false, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &domain.GatewayError{Retryable: false, Err: fmt.Errorf("create request: %w", err)}
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotenceKey != "" {
		req.Header.Set("Idempotence-Key", idempotenceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network and timeout failures are retryable: the next
		// reconciliation trigger simply re-attempts.
		return nil, &domain.GatewayError{Retryable: true, Err: fmt.Errorf("gateway request: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &domain.GatewayError{Retryable: true, Err: fmt.Errorf("gateway returned status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, &domain.GatewayError{Retryable: false, Err: fmt.Errorf("gateway returned status %d", resp.StatusCode)}
	}

	var out paymentPayload
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.GatewayError{Retryable: true, Err: fmt.Errorf("decode gateway response: %w", err)}
	}
	return &out, nil
}

func toGatewayPayment(p *paymentPayload) *domain.GatewayPayment {
	gp := &domain.GatewayPayment{
		ExternalID: p.ID,
		Status:     p.Status,
		Paid:       p.Paid,
		Metadata:   p.Metadata,
	}
	if p.Confirmation != nil {
		gp.CheckoutURL = p.Confirmation.ConfirmationURL
	}
	return gp
}
