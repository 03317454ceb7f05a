package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"eventregistry/internal/delivery/http/helpers"
	"eventregistry/internal/domain"
)

// Browser-return polling bounds: the client re-checks up to maxReturnRetries
// times with growing delays, then settles for "processing".
const (
	maxReturnRetries = 10
	baseRetryDelayMs = 1000
	maxRetryDelayMs  = 10000
)

type PaymentController struct {
	Logger  *slog.Logger
	Service domain.PaymentService
}

func NewPaymentController(logger *slog.Logger, svc domain.PaymentService) *PaymentController {
	return &PaymentController{
		Logger:  logger,
		Service: svc,
	}
}

// StartPaymentSuccessResponse is the success response envelope for POST /pay/start/{registrationID} (201).
type StartPaymentSuccessResponse struct {
	Data  *domain.StartPaymentResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// StartPayment godoc
// @Summary Create a gateway payment for a registration
// @Description Creates a payment at the gateway for the registration's event fee and returns the checkout URL to redirect the participant to. Every attempt mints a fresh gateway payment id; an already settled registration is refused.
// @Tags payments
// @Produce json
// @Param registrationID path string true "Registration ID"
// @Success 201 {object} controllers.StartPaymentSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (already paid)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: payment_unavailable"
// @Router /pay/start/{registrationID} [post]
func (c *PaymentController) StartPayment(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}

	result, err := c.Service.Start(r.Context(), registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "registration is already paid")
			return
		}
		var gerr *domain.GatewayError
		if errors.As(err, &gerr) {
			c.Logger.ErrorContext(r.Context(), "gateway payment creation failed",
				"registration_id", registrationID, "retryable", gerr.Retryable, "err", err)
			helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodePaymentGateway, "payment is temporarily unavailable, please try again later")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// PaymentReturnResult is the reconciliation outcome reported to the browser.
// Status is "paid", "failed", or "processing"; while "processing" and under
// the retry cap, Retry/RetryAfterMs tell the client when to poll again.
type PaymentReturnResult struct {
	Status       string `json:"status"`
	Retry        int    `json:"retry,omitempty"`
	RetryAfterMs int    `json:"retry_after_ms,omitempty"`
}

// PaymentReturnSuccessResponse is the success response envelope for GET /pay/return (200).
type PaymentReturnSuccessResponse struct {
	Data  *PaymentReturnResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// PaymentReturn godoc
// @Summary Reconcile a payment after the browser returns from checkout
// @Description The return redirect is only a hint to re-check: the handler asks the gateway for the authoritative status and applies it. Uncertain states answer "processing" with a bounded retry hint; the client should poll until "paid"/"failed" or the cap is hit.
// @Tags payments
// @Produce json
// @Param registration query string true "Registration ID"
// @Param retry query int false "Retry attempt number (0-based)"
// @Success 200 {object} controllers.PaymentReturnSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /pay/return [get]
func (c *PaymentController) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	registrationID := r.URL.Query().Get("registration")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registration")
		return
	}
	retry := 0
	if s := r.URL.Query().Get("retry"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			retry = v
		}
	}

	status, err := c.Service.Reconcile(r.Context(), registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	result := &PaymentReturnResult{}
	switch status {
	case domain.PaymentStatusPaid:
		result.Status = "paid"
	case domain.PaymentStatusFailed:
		result.Status = "failed"
	default:
		result.Status = "processing"
		if retry < maxReturnRetries {
			result.Retry = retry + 1
			result.RetryAfterMs = retryDelayMs(retry)
		}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// retryDelayMs doubles the delay per attempt, capped.
func retryDelayMs(retry int) int {
	delay := baseRetryDelayMs
	for i := 0; i < retry && delay < maxRetryDelayMs; i++ {
		delay *= 2
	}
	if delay > maxRetryDelayMs {
		delay = maxRetryDelayMs
	}
	return delay
}

type webhookObjectPayload struct {
	ID       string         `json:"id"`
	Status   string         `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

type webhookRequestPayload struct {
	Event  string               `json:"event"`
	Object webhookObjectPayload `json:"object"`
}

// metadataString reads a metadata value that older integrations may have
// stored as a JSON number rather than a string.
func metadataString(metadata map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := metadata[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// Webhook godoc
// @Summary Receive a gateway payment notification
// @Description Applies the asynchronous gateway notification to the payment state machine. Always acknowledged with 200 unless the payload is unparseable, so the gateway never retries indefinitely for an event we cannot map; unresolvable registrations are logged for operator follow-up.
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unparseable payload)"
// @Router /pay/webhook [post]
func (c *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	err := c.Service.HandleWebhook(r.Context(), domain.WebhookNotification{
		Event:          payload.Event,
		ExternalID:     payload.Object.ID,
		Status:         payload.Object.Status,
		RegistrationID: metadataString(payload.Object.Metadata, "registration_id", "reg_id"),
	})
	if err != nil {
		// Acknowledge anyway: surfacing an error here would only trigger a
		// redelivery storm, and the browser-return poll recovers the state.
		c.Logger.ErrorContext(r.Context(), "webhook processing failed",
			"external_id", payload.Object.ID, "err", err)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"ok": true})
}
