package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventregistry/internal/delivery/http/helpers"
	"eventregistry/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateRegistrationRequest is the request body for POST /events/{slug}/registrations.
type CreateRegistrationRequest struct {
	FullName     string `json:"full_name"`
	Organization string `json:"organization"`
	City         string `json:"city"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ConsentPD    bool   `json:"consent_pd"`
}

// CreateRegistrationSuccessResponse is the success response envelope for POST /events/{slug}/registrations (201).
type CreateRegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CreateRegistration godoc
// @Summary Register for an event
// @Description Creates a registration for the published event with the given slug. The registration carries a pending payment from the start; use POST /pay/start/{registrationID} to begin checkout. Consent to personal data processing is mandatory.
// @Tags registrations
// @Accept json
// @Produce json
// @Param slug path string true "Event slug"
// @Param body body controllers.CreateRegistrationRequest true "Registration fields"
// @Success 201 {object} controllers.CreateRegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error with per-field messages"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug}/registrations [post]
func (c *RegistrationController) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	var req CreateRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	reg, err := c.Service.Create(r.Context(), slug, domain.RegistrationInput{
		FullName:     req.FullName,
		Organization: req.Organization,
		City:         req.City,
		Email:        req.Email,
		Phone:        req.Phone,
		ConsentPD:    req.ConsentPD,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			helpers.WriteJSONValidationError(w, verr.Fields)
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}
