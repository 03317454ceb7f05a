package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventregistry/internal/delivery/http/helpers"
	"eventregistry/internal/domain"
)

const adminTokenExpiry = 12 * time.Hour

type AdminController struct {
	Logger            *slog.Logger
	Passwords         domain.PasswordVerifier
	Tokens            domain.TokenIssuer
	AdminPasswordHash string
	Export            domain.ExportService
}

func NewAdminController(
	logger *slog.Logger,
	passwords domain.PasswordVerifier,
	tokens domain.TokenIssuer,
	adminPasswordHash string,
	export domain.ExportService,
) *AdminController {
	return &AdminController{
		Logger:            logger,
		Passwords:         passwords,
		Tokens:            tokens,
		AdminPasswordHash: adminPasswordHash,
		Export:            export,
	}
}

// AdminLoginRequest is the request body for POST /admin/login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// Validate implements helpers.Validator.
func (r *AdminLoginRequest) Validate() []string {
	if strings.TrimSpace(r.Password) == "" {
		return []string{"password is required"}
	}
	return nil
}

// AdminLoginResponse carries the issued bearer token.
type AdminLoginResponse struct {
	Token string `json:"token"`
}

// Login godoc
// @Summary Obtain an admin token
// @Description Checks the admin password and issues a short-lived bearer token for the privileged export endpoint.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body controllers.AdminLoginRequest true "Admin password"
// @Success 200 {object} helpers.APIResponse "data.token is the bearer token"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /admin/login [post]
func (c *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if c.AdminPasswordHash == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "admin access is not configured")
		return
	}
	if err := c.Passwords.Compare(c.AdminPasswordHash, req.Password); err != nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid password")
		return
	}
	token, err := c.Tokens.Issue("admin", adminTokenExpiry)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "token issue failed", "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AdminLoginResponse{Token: token})
}

// ExportCSV godoc
// @Summary Export registrations as CSV
// @Description Streams a read-only CSV dump of registrations joined with event title, payment status, and test score. Requires an admin bearer token.
// @Tags admin
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/export/csv [get]
func (c *AdminController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="registrations.csv"`)
	if err := c.Export.WriteCSV(r.Context(), w); err != nil {
		// Headers may already be out; log and abort the stream.
		c.Logger.ErrorContext(r.Context(), "csv export failed", "err", err)
	}
}
