package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventregistry/internal/delivery/http/controllers"
	"eventregistry/internal/delivery/http/middleware"
	"eventregistry/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	paymentController *controllers.PaymentController,
	quizController *controllers.QuizController,
	adminController *controllers.AdminController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAdmin := middleware.RequireAdmin(verifier)

	// Catalog
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{slug}", eventController.GetEvent)

	// Registration
	mux.HandleFunc("POST /events/{slug}/registrations", registrationController.CreateRegistration)

	// Payments
	mux.HandleFunc("POST /pay/start/{registrationID}", paymentController.StartPayment)
	mux.HandleFunc("GET /pay/return", paymentController.PaymentReturn)
	mux.HandleFunc("POST /pay/webhook", paymentController.Webhook)

	// Olympiad test
	mux.HandleFunc("GET /test/{registrationID}", quizController.GetTest)
	mux.HandleFunc("POST /test/{registrationID}", quizController.SubmitTest)

	// Admin
	mux.HandleFunc("POST /admin/login", adminController.Login)
	mux.HandleFunc("GET /admin/export/csv", requireAdmin(adminController.ExportCSV))

	// Operations
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
