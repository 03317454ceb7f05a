package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventregistry/config"
	_ "eventregistry/docs"
	authadapter "eventregistry/internal/adapters/auth"
	emailadapter "eventregistry/internal/adapters/email"
	"eventregistry/internal/adapters/yookassa"
	delivery "eventregistry/internal/delivery/http"
	"eventregistry/internal/delivery/http/controllers"
	"eventregistry/internal/delivery/http/middleware"
	"eventregistry/internal/metrics"
	"eventregistry/internal/repository/postgres"
	"eventregistry/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	metrics.Register()

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	questionRepo := postgres.NewQuestionRepository(db)
	resultRepo := postgres.NewTestResultRepository(db)
	exportRepo := postgres.NewExportRepository(db)

	// Adapters
	mailer, err := emailadapter.NewMailer(emailadapter.Config{
		Provider:       cfg.Mailer.Provider,
		FromAddress:    cfg.Mailer.FromAddress,
		FromName:       cfg.Mailer.FromName,
		SESRegion:      cfg.Mailer.SESRegion,
		SESAccessKeyID: cfg.Mailer.SESAccessKeyID,
		SESSecretKey:   cfg.Mailer.SESSecretKey,
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	gateway := yookassa.NewClient(yookassa.Config{
		ShopID:    cfg.YooKassa.ShopID,
		SecretKey: cfg.YooKassa.SecretKey,
		APIBase:   cfg.YooKassa.APIBase,
	}, nil)
	tokenIssuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := authadapter.NewJWTVerifier(cfg.JWTSecret)
	passwordVerifier := authadapter.NewBcryptVerifier()

	// Services
	emailService := services.NewEmailService(mailer, logger, cfg.Mailer.MaterialsEmail)
	catalogService := services.NewCatalogService(eventRepo)
	registrationService := services.NewRegistrationService(eventRepo, registrationRepo, emailService, logger)
	accessController := services.NewAccessController(emailService, logger)
	paymentService := services.NewPaymentService(
		registrationRepo, eventRepo, paymentRepo, gateway, accessController, emailService, logger,
		services.PaymentConfig{
			ReturnURL: cfg.YooKassa.ReturnURL,
			Currency:  cfg.YooKassa.Currency,
		},
	)
	quizService := services.NewQuizService(registrationRepo, eventRepo, paymentRepo, questionRepo, resultRepo, emailService, logger)
	exportService := services.NewExportService(exportRepo)

	// HTTP
	mux := delivery.NewRouter(
		controllers.NewEventController(logger, catalogService),
		controllers.NewRegistrationController(logger, registrationService),
		controllers.NewPaymentController(logger, paymentService),
		controllers.NewQuizController(logger, quizService),
		controllers.NewAdminController(logger, passwordVerifier, tokenIssuer, cfg.AdminPasswordHash, exportService),
		tokenVerifier,
	)
	handler := middleware.Logging(logger, middleware.CORS(cfg.CORSOrigins, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
