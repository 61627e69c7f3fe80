package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robavelii/FusionForms/config"
	httpHandler "github.com/robavelii/FusionForms/internal/adapter/http/handler"
	pgStorage "github.com/robavelii/FusionForms/internal/adapter/storage/postgres"
	redisStorage "github.com/robavelii/FusionForms/internal/adapter/storage/redis"
	"github.com/robavelii/FusionForms/internal/core/ports"
	"github.com/robavelii/FusionForms/internal/service"
	"github.com/robavelii/FusionForms/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting FusionForms API")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	formRepo := pgStorage.NewFormRepo(pool)
	submissionRepo := pgStorage.NewSubmissionRepo(pool)
	webhookRepo := pgStorage.NewWebhookRepo(pool)
	webhookLogRepo := pgStorage.NewWebhookLogRepo(pool)
	analyticsRepo := pgStorage.NewAnalyticsRepo(pool)
	userRepo := pgStorage.NewUserRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	schemaValidator := service.NewFormSchemaValidator()
	recaptcha := service.NewRecaptchaVerifier(
		cfg.Recaptcha.Secret,
		cfg.Recaptcha.VerifyURL,
		&http.Client{Timeout: 5 * time.Second},
		log,
	)

	// Webhook fan-out worker pool
	dispatcher := service.NewWebhookDispatcher(
		formRepo,
		webhookRepo,
		webhookLogRepo,
		encSvc,
		sigSvc,
		&http.Client{Timeout: 10 * time.Second},
		cfg.Webhook.Workers,
		cfg.Webhook.QueueSize,
		log,
	)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, log)
	formSvc := service.NewFormService(formRepo, analyticsRepo, dispatcher, log)
	submissionSvc := service.NewSubmissionService(
		formRepo,
		submissionRepo,
		analyticsRepo,
		transactor,
		schemaValidator,
		recaptcha,
		dispatcher,
		log,
	)
	webhookSvc := service.NewWebhookService(webhookRepo, formRepo, webhookLogRepo, encSvc, dispatcher, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		FormSvc:        formSvc,
		SubmissionSvc:  submissionSvc,
		WebhookSvc:     webhookSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
