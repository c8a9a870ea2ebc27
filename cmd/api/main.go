package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rizzpay-gateway/config"
	"rizzpay-gateway/internal/adapter/http/dto"
	httpHandler "rizzpay-gateway/internal/adapter/http/handler"
	pgStorage "rizzpay-gateway/internal/adapter/storage/postgres"
	redisStorage "rizzpay-gateway/internal/adapter/storage/redis"
	"rizzpay-gateway/internal/bank"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/internal/service"
	"rizzpay-gateway/pkg/logger"
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
		Msg("Starting RizzPay Gateway")

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
	txRepo := pgStorage.NewTransactionRepo(pool)
	utrRepo := pgStorage.NewUTRLogRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	activityRepo := pgStorage.NewActivityLogRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	utrGuard := redisStorage.NewUTRGuard(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	registry := bank.DefaultRegistry()
	reconSvc := service.NewReconciliationService(
		registry,
		txRepo,
		utrRepo,
		ledgerRepo,
		activityRepo,
		utrGuard,
		sigSvc,
		encSvc,
		transactor,
		cfg.Webhook.Secrets,
		cfg.Webhook.GuardTTL,
		log,
	)
	authSvc := service.NewAuthService(merchantRepo, activityRepo, hashSvc, tokenSvc, log)
	paymentSvc := service.NewPaymentService(txRepo, activityRepo, transactor, cfg.UPI.PayeeVPA, cfg.UPI.PayeeName, log)
	reportingSvc := service.NewReportingService(txRepo, ledgerRepo)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Install custom request validators
	if err := dto.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register request validators")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ReconciliationSvc: reconSvc,
		AuthSvc:           authSvc,
		PaymentSvc:        paymentSvc,
		ReportingSvc:      reportingSvc,
		TokenSvc:          tokenSvc,
		Registry:          registry,
		RateLimitStore:    rateLimitStore,
		HealthCheckers:    []ports.HealthChecker{pgHealth, redisHealth},
		Logger:            log,
		Mode:              cfg.Server.Mode,
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
