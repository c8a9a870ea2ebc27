package handler

import (
	"rizzpay-gateway/internal/adapter/http/middleware"
	"rizzpay-gateway/internal/adapter/storage/redis"
	"rizzpay-gateway/internal/bank"
	"rizzpay-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds everything SetupRouter wires together.
type RouterDeps struct {
	ReconciliationSvc ports.ReconciliationService
	AuthSvc           ports.AuthService
	PaymentSvc        ports.PaymentService
	ReportingSvc      ports.ReportingService
	TokenSvc          ports.TokenService
	Registry          *bank.Registry
	RateLimitStore    *redis.RateLimitStore // nil disables rate limiting
	HealthCheckers    []ports.HealthChecker
	Logger            zerolog.Logger
	Mode              string // gin mode: debug, release, test
}

const maxBodyBytes = 1 << 20 // 1 MiB

// SetupRouter builds the gin engine with the full middleware chain and all
// routes.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.Logger),
		middleware.RequestLogger(deps.Logger),
		middleware.Metrics(),
		middleware.CORS(),
		middleware.MaxBodySize(maxBodyBytes),
	)

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rules[group], deps.Logger)
	}

	healthHandler := NewHealthHandler(deps.HealthCheckers...)
	webhookHandler := NewWebhookHandler(deps.ReconciliationSvc, deps.Registry, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthSvc)
	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	walletHandler := NewWalletHandler(deps.ReportingSvc)
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)

	r.GET("/health", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// Bank-facing: no JWT, authenticated per-bank by HMAC signature inside
	// the reconciliation service.
	webhooks := v1.Group("/webhooks", rl("webhook"))
	{
		webhooks.POST("/:bank/callback", webhookHandler.HandleCallback)
		webhooks.GET("/banks", webhookHandler.ListBanks)
	}

	auth := v1.Group("/auth", rl("auth"))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	authed := v1.Group("", middleware.JWTAuth(deps.TokenSvc))
	{
		authed.POST("/payments", rl("payment"), paymentHandler.CreatePayment)

		dashboard := authed.Group("", rl("dashboard"))
		{
			dashboard.GET("/transactions", dashboardHandler.ListTransactions)
			dashboard.GET("/transactions/:id", dashboardHandler.GetTransaction)
			dashboard.GET("/dashboard/stats", dashboardHandler.GetStats)
			dashboard.GET("/wallet/balance", walletHandler.GetBalance)
			dashboard.GET("/wallet/ledger", walletHandler.ListLedger)
		}
	}

	return r
}
