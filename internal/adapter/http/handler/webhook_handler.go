// Package handler wires HTTP routes to the core services.
package handler

import (
	"io"

	"rizzpay-gateway/internal/bank"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"
	"rizzpay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var webhookCallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rizzpay",
	Subsystem: "webhook",
	Name:      "callbacks_total",
	Help:      "Bank webhook callbacks by bank slug and outcome.",
}, []string{"bank", "outcome"})

// WebhookHandler receives asynchronous bank payment notifications.
type WebhookHandler struct {
	reconSvc ports.ReconciliationService
	registry *bank.Registry
	log      zerolog.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(reconSvc ports.ReconciliationService, registry *bank.Registry, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconSvc: reconSvc,
		registry: registry,
		log:      log.With().Str("component", "webhook_handler").Logger(),
	}
}

// HandleCallback processes POST /api/v1/webhooks/:bank/callback. The response
// shape matters: banks drop 4xx acknowledgements and retry 5xx, so every
// classification error here decides whether the bank sends the event again.
func (h *WebhookHandler) HandleCallback(c *gin.Context) {
	bankSlug := c.Param("bank")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		webhookCallbacksTotal.WithLabelValues(bankSlug, "rejected").Inc()
		response.WebhookError(c, apperror.Validation("unreadable request body"))
		return
	}

	result, err := h.reconSvc.ProcessCallback(c.Request.Context(), ports.CallbackRequest{
		Bank:      bankSlug,
		Payload:   body,
		Signature: c.GetHeader("X-Rizzpay-Signature"),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		webhookCallbacksTotal.WithLabelValues(bankSlug, "rejected").Inc()
		h.log.Warn().Err(err).Str("bank", bankSlug).Msg("webhook rejected")
		response.WebhookError(c, err)
		return
	}

	outcome := "processed"
	if result.Duplicate {
		outcome = "duplicate"
	}
	webhookCallbacksTotal.WithLabelValues(bankSlug, outcome).Inc()

	response.WebhookSuccess(c, result.Message, result.TransactionID, string(result.PaymentStatus))
}

// ListBanks returns the bank slugs this gateway accepts callbacks from.
func (h *WebhookHandler) ListBanks(c *gin.Context) {
	response.OK(c, gin.H{"banks": h.registry.Slugs()})
}
