package handler

import (
	"rizzpay-gateway/internal/adapter/http/dto"
	"rizzpay-gateway/internal/adapter/http/middleware"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"
	"rizzpay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler serves merchant-initiated payment creation.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// CreatePayment handles POST /api/v1/payments.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	merchantID, ok := merchantFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	intent, err := h.paymentSvc.CreatePayment(c.Request.Context(), ports.CreatePaymentRequest{
		MerchantID:  merchantID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		CustomerVPA: req.CustomerVPA,
		Note:        req.Note,
		ClientIP:    c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.PaymentIntentResponse{
		Transaction:  dto.FromTransaction(intent.Transaction),
		UPIIntentURI: intent.UPIIntentURI,
	})
}

// merchantFromContext reads the authenticated merchant set by JWTAuth.
func merchantFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
