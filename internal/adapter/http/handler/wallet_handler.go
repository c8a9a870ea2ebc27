package handler

import (
	"strconv"

	"rizzpay-gateway/internal/adapter/http/dto"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"
	"rizzpay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler serves merchant wallet balance and ledger queries.
type WalletHandler struct {
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a wallet handler.
func NewWalletHandler(reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{reportingSvc: reportingSvc}
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	merchantID, ok := merchantFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	currency := c.DefaultQuery("currency", "INR")
	balance, err := h.reportingSvc.GetWalletBalance(c.Request.Context(), merchantID, currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{Balance: balance, Currency: currency})
}

// ListLedger handles GET /api/v1/wallet/ledger.
func (h *WalletHandler) ListLedger(c *gin.Context) {
	merchantID, ok := merchantFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	entries, total, err := h.reportingSvc.ListLedger(c.Request.Context(), merchantID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromLedgerList(entries, total, page, pageSize))
}

// queryInt parses an integer query parameter, falling back on garbage.
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
