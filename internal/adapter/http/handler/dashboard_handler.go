package handler

import (
	"rizzpay-gateway/internal/adapter/http/dto"
	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"
	"rizzpay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the merchant dashboard read models.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// ListTransactions handles GET /api/v1/transactions.
func (h *DashboardHandler) ListTransactions(c *gin.Context) {
	merchantID, ok := merchantFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.TransactionListParams{
		MerchantID: merchantID.String(),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}
	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}
	if from := int64(queryInt(c, "from", 0)); from > 0 {
		params.From = &from
	}
	if to := int64(queryInt(c, "to", 0)); to > 0 {
		params.To = &to
	}

	items, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransactionList(items, total, params.Page, params.PageSize))
}

// GetTransaction handles GET /api/v1/transactions/:id.
func (h *DashboardHandler) GetTransaction(c *gin.Context) {
	merchantID, ok := merchantFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txn, err := h.reportingSvc.GetTransaction(c.Request.Context(), merchantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(txn))
}

// GetStats handles GET /api/v1/dashboard/stats. The period query accepts
// day, week or month; anything else means all time.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	merchantID, ok := merchantFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	stats, err := h.reportingSvc.GetDashboardStats(c.Request.Context(), merchantID, c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromStats(stats))
}
