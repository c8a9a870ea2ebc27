package response

import (
	"errors"
	"net/http"
	"time"

	"rizzpay-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuccessResponse is the standard success envelope for merchant API routes.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope for merchant API routes.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// WebhookAck is the acknowledgement shape banks expect on the callback
// endpoint. It is deliberately flat: {status, message, transaction_id?,
// payment_status?}.
type WebhookAck struct {
	Status        string `json:"status"` // "success" | "error"
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			RequestID: getRequestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	// Unknown error -> 500
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// WebhookSuccess sends a 200 acknowledgement in the flat bank-facing shape.
func WebhookSuccess(c *gin.Context, message, transactionID, paymentStatus string) {
	c.JSON(http.StatusOK, WebhookAck{
		Status:        "success",
		Message:       message,
		TransactionID: transactionID,
		PaymentStatus: paymentStatus,
	})
}

// WebhookError sends an error in the flat bank-facing shape. AppErrors keep
// their mapped HTTP status so banks retry 5xx and drop 4xx.
func WebhookError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus
		message = appErr.Message
	}

	c.JSON(status, WebhookAck{
		Status:  "error",
		Message: message,
	})
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
