package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Webhook Ingestion (PROV / WBH) ----

func ErrUnsupportedProvider(bank string) *AppError {
	return New("PROV_001", fmt.Sprintf("Unsupported bank provider: %s", bank), http.StatusBadRequest)
}

func ErrMissingCorrelationKey() *AppError {
	return New("WBH_001", "No correlation key (transaction_id, UTR or order id) in payload", http.StatusBadRequest)
}

func ErrMissingStatus() *AppError {
	return New("WBH_002", "No status field in payload", http.StatusBadRequest)
}

func ErrInvalidWebhookSignature() *AppError {
	return New("WBH_003", "Webhook signature verification failed", http.StatusUnauthorized)
}

func ErrMalformedPayload(err error) *AppError {
	return Wrap("WBH_005", "Webhook payload is not valid JSON", http.StatusBadRequest, err)
}

// ---- Transactions & Payments (TXN / PAY) ----

func ErrTransactionNotFound(id string) *AppError {
	return New("TXN_001", fmt.Sprintf("Transaction not found: %s", id), http.StatusNotFound)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_001", "Invalid amount", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Wallet (WAL) ----

// ErrWalletCredit is logged only; the webhook response must not surface it.
func ErrWalletCredit(err error) *AppError {
	return Wrap("WAL_001", "Wallet credit failed", http.StatusInternalServerError, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrPersistence(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// ErrConsistency marks a record that vanished after it was resolved.
func ErrConsistency(err error) *AppError {
	return Wrap("SYS_002", "Transaction store in inconsistent state", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic 400 validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
