package ports

import (
	"context"
	"time"

	"rizzpay-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// CallbackRequest is one raw bank webhook delivery.
type CallbackRequest struct {
	Bank      string
	Payload   []byte
	Signature string // X-Rizzpay-Signature header; empty when the bank sends none
	ClientIP  string
}

// CallbackResult is the outcome the webhook handler acknowledges to the bank.
type CallbackResult struct {
	TransactionID  string
	PaymentStatus  domain.TransactionStatus
	Duplicate      bool // another delivery for the same UTR is already in flight
	WalletCredited bool
	Message        string
}

// ReconciliationService processes asynchronous bank payment notifications.
type ReconciliationService interface {
	ProcessCallback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}

// CreatePaymentRequest holds validated input for merchant-initiated payments.
type CreatePaymentRequest struct {
	MerchantID  uuid.UUID
	Amount      int64
	Currency    string
	CustomerVPA *string
	Note        string
	ClientIP    string
}

// PaymentIntent is a freshly created pending transaction plus the UPI intent
// URI the customer pays against.
type PaymentIntent struct {
	Transaction  *domain.Transaction
	UPIIntentURI string
}

// PaymentService defines merchant-initiated payment creation.
type PaymentService interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentIntent, error)
}

// ReportingService defines dashboard read models.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetTransaction(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Transaction, error)
	GetWalletBalance(ctx context.Context, merchantID uuid.UUID, currency string) (int64, error)
	ListLedger(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.LedgerEntry, int64, error)
	GetDashboardStats(ctx context.Context, merchantID uuid.UUID, period string) (*TransactionStats, error)
}

// AuthService defines merchant authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for merchant registration.
type RegisterRequest struct {
	Username     string
	Password     string
	BusinessName string
	VPA          *string
}

// RegisterResponse holds the registration result.
type RegisterResponse struct {
	MerchantID uuid.UUID
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(merchantID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	MerchantID uuid.UUID
	Username   string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// EncryptionService handles AES-256-GCM encryption/decryption of stored
// webhook payloads.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification of webhook
// bodies.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// UTRGuard serializes webhook processing per UTR: at most one delivery for a
// given UTR may be in flight at a time.
type UTRGuard interface {
	// Acquire returns true when this caller now holds the in-flight slot.
	Acquire(ctx context.Context, utr string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, utr string) error
}
