package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService: merchant-initiated
// payment creation. The transaction starts pending; the bank webhook later
// moves it through its lifecycle.
type PaymentServiceImpl struct {
	txRepo       ports.TransactionRepository
	activityRepo ports.ActivityLogRepository
	transactor   ports.DBTransactor
	payeeVPA     string
	payeeName    string
	log          zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	txRepo ports.TransactionRepository,
	activityRepo ports.ActivityLogRepository,
	transactor ports.DBTransactor,
	payeeVPA string,
	payeeName string,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		txRepo:       txRepo,
		activityRepo: activityRepo,
		transactor:   transactor,
		payeeVPA:     payeeVPA,
		payeeName:    payeeName,
		log:          log,
	}
}

// CreatePayment creates a pending transaction and the UPI intent URI the
// customer pays against.
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req ports.CreatePaymentRequest) (*ports.PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	id, err := generateTransactionID()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate transaction id: %w", err))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:            id,
		MerchantID:    req.MerchantID.String(),
		Amount:        req.Amount,
		Currency:      currency,
		Status:        domain.TransactionStatusPending,
		PaymentMethod: domain.PaymentMethodUPI,
		CustomerVPA:   req.CustomerVPA,
		PaymentDetails: map[string]interface{}{
			"source": "merchant_dashboard",
		},
		Timeline: []domain.TimelineEntry{{
			Stage:     domain.StageInitiated,
			Timestamp: now,
			Message:   "payment created by merchant",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Note != "" {
		txn.PaymentDetails["note"] = req.Note
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	s.recordActivity(ctx, req, txn.ID)

	s.log.Info().
		Str("transaction_id", txn.ID).
		Str("merchant_id", txn.MerchantID).
		Int64("amount", txn.Amount).
		Msg("payment created")

	return &ports.PaymentIntent{
		Transaction:  txn,
		UPIIntentURI: s.upiIntentURI(txn, req.Note),
	}, nil
}

// upiIntentURI builds the upi://pay deep link for this transaction. Amount is
// converted from paise to the rupee decimal form UPI apps expect.
func (s *PaymentServiceImpl) upiIntentURI(txn *domain.Transaction, note string) string {
	q := url.Values{}
	q.Set("pa", s.payeeVPA)
	q.Set("pn", s.payeeName)
	q.Set("am", fmt.Sprintf("%d.%02d", txn.Amount/100, txn.Amount%100))
	q.Set("cu", txn.Currency)
	q.Set("tr", txn.ID)
	if note != "" {
		q.Set("tn", note)
	}
	return "upi://pay?" + q.Encode()
}

// recordActivity writes the payment creation activity row, best effort.
func (s *PaymentServiceImpl) recordActivity(ctx context.Context, req ports.CreatePaymentRequest, transactionID string) {
	merchantID := req.MerchantID
	entry := &domain.ActivityLog{
		ID:           uuid.New(),
		MerchantID:   &merchantID,
		Action:       domain.ActivityPaymentCreated,
		ResourceType: "transaction",
		ResourceID:   transactionID,
		Details:      fmt.Sprintf(`{"amount":%d}`, req.Amount),
		IPAddress:    req.ClientIP,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("transaction_id", transactionID).Msg("activity log write failed")
	}
}

// generateTransactionID returns an id of the form TXN<16 hex chars>.
func generateTransactionID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "TXN" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
