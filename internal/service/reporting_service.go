package service

import (
	"context"
	"fmt"
	"time"

	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"

	"github.com/google/uuid"
)

// ReportingServiceImpl implements ports.ReportingService: the read models
// behind the merchant dashboard.
type ReportingServiceImpl struct {
	txRepo     ports.TransactionRepository
	ledgerRepo ports.LedgerRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(txRepo ports.TransactionRepository, ledgerRepo ports.LedgerRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		txRepo:     txRepo,
		ledgerRepo: ledgerRepo,
	}
}

// ListTransactions returns a filtered, paginated transaction page.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrPersistence(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// GetTransaction returns one transaction, scoped to the requesting merchant.
// A transaction owned by a different merchant is indistinguishable from a
// missing one.
func (s *ReportingServiceImpl) GetTransaction(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil || txn.MerchantID != merchantID.String() {
		return nil, apperror.ErrTransactionNotFound(id)
	}
	return txn, nil
}

// GetWalletBalance returns the derived wallet balance in paise.
func (s *ReportingServiceImpl) GetWalletBalance(ctx context.Context, merchantID uuid.UUID, currency string) (int64, error) {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	balance, err := s.ledgerRepo.Balance(ctx, merchantID.String(), currency)
	if err != nil {
		return 0, apperror.ErrPersistence(fmt.Errorf("wallet balance: %w", err))
	}
	return balance, nil
}

// ListLedger returns a page of the merchant's wallet ledger, newest first.
func (s *ReportingServiceImpl) ListLedger(ctx context.Context, merchantID uuid.UUID, page, pageSize int) ([]domain.LedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	entries, total, err := s.ledgerRepo.ListByMerchant(ctx, merchantID.String(), page, pageSize)
	if err != nil {
		return nil, 0, apperror.ErrPersistence(fmt.Errorf("list ledger: %w", err))
	}
	return entries, total, nil
}

// GetDashboardStats aggregates transaction counts and successful volume for
// the given period ("day", "week", "month" or "all").
func (s *ReportingServiceImpl) GetDashboardStats(ctx context.Context, merchantID uuid.UUID, period string) (*ports.TransactionStats, error) {
	periodStart := periodStartUnix(period, time.Now().UTC())

	stats, err := s.txRepo.GetStats(ctx, merchantID.String(), periodStart)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("transaction stats: %w", err))
	}
	return stats, nil
}

// periodStartUnix maps a named period to its start timestamp. Unknown periods
// mean no lower bound.
func periodStartUnix(period string, now time.Time) *int64 {
	var start time.Time
	switch period {
	case "day":
		start = now.AddDate(0, 0, -1)
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month":
		start = now.AddDate(0, -1, 0)
	default:
		return nil
	}
	ts := start.Unix()
	return &ts
}
