package ports

import (
	"context"
	"time"

	"rizzpay-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository defines persistence operations for transactions.
// Methods accepting pgx.Tx run inside transaction blocks so concurrent
// webhook deliveries for the same record serialize on the row lock.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Transaction, error)
	GetByUTRForUpdate(ctx context.Context, tx pgx.Tx, utr string) (*domain.Transaction, error)
	ApplyStatusUpdate(ctx context.Context, tx pgx.Tx, update StatusUpdate) error
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, merchantID string, periodStart *int64) (*TransactionStats, error)
}

// StatusUpdate carries one idempotent state transition: exactly one timeline
// entry appended, provider fields merged into payment_details, status set
// from the entry's stage.
type StatusUpdate struct {
	TransactionID string
	Entry         domain.TimelineEntry
	Status        domain.TransactionStatus
	DetailsPatch  map[string]interface{}
	SettledAt     *time.Time
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	MerchantID string
	Status     *domain.TransactionStatus
	From       *int64 // Unix timestamp
	To         *int64 // Unix timestamp
	Page       int
	PageSize   int
}

// TransactionStats holds aggregated statistics for the dashboard.
type TransactionStats struct {
	TotalTransactions int64
	Successful        int64
	Failed            int64
	Pending           int64
	TotalVolume       int64 // Sum of successful transaction amounts
}

// UTRLogRepository defines persistence for per-webhook UTR log rows.
type UTRLogRepository interface {
	Create(ctx context.Context, log *domain.UTRLog) error
	SetStatus(ctx context.Context, utr string, status domain.UTRProcessingStatus, transactionID *string) error
	GetByUTR(ctx context.Context, utr string) (*domain.UTRLog, error)
}

// LedgerRepository defines persistence for the append-only wallet ledger.
// Entries are insert-only; the balance is a derived aggregate.
type LedgerRepository interface {
	Create(ctx context.Context, entry *domain.LedgerEntry) error
	ListByMerchant(ctx context.Context, merchantID string, page, pageSize int) ([]domain.LedgerEntry, int64, error)
	Balance(ctx context.Context, merchantID string, currency string) (int64, error)
}

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByUsername(ctx context.Context, username string) (*domain.Merchant, error)
}

// ActivityLogRepository defines persistence for activity rows.
type ActivityLogRepository interface {
	Create(ctx context.Context, log *domain.ActivityLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
