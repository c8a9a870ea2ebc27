package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[string]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transactions[t.ID]; exists {
		return fmt.Errorf("transaction already exists: %s", t.ID)
	}
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryTransactionRepo) GetByUTRForUpdate(ctx context.Context, tx pgx.Tx, utr string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.PaymentDetails != nil && t.PaymentDetails["utr"] == utr {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) ApplyStatusUpdate(ctx context.Context, tx pgx.Tx, update ports.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[update.TransactionID]
	if !ok {
		return fmt.Errorf("transaction not found: %s", update.TransactionID)
	}
	t.Status = update.Status
	t.Timeline = append(t.Timeline, update.Entry)
	if t.PaymentDetails == nil {
		t.PaymentDetails = map[string]interface{}{}
	}
	for k, v := range update.DetailsPatch {
		t.PaymentDetails[k] = v
	}
	if t.SettledAt == nil && update.SettledAt != nil {
		t.SettledAt = update.SettledAt
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if params.MerchantID != "" && t.MerchantID != params.MerchantID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.From != nil && t.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && t.CreatedAt.Unix() > *params.To {
			continue
		}
		result = append(result, *t)
	}
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) GetStats(ctx context.Context, merchantID string, periodStart *int64) (*ports.TransactionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.TransactionStats{}
	for _, t := range r.transactions {
		if t.MerchantID != merchantID {
			continue
		}
		if periodStart != nil && t.CreatedAt.Unix() < *periodStart {
			continue
		}
		stats.TotalTransactions++
		switch t.Status {
		case domain.TransactionStatusSuccessful, domain.TransactionStatusSettled:
			stats.Successful++
			stats.TotalVolume += t.Amount
		case domain.TransactionStatusFailed, domain.TransactionStatusDeclined, domain.TransactionStatusCancelled:
			stats.Failed++
		default:
			stats.Pending++
		}
	}
	return stats, nil
}

// --- In-Memory UTR Log Repo ---

type inMemoryUTRLogRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.UTRLog
}

func newInMemoryUTRLogRepo() *inMemoryUTRLogRepo {
	return &inMemoryUTRLogRepo{logs: make(map[string]*domain.UTRLog)}
}

func (r *inMemoryUTRLogRepo) Create(ctx context.Context, log *domain.UTRLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *log
	r.logs[log.UTRNumber] = &cp
	return nil
}

func (r *inMemoryUTRLogRepo) SetStatus(ctx context.Context, utr string, status domain.UTRProcessingStatus, transactionID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[utr]
	if !ok {
		return fmt.Errorf("utr log not found: %s", utr)
	}
	l.ProcessingStatus = status
	if transactionID != nil {
		l.TransactionID = transactionID
	}
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryUTRLogRepo) GetByUTR(ctx context.Context, utr string) (*domain.UTRLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[utr]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryLedgerRepo) ListByMerchant(ctx context.Context, merchantID string, page, pageSize int) ([]domain.LedgerEntry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.LedgerEntry
	for _, e := range r.entries {
		if e.MerchantID == merchantID {
			result = append(result, e)
		}
	}
	total := int64(len(result))

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.LedgerEntry{}, total, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryLedgerRepo) Balance(ctx context.Context, merchantID string, currency string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var balance int64
	for _, e := range r.entries {
		if e.MerchantID != merchantID || e.Currency != currency {
			continue
		}
		if e.Type == domain.LedgerEntryCredit {
			balance += e.Amount
		} else {
			balance -= e.Amount
		}
	}
	return balance, nil
}

func (r *inMemoryLedgerRepo) creditCount(merchantID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.MerchantID == merchantID && e.Type == domain.LedgerEntryCredit {
			n++
		}
	}
	return n
}

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.merchants {
		if existing.Username == m.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMerchantRepo) GetByUsername(ctx context.Context, username string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.Username == username {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Activity Log Repo ---

type inMemoryActivityRepo struct {
	mu   sync.Mutex
	logs []domain.ActivityLog
}

func newInMemoryActivityRepo() *inMemoryActivityRepo {
	return &inMemoryActivityRepo{}
}

func (r *inMemoryActivityRepo) Create(ctx context.Context, log *domain.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

// --- In-Memory Transactor ---

// lockingTransactor serializes "transactions" on one mutex, standing in for
// the row locks the real postgres transactor provides.
type lockingTransactor struct {
	mu sync.Mutex
}

func newLockingTransactor() *lockingTransactor {
	return &lockingTransactor{}
}

func (t *lockingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: &t.mu}, nil
}

// memTx is a pgx.Tx over the in-memory stores: Commit and Rollback release
// the transactor lock exactly once.
type memTx struct {
	release *sync.Mutex
	done    bool
}

func (t *memTx) finish() {
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
}

func (t *memTx) Commit(ctx context.Context) error   { t.finish(); return nil }
func (t *memTx) Rollback(ctx context.Context) error { t.finish(); return nil }

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
