package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. payment_details and
// processing_timeline live in JSONB columns; the timeline is append-only and
// updated via the JSONB concatenation operator so an update never rewrites
// history.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const txColumns = `id, merchant_id, amount, currency, status, payment_method,
	customer_vpa, payment_details, processing_timeline, settled_at, created_at, updated_at`

// Create inserts a new transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	details, err := json.Marshal(t.PaymentDetails)
	if err != nil {
		return fmt.Errorf("marshal payment details: %w", err)
	}
	timeline, err := json.Marshal(t.Timeline)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}

	query := `INSERT INTO transactions (id, merchant_id, amount, currency, status, payment_method,
		customer_vpa, payment_details, processing_timeline, settled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.Exec(ctx, query,
		t.ID, t.MerchantID, t.Amount, t.Currency, t.Status, t.PaymentMethod,
		t.CustomerVPA, details, timeline, t.SettledAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by its string id.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, txColumns)
	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a transaction by id with a row lock, so concurrent
// webhook deliveries for the same record serialize.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1 FOR UPDATE`, txColumns)
	return r.scanTransaction(tx.QueryRow(ctx, query, id))
}

// GetByUTRForUpdate fetches a transaction by the UTR recorded in its payment
// details, with a row lock.
func (r *TransactionRepo) GetByUTRForUpdate(ctx context.Context, tx pgx.Tx, utr string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE payment_details->>'utr' = $1 FOR UPDATE`, txColumns)
	return r.scanTransaction(tx.QueryRow(ctx, query, utr))
}

// ApplyStatusUpdate performs one idempotent state transition: appends exactly
// one timeline entry, merges the details patch, sets the new status. The
// settled timestamp is written once and never overwritten.
func (r *TransactionRepo) ApplyStatusUpdate(ctx context.Context, tx pgx.Tx, update ports.StatusUpdate) error {
	entry, err := json.Marshal(update.Entry)
	if err != nil {
		return fmt.Errorf("marshal timeline entry: %w", err)
	}
	patch, err := json.Marshal(update.DetailsPatch)
	if err != nil {
		return fmt.Errorf("marshal details patch: %w", err)
	}

	query := `UPDATE transactions SET
		status = $2,
		payment_details = COALESCE(payment_details, '{}'::jsonb) || $3::jsonb,
		processing_timeline = COALESCE(processing_timeline, '[]'::jsonb) || $4::jsonb,
		settled_at = COALESCE(settled_at, $5),
		updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, update.TransactionID, update.Status, patch, entry, update.SettledAt)
	if err != nil {
		return fmt.Errorf("apply status update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", update.TransactionID)
	}
	return nil
}

// List fetches transactions with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
	args = append(args, params.MerchantID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		txColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := r.scanTransactionRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// GetStats retrieves aggregated transaction statistics for a merchant.
// Successful volume counts both successful and settled transactions.
func (r *TransactionRepo) GetStats(ctx context.Context, merchantID string, periodStart *int64) (*ports.TransactionStats, error) {
	var args []any
	argIdx := 1

	condition := fmt.Sprintf("merchant_id = $%d", argIdx)
	args = append(args, merchantID)
	argIdx++

	if periodStart != nil {
		condition += fmt.Sprintf(" AND created_at >= to_timestamp($%d)", argIdx)
		args = append(args, *periodStart)
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status IN ('successful', 'settled')) AS successful,
		COUNT(*) FILTER (WHERE status IN ('failed', 'declined', 'cancelled')) AS failed,
		COUNT(*) FILTER (WHERE status IN ('pending', 'processing')) AS pending,
		COALESCE(SUM(amount) FILTER (WHERE status IN ('successful', 'settled')), 0) AS volume
		FROM transactions WHERE %s`, condition)

	stats := &ports.TransactionStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalTransactions, &stats.Successful, &stats.Failed, &stats.Pending,
		&stats.TotalVolume,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction stats: %w", err)
	}
	return stats, nil
}

// scanTransaction scans a single row into a Transaction. Missing rows come
// back as (nil, nil).
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t, err := scanTransactionFrom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepo) scanTransactionRow(rows pgx.Rows) (*domain.Transaction, error) {
	return scanTransactionFrom(rows)
}

func scanTransactionFrom(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var details, timeline []byte

	err := row.Scan(
		&t.ID, &t.MerchantID, &t.Amount, &t.Currency, &t.Status, &t.PaymentMethod,
		&t.CustomerVPA, &details, &timeline, &t.SettledAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &t.PaymentDetails); err != nil {
			return nil, fmt.Errorf("unmarshal payment details: %w", err)
		}
	}
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &t.Timeline); err != nil {
			return nil, fmt.Errorf("unmarshal timeline: %w", err)
		}
	}
	return t, nil
}
