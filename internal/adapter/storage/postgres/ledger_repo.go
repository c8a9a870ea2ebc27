package postgres

import (
	"context"
	"fmt"

	"rizzpay-gateway/internal/core/domain"
)

// LedgerRepo implements ports.LedgerRepository. The ledger table is
// append-only; there is deliberately no update or delete here, and the wallet
// balance is computed by aggregation.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create appends one ledger entry.
func (r *LedgerRepo) Create(ctx context.Context, e *domain.LedgerEntry) error {
	query := `INSERT INTO wallet_ledger (id, merchant_id, type, amount, currency, source, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.MerchantID, e.Type, e.Amount, e.Currency, e.Source, e.TransactionID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByMerchant fetches a page of a merchant's ledger, newest first.
func (r *LedgerRepo) ListByMerchant(ctx context.Context, merchantID string, page, pageSize int) ([]domain.LedgerEntry, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wallet_ledger WHERE merchant_id = $1`, merchantID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := r.pool.Query(ctx,
		`SELECT id, merchant_id, type, amount, currency, source, transaction_id, created_at
		FROM wallet_ledger WHERE merchant_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		merchantID, pageSize, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(&e.ID, &e.MerchantID, &e.Type, &e.Amount, &e.Currency, &e.Source, &e.TransactionID, &e.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, total, nil
}

// Balance derives the wallet balance as credits minus debits.
func (r *LedgerRepo) Balance(ctx context.Context, merchantID string, currency string) (int64, error) {
	query := `SELECT COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE -amount END), 0)
		FROM wallet_ledger WHERE merchant_id = $1 AND currency = $2`

	var balance int64
	if err := r.pool.QueryRow(ctx, query, merchantID, currency).Scan(&balance); err != nil {
		return 0, fmt.Errorf("wallet balance: %w", err)
	}
	return balance, nil
}
