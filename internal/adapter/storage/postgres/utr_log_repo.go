package postgres

import (
	"context"
	"errors"
	"fmt"

	"rizzpay-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UTRLogRepo implements ports.UTRLogRepository. One row per UTR; redelivered
// webhooks for the same UTR update the existing row instead of duplicating it.
type UTRLogRepo struct {
	pool Pool
}

// NewUTRLogRepo creates a new UTRLogRepo.
func NewUTRLogRepo(pool Pool) *UTRLogRepo {
	return &UTRLogRepo{pool: pool}
}

// Create upserts the UTR log row for one webhook delivery.
func (r *UTRLogRepo) Create(ctx context.Context, l *domain.UTRLog) error {
	query := `INSERT INTO utr_logs (utr_number, bank, payload_enc, processing_status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (utr_number) DO UPDATE SET
			bank = EXCLUDED.bank,
			payload_enc = EXCLUDED.payload_enc,
			processing_status = EXCLUDED.processing_status,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		l.UTRNumber, l.Bank, l.PayloadEnc, l.ProcessingStatus, l.TransactionID,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert utr log: %w", err)
	}
	return nil
}

// SetStatus marks the processing outcome for a UTR.
func (r *UTRLogRepo) SetStatus(ctx context.Context, utr string, status domain.UTRProcessingStatus, transactionID *string) error {
	query := `UPDATE utr_logs SET
		processing_status = $2,
		transaction_id = COALESCE($3, transaction_id),
		updated_at = now()
		WHERE utr_number = $1`

	tag, err := r.pool.Exec(ctx, query, utr, status, transactionID)
	if err != nil {
		return fmt.Errorf("update utr log status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("utr log not found: %s", utr)
	}
	return nil
}

// GetByUTR fetches the log row for a UTR. Missing rows come back as (nil, nil).
func (r *UTRLogRepo) GetByUTR(ctx context.Context, utr string) (*domain.UTRLog, error) {
	query := `SELECT utr_number, bank, payload_enc, processing_status, transaction_id, created_at, updated_at
		FROM utr_logs WHERE utr_number = $1`

	l := &domain.UTRLog{}
	err := r.pool.QueryRow(ctx, query, utr).Scan(
		&l.UTRNumber, &l.Bank, &l.PayloadEnc, &l.ProcessingStatus, &l.TransactionID,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get utr log: %w", err)
	}
	return l, nil
}
