package postgres

import (
	"context"
	"fmt"

	"rizzpay-gateway/internal/core/domain"
)

// ActivityLogRepo implements ports.ActivityLogRepository. Append-only.
type ActivityLogRepo struct {
	pool Pool
}

// NewActivityLogRepo creates a new ActivityLogRepo.
func NewActivityLogRepo(pool Pool) *ActivityLogRepo {
	return &ActivityLogRepo{pool: pool}
}

// Create appends one activity row.
func (r *ActivityLogRepo) Create(ctx context.Context, l *domain.ActivityLog) error {
	query := `INSERT INTO activity_logs (id, merchant_id, action, resource_type, resource_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.MerchantID, l.Action, l.ResourceType, l.ResourceID, l.Details, l.IPAddress, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}
