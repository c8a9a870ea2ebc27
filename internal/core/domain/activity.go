package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityAction represents the type of recorded activity.
type ActivityAction string

const (
	ActivityWalletCredit   ActivityAction = "WALLET_CREDIT"
	ActivityPaymentCreated ActivityAction = "PAYMENT_CREATED"
	ActivityRegister       ActivityAction = "REGISTER"
	ActivityLogin          ActivityAction = "LOGIN"
)

// ActivityLog records a single activity row. Rows are append-only.
type ActivityLog struct {
	ID           uuid.UUID      `json:"id"`
	MerchantID   *uuid.UUID     `json:"merchant_id,omitempty"`
	Action       ActivityAction `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Details      string         `json:"details,omitempty"` // JSON string
	IPAddress    string         `json:"ip_address,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
