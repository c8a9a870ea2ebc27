package domain

import "time"

// UTRProcessingStatus tracks how far a received bank webhook has been
// processed.
type UTRProcessingStatus string

const (
	UTRStatusReceived   UTRProcessingStatus = "received"
	UTRStatusProcessing UTRProcessingStatus = "processing"
	UTRStatusCompleted  UTRProcessingStatus = "completed"
	UTRStatusFailed     UTRProcessingStatus = "failed"
)

// UTRLog records one bank webhook delivery keyed by its UTR. The raw payload
// is stored AES-encrypted since it can carry payer details.
type UTRLog struct {
	UTRNumber        string              `json:"utr_number"`
	Bank             string              `json:"bank"`
	PayloadEnc       string              `json:"-"`
	ProcessingStatus UTRProcessingStatus `json:"processing_status"`
	TransactionID    *string             `json:"transaction_id,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
