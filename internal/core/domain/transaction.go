package domain

import "time"

// TransactionStatus represents the lifecycle state of a payment transaction.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusSuccessful TransactionStatus = "successful"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusSettled    TransactionStatus = "settled"
	TransactionStatusDeclined   TransactionStatus = "declined"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// PaymentMethod represents the payment rail used.
type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodNetbanking PaymentMethod = "netbanking"
)

// ProcessingStage names a step in a transaction's processing timeline.
type ProcessingStage string

const (
	StageInitiated  ProcessingStage = "initiated"
	StageProcessing ProcessingStage = "processing"
	StageCompleted  ProcessingStage = "completed"
	StageFailed     ProcessingStage = "failed"
	StageSettled    ProcessingStage = "settled"
	StageDeclined   ProcessingStage = "declined"
	StageCancelled  ProcessingStage = "cancelled"
)

// stageStatus is the fixed stage -> status table. A transaction's status is
// always the mapped status of its most recent timeline entry.
var stageStatus = map[ProcessingStage]TransactionStatus{
	StageInitiated:  TransactionStatusPending,
	StageProcessing: TransactionStatusProcessing,
	StageCompleted:  TransactionStatusSuccessful,
	StageFailed:     TransactionStatusFailed,
	StageSettled:    TransactionStatusSettled,
	StageDeclined:   TransactionStatusDeclined,
	StageCancelled:  TransactionStatusCancelled,
}

// Status returns the transaction status a timeline entry with this stage
// implies. Unknown stages map to pending.
func (s ProcessingStage) Status() TransactionStatus {
	if st, ok := stageStatus[s]; ok {
		return st
	}
	return TransactionStatusPending
}

// TimelineEntry is one immutable step in a transaction's processing history.
// Entries are only ever appended, never removed or reordered.
type TimelineEntry struct {
	Stage     ProcessingStage        `json:"stage"`
	Timestamp time.Time              `json:"timestamp"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Transaction is a payment record. IDs are strings because webhook-created
// transactions carry whatever identifier the bank supplied.
type Transaction struct {
	ID             string                 `json:"id"`
	MerchantID     string                 `json:"merchant_id"` // "unknown" until attributed
	Amount         int64                  `json:"amount"`      // In paise
	Currency       string                 `json:"currency"`
	Status         TransactionStatus      `json:"status"`
	PaymentMethod  PaymentMethod          `json:"payment_method"`
	CustomerVPA    *string                `json:"customer_vpa,omitempty"`
	PaymentDetails map[string]interface{} `json:"payment_details,omitempty"`
	Timeline       []TimelineEntry        `json:"processing_timeline"`
	SettledAt      *time.Time             `json:"settled_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// IsSuccessful reports whether funds for this transaction have been received
// (successful or already settled).
func (t *Transaction) IsSuccessful() bool {
	return t.Status == TransactionStatusSuccessful || t.Status == TransactionStatusSettled
}

// LatestStage returns the stage of the most recent timeline entry, or
// StageInitiated for a transaction with no history yet.
func (t *Transaction) LatestStage() ProcessingStage {
	if len(t.Timeline) == 0 {
		return StageInitiated
	}
	return t.Timeline[len(t.Timeline)-1].Stage
}

// Webhook-created transactions get these defaults for fields the bank
// payload does not carry.
const (
	DefaultCurrency   = "INR"
	UnknownMerchantID = "unknown"
)
