package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntryType distinguishes credits from debits.
type LedgerEntryType string

const (
	LedgerEntryCredit LedgerEntryType = "credit"
	LedgerEntryDebit  LedgerEntryType = "debit"
)

// Ledger entry sources.
const (
	LedgerSourceBankWebhook = "bank_webhook"
	LedgerSourceAdjustment  = "manual_adjustment"
)

// LedgerEntry is an append-only wallet movement for a merchant. Entries are
// never mutated after creation; the wallet balance is the derived sum of
// credits minus debits, not a stored value. MerchantID is a string so that
// credits for webhook-created transactions not yet attributed to a registered
// merchant still land in the ledger (under "unknown") instead of being lost.
type LedgerEntry struct {
	ID            uuid.UUID       `json:"id"`
	MerchantID    string          `json:"merchant_id"`
	Type          LedgerEntryType `json:"type"`
	Amount        int64           `json:"amount"` // In paise
	Currency      string          `json:"currency"`
	Source        string          `json:"source"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
}
