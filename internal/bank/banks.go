package bank

// Supported bank slugs.
const (
	SlugHDFC   = "hdfc-bank"
	SlugSBM    = "sbm-bank"
	SlugICICI  = "icici-bank"
	SlugCanara = "canara-bank"
)

// DefaultRegistry returns the registry of banks RizzPay accepts callbacks
// from. Status tables reflect each bank's observed webhook vocabulary; keys
// are uppercase because matching is case-insensitive.
func DefaultRegistry() *Registry {
	return NewRegistry(hdfc(), sbm(), icici(), canara())
}

func hdfc() *Definition {
	return &Definition{
		Slug: SlugHDFC,
		Name: "HDFC Bank",
		Statuses: map[string]NormalizedStatus{
			"SUCCESS":    StatusSuccessful,
			"SUCCESSFUL": StatusSuccessful,
			"COMPLETED":  StatusSuccessful,
			"CREDITED":   StatusSuccessful,
			"FAILED":     StatusFailed,
			"FAILURE":    StatusFailed,
			"REJECTED":   StatusFailed,
			"PENDING":    StatusPending,
			"INITIATED":  StatusPending,
		},
		Fields: FieldMap{
			TransactionID: []string{"transaction_id", "txnId"},
			UTR:           []string{"utr", "utr_number"},
			OrderID:       []string{"orderId", "order_id"},
			Status:        []string{"status", "txnStatus"},
			Amount:        []string{"amount", "txnAmount"},
			VPA:           []string{"payer_vpa", "vpa"},
			Provider:      []string{"payment_id", "bankRefNo", "reference", "rrn", "fee", "settlement_id"},
		},
	}
}

// SBM reports hard failures as DECLINED; FAILED is deliberately absent from
// its table and falls through to the lenient pending default.
func sbm() *Definition {
	return &Definition{
		Slug: SlugSBM,
		Name: "SBM Bank",
		Statuses: map[string]NormalizedStatus{
			"SUCCESS":  StatusSuccessful,
			"CREDITED": StatusSuccessful,
			"DECLINED": StatusFailed,
			"REVERSED": StatusFailed,
			"PENDING":  StatusPending,
			"ACCEPTED": StatusPending,
		},
		Fields: FieldMap{
			TransactionID: []string{"transaction_id"},
			UTR:           []string{"utr", "rrn"},
			OrderID:       []string{"merchantOrderId", "order_id"},
			Status:        []string{"status"},
			Amount:        []string{"amount"},
			VPA:           []string{"vpa"},
			Provider:      []string{"payment_id", "rrn", "fee", "settlement_id"},
		},
	}
}

func icici() *Definition {
	return &Definition{
		Slug: SlugICICI,
		Name: "ICICI Bank",
		Statuses: map[string]NormalizedStatus{
			"SUCCESS":     StatusSuccessful,
			"TXN_SUCCESS": StatusSuccessful,
			"SETTLED":     StatusSuccessful,
			"TXN_FAILURE": StatusFailed,
			"FAILED":      StatusFailed,
			"EXPIRED":     StatusFailed,
			"PENDING":     StatusPending,
			"IN_PROCESS":  StatusPending,
		},
		Fields: FieldMap{
			TransactionID: []string{"txnId", "transaction_id"},
			UTR:           []string{"utr_number", "rrn"},
			OrderID:       []string{"orderId"},
			Status:        []string{"txnStatus", "status"},
			Amount:        []string{"txnAmount", "amount"},
			VPA:           []string{"payerVpa", "vpa"},
			Provider:      []string{"bankRefNo", "rrn", "fee", "settlement_id"},
		},
	}
}

func canara() *Definition {
	return &Definition{
		Slug: SlugCanara,
		Name: "Canara Bank",
		Statuses: map[string]NormalizedStatus{
			"SUCCESS":    StatusSuccessful,
			"COMPLETED":  StatusSuccessful,
			"FAILED":     StatusFailed,
			"DECLINED":   StatusFailed,
			"PENDING":    StatusPending,
			"PROCESSING": StatusPending,
		},
		Fields: FieldMap{
			TransactionID: []string{"transaction_id"},
			UTR:           []string{"utr_number", "utr"},
			OrderID:       []string{"order_id"},
			Status:        []string{"status", "txn_status"},
			Amount:        []string{"amount"},
			VPA:           []string{"payer_vpa"},
			Provider:      []string{"payment_id", "reference", "fee", "settlement_id"},
		},
	}
}
