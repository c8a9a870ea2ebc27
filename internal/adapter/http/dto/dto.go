// Package dto defines the request and response shapes of the merchant API.
// Domain types never cross the HTTP boundary directly.
package dto

import (
	"time"

	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"
)

// ---- Auth ----

type RegisterRequest struct {
	Username     string  `json:"username" binding:"required,min=3,max=64,safe_id"`
	Password     string  `json:"password" binding:"required,min=8,max=128"`
	BusinessName string  `json:"business_name" binding:"required,min=2,max=128"`
	VPA          *string `json:"vpa" binding:"omitempty,vpa"`
}

type RegisterResponse struct {
	MerchantID string `json:"merchant_id"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// ---- Payments ----

// CreatePaymentRequest carries the merchant's payment intent. Amount is in
// paise.
type CreatePaymentRequest struct {
	Amount      int64   `json:"amount" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"omitempty,len=3"`
	CustomerVPA *string `json:"customer_vpa" binding:"omitempty,vpa"`
	Note        string  `json:"note" binding:"omitempty,max=256"`
}

type PaymentIntentResponse struct {
	Transaction  TransactionResponse `json:"transaction"`
	UPIIntentURI string              `json:"upi_intent_uri"`
}

// ---- Transactions ----

type TimelineEntryResponse struct {
	Stage     string                 `json:"stage"`
	Timestamp string                 `json:"timestamp"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

type TransactionResponse struct {
	ID             string                  `json:"id"`
	Amount         int64                   `json:"amount"`
	Currency       string                  `json:"currency"`
	Status         string                  `json:"status"`
	PaymentMethod  string                  `json:"payment_method"`
	CustomerVPA    *string                 `json:"customer_vpa,omitempty"`
	PaymentDetails map[string]interface{}  `json:"payment_details,omitempty"`
	Timeline       []TimelineEntryResponse `json:"processing_timeline"`
	SettledAt      *string                 `json:"settled_at,omitempty"`
	CreatedAt      string                  `json:"created_at"`
	UpdatedAt      string                  `json:"updated_at"`
}

type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int64                 `json:"total_pages"`
}

// ---- Wallet ----

type WalletBalanceResponse struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

type LedgerEntryResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Source        string `json:"source"`
	TransactionID string `json:"transaction_id"`
	CreatedAt     string `json:"created_at"`
}

type LedgerListResponse struct {
	Items      []LedgerEntryResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int64                 `json:"total_pages"`
}

// ---- Dashboard ----

type DashboardStatsResponse struct {
	TotalTransactions int64 `json:"total_transactions"`
	Successful        int64 `json:"successful"`
	Failed            int64 `json:"failed"`
	Pending           int64 `json:"pending"`
	TotalVolume       int64 `json:"total_volume"`
}

// ---- Converters ----

func FromTransaction(t *domain.Transaction) TransactionResponse {
	timeline := make([]TimelineEntryResponse, 0, len(t.Timeline))
	for _, e := range t.Timeline {
		timeline = append(timeline, TimelineEntryResponse{
			Stage:     string(e.Stage),
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Message:   e.Message,
			Details:   e.Details,
		})
	}

	resp := TransactionResponse{
		ID:             t.ID,
		Amount:         t.Amount,
		Currency:       t.Currency,
		Status:         string(t.Status),
		PaymentMethod:  string(t.PaymentMethod),
		CustomerVPA:    t.CustomerVPA,
		PaymentDetails: t.PaymentDetails,
		Timeline:       timeline,
		CreatedAt:      t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.SettledAt != nil {
		s := t.SettledAt.UTC().Format(time.RFC3339)
		resp.SettledAt = &s
	}
	return resp
}

func FromTransactionList(items []domain.Transaction, total int64, page, pageSize int) TransactionListResponse {
	resp := TransactionListResponse{
		Items:      make([]TransactionResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	for i := range items {
		resp.Items = append(resp.Items, FromTransaction(&items[i]))
	}
	return resp
}

func FromLedgerEntry(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID.String(),
		Type:          string(e.Type),
		Amount:        e.Amount,
		Currency:      e.Currency,
		Source:        e.Source,
		TransactionID: e.TransactionID,
		CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func FromLedgerList(items []domain.LedgerEntry, total int64, page, pageSize int) LedgerListResponse {
	resp := LedgerListResponse{
		Items:      make([]LedgerEntryResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	for i := range items {
		resp.Items = append(resp.Items, FromLedgerEntry(&items[i]))
	}
	return resp
}

func FromStats(s *ports.TransactionStats) DashboardStatsResponse {
	return DashboardStatsResponse{
		TotalTransactions: s.TotalTransactions,
		Successful:        s.Successful,
		Failed:            s.Failed,
		Pending:           s.Pending,
		TotalVolume:       s.TotalVolume,
	}
}

func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
