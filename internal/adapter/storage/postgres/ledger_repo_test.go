package postgres

import (
	"context"
	"testing"
	"time"

	"rizzpay-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		MerchantID:    "unknown",
		Type:          domain.LedgerEntryCredit,
		Amount:        49950,
		Currency:      "INR",
		Source:        domain.LedgerSourceBankWebhook,
		TransactionID: "TXN1",
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO wallet_ledger").
		WithArgs(entry.ID, entry.MerchantID, entry.Type, entry.Amount, entry.Currency,
			entry.Source, entry.TransactionID, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Balance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("merchant-1", "INR").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(125000)))

	balance, err := repo.Balance(context.Background(), "merchant-1", "INR")
	require.NoError(t, err)
	assert.Equal(t, int64(125000), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByMerchant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	now := time.Now().UTC()
	id := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("merchant-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT (.+) FROM wallet_ledger").
		WithArgs("merchant-1", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "merchant_id", "type", "amount", "currency", "source", "transaction_id", "created_at"}).
			AddRow(id, "merchant-1", domain.LedgerEntryCredit, int64(49950), "INR", domain.LedgerSourceBankWebhook, "TXN1", now))

	entries, total, err := repo.ListByMerchant(context.Background(), "merchant-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, int64(49950), entries[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
