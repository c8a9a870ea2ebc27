package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:            "TXN1",
		MerchantID:    domain.UnknownMerchantID,
		Amount:        49950,
		Currency:      "INR",
		Status:        domain.TransactionStatusPending,
		PaymentMethod: domain.PaymentMethodUPI,
		PaymentDetails: map[string]interface{}{
			"utr": "UTR123",
		},
		Timeline: []domain.TimelineEntry{{
			Stage:     domain.StageInitiated,
			Timestamp: now,
			Message:   "created from bank webhook",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func txCols() []string {
	return []string{"id", "merchant_id", "amount", "currency", "status", "payment_method",
		"customer_vpa", "payment_details", "processing_timeline", "settled_at", "created_at", "updated_at"}
}

func txRow(t *testing.T, txn *domain.Transaction) *pgxmock.Rows {
	t.Helper()
	details, err := json.Marshal(txn.PaymentDetails)
	require.NoError(t, err)
	timeline, err := json.Marshal(txn.Timeline)
	require.NoError(t, err)
	return pgxmock.NewRows(txCols()).AddRow(
		txn.ID, txn.MerchantID, txn.Amount, txn.Currency, txn.Status, txn.PaymentMethod,
		txn.CustomerVPA, details, timeline, txn.SettledAt, txn.CreatedAt, txn.UpdatedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			txn.ID, txn.MerchantID, txn.Amount, txn.Currency, txn.Status, txn.PaymentMethod,
			txn.CustomerVPA, pgxmock.AnyArg(), pgxmock.AnyArg(), txn.SettledAt, txn.CreatedAt, txn.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE id =").
		WithArgs(txn.ID).
		WillReturnRows(txRow(t, txn))

	got, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, "UTR123", got.PaymentDetails["utr"])
	require.Len(t, got.Timeline, 1)
	assert.Equal(t, domain.StageInitiated, got.Timeline[0].Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE id =").
		WithArgs("NOPE").
		WillReturnRows(pgxmock.NewRows(txCols()))

	got, err := repo.GetByID(context.Background(), "NOPE")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByUTRForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM transactions WHERE payment_details->>'utr' = (.+) FOR UPDATE`).
		WithArgs("UTR123").
		WillReturnRows(txRow(t, txn))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	got, err := repo.GetByUTRForUpdate(context.Background(), dbTx, "UTR123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, txn.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ApplyStatusUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET").
		WithArgs("TXN1", domain.TransactionStatusSuccessful, pgxmock.AnyArg(), pgxmock.AnyArg(), &now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ApplyStatusUpdate(context.Background(), dbTx, ports.StatusUpdate{
		TransactionID: "TXN1",
		Entry: domain.TimelineEntry{
			Stage:     domain.StageCompleted,
			Timestamp: now,
			Message:   "hdfc-bank webhook: SUCCESS",
		},
		Status:       domain.TransactionStatusSuccessful,
		DetailsPatch: map[string]interface{}{"utr": "UTR123"},
		SettledAt:    &now,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ApplyStatusUpdate_MissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ApplyStatusUpdate(context.Background(), dbTx, ports.StatusUpdate{
		TransactionID: "GONE",
		Status:        domain.TransactionStatusSuccessful,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTransactionRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT").
		WithArgs("merchant-1").
		WillReturnRows(pgxmock.NewRows([]string{"total", "successful", "failed", "pending", "volume"}).
			AddRow(int64(10), int64(6), int64(1), int64(3), int64(250000)))

	stats, err := repo.GetStats(context.Background(), "merchant-1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalTransactions)
	assert.Equal(t, int64(6), stats.Successful)
	assert.Equal(t, int64(250000), stats.TotalVolume)
	assert.NoError(t, mock.ExpectationsWereMet())
}
