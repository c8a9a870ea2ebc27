package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"rizzpay-gateway/internal/bank"
	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/internal/core/ports/mocks"
	"rizzpay-gateway/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reconTestDeps struct {
	svc          *ReconciliationServiceImpl
	txRepo       *mocks.MockTransactionRepository
	utrRepo      *mocks.MockUTRLogRepository
	ledgerRepo   *mocks.MockLedgerRepository
	activityRepo *mocks.MockActivityLogRepository
	guard        *mocks.MockUTRGuard
	sigSvc       *mocks.MockSignatureService
	encSvc       *mocks.MockEncryptionService
	transactor   *mocks.MockDBTransactor
	ctrl         *gomock.Controller
}

func setupReconciliationService(t *testing.T, secrets map[string]string) *reconTestDeps {
	ctrl := gomock.NewController(t)
	d := &reconTestDeps{
		txRepo:       mocks.NewMockTransactionRepository(ctrl),
		utrRepo:      mocks.NewMockUTRLogRepository(ctrl),
		ledgerRepo:   mocks.NewMockLedgerRepository(ctrl),
		activityRepo: mocks.NewMockActivityLogRepository(ctrl),
		guard:        mocks.NewMockUTRGuard(ctrl),
		sigSvc:       mocks.NewMockSignatureService(ctrl),
		encSvc:       mocks.NewMockEncryptionService(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewReconciliationService(
		bank.DefaultRegistry(),
		d.txRepo, d.utrRepo, d.ledgerRepo, d.activityRepo,
		d.guard, d.sigSvc, d.encSvc, d.transactor,
		secrets, time.Minute, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func TestReconciliation_UnknownBank(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	_, err := d.svc.ProcessCallback(context.Background(), ports.CallbackRequest{
		Bank:    "axis-bank",
		Payload: []byte(`{"transaction_id":"TXN1","status":"SUCCESS"}`),
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PROV_001", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestReconciliation_MissingCorrelationKey(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	_, err := d.svc.ProcessCallback(context.Background(), ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"status":"SUCCESS","amount":100}`),
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WBH_001", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestReconciliation_MissingStatus(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	_, err := d.svc.ProcessCallback(context.Background(), ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"transaction_id":"TXN1"}`),
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WBH_002", appErr.Code)
}

// A success webhook for an id nobody has seen creates the transaction,
// appends a completed entry and posts exactly one wallet credit.
func TestReconciliation_FreshTransactionSuccess(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, "TXN1").Return(nil, nil)

	var created *domain.Transaction
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			created = txn
			return nil
		})

	d.txRepo.EXPECT().ApplyStatusUpdate(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, update ports.StatusUpdate) error {
			assert.Equal(t, "TXN1", update.TransactionID)
			assert.Equal(t, domain.StageCompleted, update.Entry.Stage)
			assert.Equal(t, domain.TransactionStatusSuccessful, update.Status)
			assert.NotNil(t, update.SettledAt)
			return nil
		})

	d.ledgerRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *domain.LedgerEntry) error {
			assert.Equal(t, domain.LedgerEntryCredit, entry.Type)
			assert.Equal(t, domain.UnknownMerchantID, entry.MerchantID)
			assert.Equal(t, int64(49950), entry.Amount)
			assert.Equal(t, domain.DefaultCurrency, entry.Currency)
			assert.Equal(t, "TXN1", entry.TransactionID)
			return nil
		})
	d.activityRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	result, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"transaction_id":"TXN1","status":"SUCCESS","amount":499.50}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "TXN1", result.TransactionID)
	assert.Equal(t, domain.TransactionStatusSuccessful, result.PaymentStatus)
	assert.True(t, result.WalletCredited)

	require.NotNil(t, created)
	assert.Equal(t, domain.UnknownMerchantID, created.MerchantID)
	assert.Equal(t, domain.DefaultCurrency, created.Currency)
	assert.Equal(t, domain.PaymentMethodUPI, created.PaymentMethod)
	assert.Equal(t, int64(49950), created.Amount)
}

// Redelivered success: the transaction is already successful, so a second
// timeline entry is appended but no second credit is posted.
func TestReconciliation_RedeliveredSuccessDoesNotDoubleCredit(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	existing := &domain.Transaction{
		ID:         "TXN1",
		MerchantID: domain.UnknownMerchantID,
		Amount:     49950,
		Currency:   domain.DefaultCurrency,
		Status:     domain.TransactionStatusSuccessful,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, "TXN1").Return(existing, nil)
	d.txRepo.EXPECT().ApplyStatusUpdate(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, update ports.StatusUpdate) error {
			assert.Equal(t, domain.StageCompleted, update.Entry.Stage)
			return nil
		})
	// No ledgerRepo.Create expectation: a second credit would fail the test.

	result, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"transaction_id":"TXN1","status":"SUCCESS","amount":499.50}`),
	})

	require.NoError(t, err)
	assert.False(t, result.WalletCredited)
	assert.Equal(t, domain.TransactionStatusSuccessful, result.PaymentStatus)
}

// sbm-bank has no FAILED entry in its vocabulary, so FAILED falls back to
// pending and the transaction never terminally fails off an unmapped status.
func TestReconciliation_UnmappedStatusStaysPending(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	existing := &domain.Transaction{
		ID:         "TXN9",
		MerchantID: domain.UnknownMerchantID,
		Amount:     1000,
		Currency:   domain.DefaultCurrency,
		Status:     domain.TransactionStatusPending,
		PaymentDetails: map[string]interface{}{
			"utr": "UTR123",
		},
	}

	d.guard.EXPECT().Acquire(ctx, "UTR123", time.Minute).Return(true, nil)
	d.guard.EXPECT().Release(gomock.Any(), "UTR123").Return(nil)
	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc-payload", nil)
	d.utrRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.utrRepo.EXPECT().SetStatus(ctx, "UTR123", domain.UTRStatusCompleted, gomock.Any()).Return(nil)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, "UTR123").Return(nil, nil)
	d.txRepo.EXPECT().GetByUTRForUpdate(ctx, tx, "UTR123").Return(existing, nil)
	d.txRepo.EXPECT().ApplyStatusUpdate(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, update ports.StatusUpdate) error {
			assert.Equal(t, domain.StageProcessing, update.Entry.Stage)
			assert.Equal(t, domain.TransactionStatusProcessing, update.Status)
			assert.Nil(t, update.SettledAt)
			return nil
		})

	result, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:    bank.SlugSBM,
		Payload: []byte(`{"utr":"UTR123","status":"FAILED"}`),
	})

	require.NoError(t, err)
	assert.False(t, result.WalletCredited)
	assert.NotEqual(t, domain.TransactionStatusFailed, result.PaymentStatus)
}

// A second delivery while the first still holds the UTR slot is acknowledged
// as a duplicate without touching the transaction store.
func TestReconciliation_DuplicateInFlightUTR(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.guard.EXPECT().Acquire(ctx, "UTR123", time.Minute).Return(false, nil)

	result, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"utr":"UTR123","status":"SUCCESS"}`),
	})

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
}

// Losing Redis must not block reconciliation: the guard fails open.
func TestReconciliation_GuardUnavailableFailsOpen(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.guard.EXPECT().Acquire(ctx, "UTR123", time.Minute).Return(false, assert.AnError)
	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc-payload", nil)
	d.utrRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.utrRepo.EXPECT().SetStatus(ctx, "UTR123", domain.UTRStatusCompleted, gomock.Any()).Return(nil)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, "UTR123").Return(nil, nil)
	d.txRepo.EXPECT().GetByUTRForUpdate(ctx, tx, "UTR123").Return(nil, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.txRepo.EXPECT().ApplyStatusUpdate(ctx, tx, gomock.Any()).Return(nil)
	d.ledgerRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.activityRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	result, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"utr":"UTR123","status":"SUCCESS"}`),
	})

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
}

func TestReconciliation_SignatureRejected(t *testing.T) {
	secrets := map[string]string{bank.SlugHDFC: "shh"}
	d := setupReconciliationService(t, secrets)
	defer d.ctrl.Finish()

	payload := `{"transaction_id":"TXN1","status":"SUCCESS"}`
	d.sigSvc.EXPECT().Verify("shh", payload, "bad-sig").Return(false)

	_, err := d.svc.ProcessCallback(context.Background(), ports.CallbackRequest{
		Bank:      bank.SlugHDFC,
		Payload:   []byte(payload),
		Signature: "bad-sig",
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WBH_003", appErr.Code)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

func TestReconciliation_SignatureAccepted(t *testing.T) {
	secrets := map[string]string{bank.SlugHDFC: "shh"}
	d := setupReconciliationService(t, secrets)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	payload := `{"transaction_id":"TXN1","status":"PENDING"}`

	d.sigSvc.EXPECT().Verify("shh", payload, "good-sig").Return(true)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, "TXN1").Return(&domain.Transaction{
		ID:         "TXN1",
		MerchantID: domain.UnknownMerchantID,
		Status:     domain.TransactionStatusPending,
	}, nil)
	d.txRepo.EXPECT().ApplyStatusUpdate(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:      bank.SlugHDFC,
		Payload:   []byte(payload),
		Signature: "good-sig",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusProcessing, result.PaymentStatus)
}

// Failure webhooks mark the transaction failed but never touch the ledger.
func TestReconciliation_FailureStatusNoCredit(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, "TXN1").Return(&domain.Transaction{
		ID:         "TXN1",
		MerchantID: domain.UnknownMerchantID,
		Status:     domain.TransactionStatusPending,
	}, nil)
	d.txRepo.EXPECT().ApplyStatusUpdate(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, update ports.StatusUpdate) error {
			assert.Equal(t, domain.StageFailed, update.Entry.Stage)
			assert.Equal(t, domain.TransactionStatusFailed, update.Status)
			return nil
		})

	result, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"transaction_id":"TXN1","status":"FAILED"}`),
	})

	require.NoError(t, err)
	assert.False(t, result.WalletCredited)
	assert.Equal(t, domain.TransactionStatusFailed, result.PaymentStatus)
}

func TestReconciliation_BeginFailure(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.transactor.EXPECT().Begin(ctx).Return(nil, assert.AnError)

	_, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"transaction_id":"TXN1","status":"SUCCESS"}`),
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

// A ledger write failure is logged, not surfaced: the bank must not retry a
// webhook whose financial status update already committed.
func TestReconciliation_LedgerFailureDoesNotFailWebhook(t *testing.T) {
	d := setupReconciliationService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, "TXN1").Return(&domain.Transaction{
		ID:         "TXN1",
		MerchantID: domain.UnknownMerchantID,
		Amount:     5000,
		Currency:   domain.DefaultCurrency,
		Status:     domain.TransactionStatusPending,
	}, nil)
	d.txRepo.EXPECT().ApplyStatusUpdate(ctx, tx, gomock.Any()).Return(nil)
	d.ledgerRepo.EXPECT().Create(ctx, gomock.Any()).Return(assert.AnError)

	result, err := d.svc.ProcessCallback(ctx, ports.CallbackRequest{
		Bank:    bank.SlugHDFC,
		Payload: []byte(`{"transaction_id":"TXN1","status":"SUCCESS"}`),
	})

	require.NoError(t, err)
	assert.False(t, result.WalletCredited)
	assert.Equal(t, domain.TransactionStatusSuccessful, result.PaymentStatus)
}
