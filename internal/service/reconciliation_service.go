package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rizzpay-gateway/internal/bank"
	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ReconciliationServiceImpl implements ports.ReconciliationService. It is the
// single entry point for asynchronous bank payment notifications: normalize
// the payload, resolve or create the transaction, apply exactly one timeline
// entry, and credit the merchant wallet on the pending-to-successful edge.
type ReconciliationServiceImpl struct {
	registry     *bank.Registry
	txRepo       ports.TransactionRepository
	utrRepo      ports.UTRLogRepository
	ledgerRepo   ports.LedgerRepository
	activityRepo ports.ActivityLogRepository
	guard        ports.UTRGuard
	sigSvc       ports.SignatureService
	encSvc       ports.EncryptionService
	transactor   ports.DBTransactor
	secrets      map[string]string // bank slug -> shared webhook secret; empty means unsigned bank
	guardTTL     time.Duration
	log          zerolog.Logger
}

// NewReconciliationService creates a new ReconciliationServiceImpl.
func NewReconciliationService(
	registry *bank.Registry,
	txRepo ports.TransactionRepository,
	utrRepo ports.UTRLogRepository,
	ledgerRepo ports.LedgerRepository,
	activityRepo ports.ActivityLogRepository,
	guard ports.UTRGuard,
	sigSvc ports.SignatureService,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	secrets map[string]string,
	guardTTL time.Duration,
	log zerolog.Logger,
) *ReconciliationServiceImpl {
	return &ReconciliationServiceImpl{
		registry:     registry,
		txRepo:       txRepo,
		utrRepo:      utrRepo,
		ledgerRepo:   ledgerRepo,
		activityRepo: activityRepo,
		guard:        guard,
		sigSvc:       sigSvc,
		encSvc:       encSvc,
		transactor:   transactor,
		secrets:      secrets,
		guardTTL:     guardTTL,
		log:          log,
	}
}

// stageForStatus maps a normalized provider status to the timeline stage the
// webhook appends.
func stageForStatus(s bank.NormalizedStatus) domain.ProcessingStage {
	switch s {
	case bank.StatusSuccessful:
		return domain.StageCompleted
	case bank.StatusFailed:
		return domain.StageFailed
	default:
		return domain.StageProcessing
	}
}

// ProcessCallback runs the reconciliation pipeline for one webhook delivery.
// Redelivery of the same payload is safe: every invocation appends exactly one
// timeline entry, but the wallet is credited only when the transaction
// transitions INTO successful.
func (s *ReconciliationServiceImpl) ProcessCallback(ctx context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
	def, err := s.registry.Get(req.Bank)
	if err != nil {
		return nil, apperror.ErrUnsupportedProvider(req.Bank)
	}

	if secret := s.secrets[def.Slug]; secret != "" {
		if !s.sigSvc.Verify(secret, string(req.Payload), req.Signature) {
			s.log.Warn().
				Str("bank", def.Slug).
				Str("client_ip", req.ClientIP).
				Msg("webhook signature verification failed")
			return nil, apperror.ErrInvalidWebhookSignature()
		}
	}

	ev, err := def.ParsePayload(req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, bank.ErrMissingCorrelationKey):
			return nil, apperror.ErrMissingCorrelationKey()
		case errors.Is(err, bank.ErrMissingStatus):
			return nil, apperror.ErrMissingStatus()
		default:
			return nil, apperror.ErrMalformedPayload(err)
		}
	}

	// Serialize concurrent deliveries per UTR. The guard fails open: losing
	// Redis must not stop payment reconciliation, the row lock below still
	// protects correctness.
	if ev.UTR != "" {
		acquired, gerr := s.guard.Acquire(ctx, ev.UTR, s.guardTTL)
		if gerr != nil {
			s.log.Warn().Err(gerr).Str("utr", ev.UTR).Msg("utr guard unavailable, proceeding without it")
		} else if !acquired {
			s.log.Info().Str("utr", ev.UTR).Str("bank", def.Slug).Msg("duplicate delivery for in-flight utr")
			return &ports.CallbackResult{
				Duplicate: true,
				Message:   "Duplicate webhook: UTR already being processed",
			}, nil
		} else {
			defer func() {
				if rerr := s.guard.Release(context.WithoutCancel(ctx), ev.UTR); rerr != nil {
					s.log.Warn().Err(rerr).Str("utr", ev.UTR).Msg("utr guard release failed")
				}
			}()
		}

		s.recordUTRReceived(ctx, def.Slug, ev.UTR, req.Payload)
	}

	normalized := def.NormalizeStatus(ev.RawStatus)
	result, err := s.applyEvent(ctx, def, ev, normalized)

	if ev.UTR != "" {
		s.recordUTROutcome(ctx, ev.UTR, result, err)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("bank", def.Slug).
		Str("transaction_id", result.TransactionID).
		Str("raw_status", ev.RawStatus).
		Str("status", string(result.PaymentStatus)).
		Bool("wallet_credited", result.WalletCredited).
		Msg("webhook reconciled")

	return result, nil
}

// applyEvent resolves the transaction under a row lock and applies the status
// transition inside one database transaction.
func (s *ReconciliationServiceImpl) applyEvent(ctx context.Context, def *bank.Definition, ev *bank.Event, normalized bank.NormalizedStatus) (*ports.CallbackResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, ev.CorrelationKey)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("lookup by id: %w", err))
	}
	if txn == nil && ev.UTR != "" {
		txn, err = s.txRepo.GetByUTRForUpdate(ctx, dbTx, ev.UTR)
		if err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("lookup by utr: %w", err))
		}
	}

	created := false
	if txn == nil {
		txn, err = s.createFromEvent(ctx, dbTx, ev)
		if err != nil {
			return nil, err
		}
		created = true
	}

	wasSuccessful := txn.IsSuccessful()
	stage := stageForStatus(normalized)
	newStatus := stage.Status()

	now := time.Now().UTC()
	entry := domain.TimelineEntry{
		Stage:     stage,
		Timestamp: now,
		Message:   fmt.Sprintf("%s webhook: %s", def.Slug, ev.RawStatus),
		Details: map[string]interface{}{
			"bank":       def.Slug,
			"raw_status": ev.RawStatus,
		},
	}
	if ev.UTR != "" {
		entry.Details["utr"] = ev.UTR
	}

	update := ports.StatusUpdate{
		TransactionID: txn.ID,
		Entry:         entry,
		Status:        newStatus,
		DetailsPatch:  s.detailsPatch(ev),
	}
	if stage == domain.StageCompleted {
		update.SettledAt = &now
	}

	if err := s.txRepo.ApplyStatusUpdate(ctx, dbTx, update); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("apply status update: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	result := &ports.CallbackResult{
		TransactionID: txn.ID,
		PaymentStatus: newStatus,
		Message:       "Webhook processed",
	}
	if created {
		result.Message = "Webhook processed, transaction created"
	}

	// Credit exactly once, on the transition into successful. Redelivered
	// success webhooks see wasSuccessful and skip the credit.
	if !wasSuccessful && newStatus == domain.TransactionStatusSuccessful {
		result.WalletCredited = s.creditWallet(ctx, txn, ev)
	}

	return result, nil
}

// createFromEvent inserts a placeholder transaction for a webhook that
// references an id we have no record of. The bank moved money either way, so
// the event is captured rather than dropped. Fields the payload does not
// carry get defaults.
func (s *ReconciliationServiceImpl) createFromEvent(ctx context.Context, dbTx pgx.Tx, ev *bank.Event) (*domain.Transaction, error) {
	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:             ev.CorrelationKey,
		MerchantID:     domain.UnknownMerchantID,
		Amount:         ev.Amount,
		Currency:       domain.DefaultCurrency,
		Status:         domain.TransactionStatusPending,
		PaymentMethod:  domain.PaymentMethodUPI,
		PaymentDetails: map[string]interface{}{"source": "bank_webhook"},
		Timeline: []domain.TimelineEntry{{
			Stage:     domain.StageInitiated,
			Timestamp: now,
			Message:   "created from bank webhook",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ev.UTR != "" {
		txn.PaymentDetails["utr"] = ev.UTR
	}
	if ev.VPA != "" {
		vpa := ev.VPA
		txn.CustomerVPA = &vpa
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create transaction: %w", err))
	}

	s.log.Info().
		Str("transaction_id", txn.ID).
		Str("bank", ev.Bank).
		Int64("amount", txn.Amount).
		Msg("transaction created from webhook")

	return txn, nil
}

// detailsPatch builds the payment_details merge for one webhook: provider
// passthrough fields plus utr and payer vpa when present.
func (s *ReconciliationServiceImpl) detailsPatch(ev *bank.Event) map[string]interface{} {
	patch := make(map[string]interface{}, len(ev.ProviderFields)+2)
	for k, v := range ev.ProviderFields {
		patch[k] = v
	}
	if ev.UTR != "" {
		patch["utr"] = ev.UTR
	}
	if ev.VPA != "" {
		patch["payer_vpa"] = ev.VPA
	}
	return patch
}

// creditWallet appends a ledger credit for a transaction that just became
// successful. Failures are logged, never surfaced: the bank already holds the
// money and must not retry because our ledger write failed.
func (s *ReconciliationServiceImpl) creditWallet(ctx context.Context, txn *domain.Transaction, ev *bank.Event) bool {
	amount := txn.Amount
	if amount == 0 {
		amount = ev.Amount
	}

	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		MerchantID:    txn.MerchantID,
		Type:          domain.LedgerEntryCredit,
		Amount:        amount,
		Currency:      txn.Currency,
		Source:        domain.LedgerSourceBankWebhook,
		TransactionID: txn.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		s.log.Error().
			Err(apperror.ErrWalletCredit(err)).
			Str("transaction_id", txn.ID).
			Str("merchant_id", txn.MerchantID).
			Int64("amount", amount).
			Msg("wallet credit failed")
		return false
	}

	s.recordActivity(ctx, txn.MerchantID, txn.ID, amount)

	s.log.Info().
		Str("transaction_id", txn.ID).
		Str("merchant_id", txn.MerchantID).
		Int64("amount", amount).
		Msg("wallet credited")

	return true
}

// recordActivity writes the wallet credit activity row, best effort. The
// merchant reference is set only for transactions attributed to a registered
// merchant.
func (s *ReconciliationServiceImpl) recordActivity(ctx context.Context, merchantID string, transactionID string, amount int64) {
	var merchantRef *uuid.UUID
	if id, err := uuid.Parse(merchantID); err == nil {
		merchantRef = &id
	}
	log := &domain.ActivityLog{
		ID:           uuid.New(),
		MerchantID:   merchantRef,
		Action:       domain.ActivityWalletCredit,
		ResourceType: "transaction",
		ResourceID:   transactionID,
		Details:      fmt.Sprintf(`{"amount":%d}`, amount),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.activityRepo.Create(ctx, log); err != nil {
		s.log.Warn().Err(err).Str("transaction_id", transactionID).Msg("activity log write failed")
	}
}

// recordUTRReceived encrypts and stores the raw payload keyed by UTR before
// any state is touched, so a processing crash still leaves an audit trail.
func (s *ReconciliationServiceImpl) recordUTRReceived(ctx context.Context, bankSlug, utr string, payload []byte) {
	enc, err := s.encSvc.Encrypt(string(payload))
	if err != nil {
		s.log.Warn().Err(err).Str("utr", utr).Msg("payload encryption failed, utr log skipped")
		return
	}

	now := time.Now().UTC()
	if err := s.utrRepo.Create(ctx, &domain.UTRLog{
		UTRNumber:        utr,
		Bank:             bankSlug,
		PayloadEnc:       enc,
		ProcessingStatus: domain.UTRStatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}); err != nil {
		s.log.Warn().Err(err).Str("utr", utr).Msg("utr log write failed")
	}
}

// recordUTROutcome marks the UTR log row completed or failed, best effort.
func (s *ReconciliationServiceImpl) recordUTROutcome(ctx context.Context, utr string, result *ports.CallbackResult, procErr error) {
	status := domain.UTRStatusCompleted
	var txnID *string
	if procErr != nil {
		status = domain.UTRStatusFailed
	} else if result != nil && result.TransactionID != "" {
		txnID = &result.TransactionID
	}
	if err := s.utrRepo.SetStatus(ctx, utr, status, txnID); err != nil {
		s.log.Warn().Err(err).Str("utr", utr).Msg("utr log status update failed")
	}
}
