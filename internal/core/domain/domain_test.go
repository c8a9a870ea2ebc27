package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProcessingStage_Status(t *testing.T) {
	tests := []struct {
		stage ProcessingStage
		want  TransactionStatus
	}{
		{StageInitiated, TransactionStatusPending},
		{StageProcessing, TransactionStatusProcessing},
		{StageCompleted, TransactionStatusSuccessful},
		{StageFailed, TransactionStatusFailed},
		{StageSettled, TransactionStatusSettled},
		{StageDeclined, TransactionStatusDeclined},
		{StageCancelled, TransactionStatusCancelled},
		{ProcessingStage("made-up"), TransactionStatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stage.Status())
		})
	}
}

func TestTransaction_IsSuccessful(t *testing.T) {
	tests := []struct {
		status TransactionStatus
		want   bool
	}{
		{TransactionStatusPending, false},
		{TransactionStatusProcessing, false},
		{TransactionStatusSuccessful, true},
		{TransactionStatusSettled, true},
		{TransactionStatusFailed, false},
		{TransactionStatusDeclined, false},
		{TransactionStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			txn := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, txn.IsSuccessful())
		})
	}
}

func TestTransaction_LatestStage(t *testing.T) {
	txn := &Transaction{}
	assert.Equal(t, StageInitiated, txn.LatestStage(), "empty timeline defaults to initiated")

	now := time.Now()
	txn.Timeline = []TimelineEntry{
		{Stage: StageInitiated, Timestamp: now},
		{Stage: StageProcessing, Timestamp: now.Add(time.Second)},
		{Stage: StageCompleted, Timestamp: now.Add(2 * time.Second)},
	}
	assert.Equal(t, StageCompleted, txn.LatestStage())
}

func TestMerchant_IsActive(t *testing.T) {
	tests := []struct {
		name   string
		status MerchantStatus
		want   bool
	}{
		{"active", MerchantStatusActive, true},
		{"suspended", MerchantStatusSuspended, false},
		{"deactivated", MerchantStatusDeactivated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Merchant{Status: tt.status}
			assert.Equal(t, tt.want, m.IsActive())
		})
	}
}
