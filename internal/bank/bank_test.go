package bank

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()

	d, err := r.Get("hdfc-bank")
	require.NoError(t, err)
	assert.Equal(t, "HDFC Bank", d.Name)

	d, err = r.Get("SBM-Bank") // slug matching is case-insensitive
	require.NoError(t, err)
	assert.Equal(t, SlugSBM, d.Slug)

	_, err = r.Get("axis-bank")
	assert.ErrorIs(t, err, ErrUnsupportedBank)
}

func TestNormalizeStatus_KnownVocabulary(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		bank   string
		raw    string
		want   NormalizedStatus
	}{
		{SlugHDFC, "SUCCESS", StatusSuccessful},
		{SlugHDFC, "success", StatusSuccessful},
		{SlugHDFC, "FAILED", StatusFailed},
		{SlugHDFC, "REJECTED", StatusFailed},
		{SlugHDFC, "PENDING", StatusPending},
		{SlugSBM, "DECLINED", StatusFailed},
		{SlugSBM, "CREDITED", StatusSuccessful},
		{SlugICICI, "TXN_SUCCESS", StatusSuccessful},
		{SlugICICI, "TXN_FAILURE", StatusFailed},
		{SlugCanara, "PROCESSING", StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.bank+"/"+tt.raw, func(t *testing.T) {
			d, err := r.Get(tt.bank)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.NormalizeStatus(tt.raw))
		})
	}
}

// Unmapped provider vocabulary must never produce a terminal outcome: SBM has
// no FAILED entry, so FAILED falls back to pending rather than failed.
func TestNormalizeStatus_UnknownDefaultsToPending(t *testing.T) {
	r := DefaultRegistry()

	sbmDef, err := r.Get(SlugSBM)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, sbmDef.NormalizeStatus("FAILED"))

	hdfcDef, err := r.Get(SlugHDFC)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, hdfcDef.NormalizeStatus("SOMETHING_NEW"))
	assert.Equal(t, StatusPending, hdfcDef.NormalizeStatus(""))
}

func TestParsePayload_CorrelationPriority(t *testing.T) {
	d, err := DefaultRegistry().Get(SlugHDFC)
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
		wantKey string
		wantUTR string
	}{
		{
			name:    "transaction id wins over utr",
			payload: `{"transaction_id":"TXN1","utr":"UTR123","status":"SUCCESS"}`,
			wantKey: "TXN1",
			wantUTR: "UTR123",
		},
		{
			name:    "utr when no transaction id",
			payload: `{"utr":"UTR123","status":"SUCCESS"}`,
			wantKey: "UTR123",
			wantUTR: "UTR123",
		},
		{
			name:    "order id as last resort",
			payload: `{"orderId":"ORD-9","status":"PENDING"}`,
			wantKey: "ORD-9",
			wantUTR: "",
		},
		{
			name:    "alternate txn id field",
			payload: `{"txnId":"TXN2","status":"SUCCESS"}`,
			wantKey: "TXN2",
			wantUTR: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := d.ParsePayload([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, ev.CorrelationKey)
			assert.Equal(t, tt.wantUTR, ev.UTR)
		})
	}
}

func TestParsePayload_MissingCorrelationKey(t *testing.T) {
	d, err := DefaultRegistry().Get(SlugHDFC)
	require.NoError(t, err)

	_, err = d.ParsePayload([]byte(`{"status":"SUCCESS","amount":100}`))
	assert.ErrorIs(t, err, ErrMissingCorrelationKey)
}

func TestParsePayload_MissingStatus(t *testing.T) {
	d, err := DefaultRegistry().Get(SlugHDFC)
	require.NoError(t, err)

	_, err = d.ParsePayload([]byte(`{"transaction_id":"TXN1"}`))
	assert.ErrorIs(t, err, ErrMissingStatus)
}

func TestParsePayload_MalformedJSON(t *testing.T) {
	d, err := DefaultRegistry().Get(SlugHDFC)
	require.NoError(t, err)

	_, err = d.ParsePayload([]byte(`{not json`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingCorrelationKey))
}

func TestParsePayload_AmountAndProviderFields(t *testing.T) {
	d, err := DefaultRegistry().Get(SlugHDFC)
	require.NoError(t, err)

	payload := `{
		"transaction_id": "TXN1",
		"status": "SUCCESS",
		"amount": 499.50,
		"payer_vpa": "customer@okhdfcbank",
		"payment_id": "PAY-88",
		"fee": "2.50",
		"settlement_id": "SETL-7",
		"unrelated": "dropped"
	}`

	ev, err := d.ParsePayload([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, int64(49950), ev.Amount, "rupees converted to paise")
	assert.Equal(t, "customer@okhdfcbank", ev.VPA)
	assert.Equal(t, "PAY-88", ev.ProviderFields["payment_id"])
	assert.Equal(t, "2.50", ev.ProviderFields["fee"])
	assert.Equal(t, "SETL-7", ev.ProviderFields["settlement_id"])
	assert.NotContains(t, ev.ProviderFields, "unrelated")
}

func TestParsePayload_StringAmountAndNumericID(t *testing.T) {
	d, err := DefaultRegistry().Get(SlugSBM)
	require.NoError(t, err)

	ev, err := d.ParsePayload([]byte(`{"transaction_id":982134,"status":"SUCCESS","amount":"150.00"}`))
	require.NoError(t, err)

	assert.Equal(t, "982134", ev.CorrelationKey, "numeric ids keep their string form")
	assert.Equal(t, int64(15000), ev.Amount)
}
