package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrent deliveries of the same webhook must produce exactly one wallet
// credit, whether they are turned away by the UTR guard or serialized on the
// transaction lock.
func TestIntegration_ConcurrentDeliveriesSingleCredit(t *testing.T) {
	app := newTestApp(t)

	payload, err := json.Marshal(map[string]interface{}{
		"transaction_id": "RACE0001",
		"utr":            "UTRRACE001",
		"status":         "SUCCESS",
		"amount":         250.00,
	})
	require.NoError(t, err)

	const deliveries = 8
	var wg sync.WaitGroup
	statuses := make([]int, deliveries)

	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Post(
				app.server.URL+"/api/v1/webhooks/hdfc-bank/callback",
				"application/json",
				bytes.NewReader(payload),
			)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i, code := range statuses {
		assert.Equal(t, http.StatusOK, code, "delivery %d must be acknowledged", i)
	}

	assert.Equal(t, 1, app.ledger.creditCount("unknown"), "exactly one credit despite concurrent deliveries")

	txn, err := app.txRepo.GetByID(t.Context(), "RACE0001")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, "successful", string(txn.Status))
	assert.Equal(t, int64(25000), txn.Amount)
}
