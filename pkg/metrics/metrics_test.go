package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePurchase(t *testing.T) {
	before := testutil.ToFloat64(tokensSold)
	successBefore := testutil.ToFloat64(investmentPurchases.WithLabelValues("success"))

	ObservePurchase("success", 5, 10*time.Millisecond)
	ObservePurchase("insufficient_tokens", 7, time.Millisecond)

	assert.Equal(t, before+5, testutil.ToFloat64(tokensSold))
	assert.Equal(t, successBefore+1, testutil.ToFloat64(investmentPurchases.WithLabelValues("success")))
}

func TestObserveDepositAndRepairs(t *testing.T) {
	before := testutil.ToFloat64(deposits.WithLabelValues("USD", "completed"))
	ObserveDeposit("USD", "completed")
	assert.Equal(t, before+1, testutil.ToFloat64(deposits.WithLabelValues("USD", "completed")))

	repairs := testutil.ToFloat64(walletDrift)
	ObserveWalletRepairs(0)
	ObserveWalletRepairs(2)
	assert.Equal(t, repairs+2, testutil.ToFloat64(walletDrift))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveHTTPRequest("GET", "/api/properties", "200", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hmr_http_requests_total")
}
