// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hmr_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hmr_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	investmentPurchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hmr_investment_purchases_total",
		Help: "Investment purchase attempts by result",
	}, []string{"result"})

	investmentPurchaseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hmr_investment_purchase_duration_seconds",
		Help:    "Duration of the purchase transaction including lock wait",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	tokensSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hmr_tokens_sold_total",
		Help: "Property tokens sold through committed purchases",
	})

	deposits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hmr_wallet_deposits_total",
		Help: "Wallet deposits by currency and result",
	}, []string{"currency", "result"})

	walletDrift = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hmr_wallet_reconcile_repairs_total",
		Help: "Wallet aggregate counters repaired by reconciliation",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObservePurchase records a purchase attempt. tokens is only counted on success.
func ObservePurchase(result string, tokens int64, duration time.Duration) {
	investmentPurchases.WithLabelValues(result).Inc()
	investmentPurchaseDuration.Observe(duration.Seconds())
	if result == "success" && tokens > 0 {
		tokensSold.Add(float64(tokens))
	}
}

// ObserveDeposit records a deposit attempt.
func ObserveDeposit(currency, result string) {
	deposits.WithLabelValues(currency, result).Inc()
}

// ObserveWalletRepairs adds n repaired wallets.
func ObserveWalletRepairs(n int) {
	if n > 0 {
		walletDrift.Add(float64(n))
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
