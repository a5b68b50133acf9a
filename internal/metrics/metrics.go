// Package metrics exposes the Prometheus metrics the dashboard updates
// while running:
//   - dashboard_refreshes_total{result}        – refresh cycles (ok|error)
//   - dashboard_fetch_failures_total{kind}     – scan failures by kind
//   - dashboard_submissions_total{result}      – order submissions by result
//   - dashboard_ideas_displayed{bucket}        – ideas currently on each surface
//
// Registered in init() and served at /metrics on the web router.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_refreshes_total",
			Help: "Refresh cycles by result",
		},
		[]string{"result"},
	)

	mtxFetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_fetch_failures_total",
			Help: "Scan fetch failures by kind",
		},
		[]string{"kind"},
	)

	// result: ok|partial|invalid|declined|in_flight|transport|protocol|business
	mtxSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_submissions_total",
			Help: "Order submissions by result",
		},
		[]string{"result"},
	)

	ideasDisplayed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashboard_ideas_displayed",
			Help: "Trade ideas currently displayed per bucket",
		},
		[]string{"bucket"},
	)
)

func init() {
	prometheus.MustRegister(mtxRefreshes, mtxFetchFailures, mtxSubmissions, ideasDisplayed)
}

func IncRefresh(result string) {
	mtxRefreshes.WithLabelValues(result).Inc()
}

func IncFetchFailure(kind string) {
	mtxFetchFailures.WithLabelValues(kind).Inc()
}

func IncSubmission(result string) {
	mtxSubmissions.WithLabelValues(result).Inc()
}

func SetIdeasDisplayed(bucket string, n int) {
	ideasDisplayed.WithLabelValues(bucket).Set(float64(n))
}
