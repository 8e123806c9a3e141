package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_requests_total",
		Help: "The total number of portal requests by method and outcome",
	}, []string{"method", "outcome"})
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_actions_total",
		Help: "The total number of login and logout attempts by result",
	}, []string{"action", "result"})
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portal_fetch_duration_seconds",
		Help:    "Portal HTTP fetch duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5},
	})
)

// WriteFile dumps the default registry in the text exposition format, for
// node_exporter's textfile collector. An empty path is a no-op.
func WriteFile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
