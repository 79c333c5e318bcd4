// Package metrics provides Prometheus instrumentation for the application.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	AnalysisRuns     *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	LeaksDetected    *prometheus.CounterVec
	RecordsIngested  *prometheus.CounterVec
	DigestsSent      prometheus.Counter
}

// New registers and returns the application collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		AnalysisRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "revenue_radar_analysis_runs_total",
			Help: "Number of analysis runs, by report shape.",
		}, []string{"shape"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "revenue_radar_analysis_duration_seconds",
			Help:    "Wall time of full analysis runs.",
			Buckets: prometheus.DefBuckets,
		}),
		LeaksDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "revenue_radar_leaks_detected_total",
			Help: "Number of leaks detected, by severity.",
		}, []string{"severity"}),
		RecordsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "revenue_radar_records_ingested_total",
			Help: "Number of snapshot records ingested, by entity type.",
		}, []string{"entity"}),
		DigestsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "revenue_radar_digests_sent_total",
			Help: "Number of leak digest emails sent.",
		}),
	}
}

// Handler returns a gin handler serving the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
