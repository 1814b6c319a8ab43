package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	planGenerationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_generation_total",
			Help: "Plan generation attempts by outcome",
		},
		[]string{"outcome"},
	)

	planGenerationDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_generation_duration_seconds",
			Help:    "Latency of the text-generation round trip",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	planExportTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_export_total",
			Help: "Plan document exports by outcome",
		},
		[]string{"outcome"},
	)

	exportReplacedGlyphs = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_export_replaced_glyphs_total",
			Help: "Characters replaced because the document font cannot encode them",
		},
	)

	leadNotifyTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notify_total",
			Help: "Lead notification attempts by target and outcome",
		},
		[]string{"target", "outcome"},
	)

	rateLimitedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected for exceeding their rate-limit group",
		},
		[]string{"group"},
	)

	dbMu         sync.Mutex
	dbCollectors = map[string]prometheus.Collector{}
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveGeneration records one generation attempt. outcome is "ok" or a failure kind.
func ObserveGeneration(outcome string, elapsed time.Duration) {
	planGenerationTotal.WithLabelValues(outcome).Inc()
	if elapsed < 0 {
		elapsed = 0
	}
	planGenerationDuration.Observe(elapsed.Seconds())
}

// IncExport records one export attempt.
func IncExport(outcome string) {
	planExportTotal.WithLabelValues(outcome).Inc()
}

// AddReplacedGlyphs records characters substituted during export.
func AddReplacedGlyphs(n int) {
	if n <= 0 {
		return
	}
	exportReplacedGlyphs.Add(float64(n))
}

// IncNotify records one notification attempt for a target.
func IncNotify(target, outcome string) {
	leadNotifyTotal.WithLabelValues(target, outcome).Inc()
}

// IncRateLimited records one request rejected by the rate limiter.
func IncRateLimited(group string) {
	rateLimitedTotal.WithLabelValues(group).Inc()
}

// RegisterDB exports pool statistics for db under name. A later pool with the same name
// replaces the earlier one.
func RegisterDB(db *sql.DB, name string) {
	dbMu.Lock()
	defer dbMu.Unlock()
	if prev, ok := dbCollectors[name]; ok {
		Registry.Unregister(prev)
	}
	c := collectors.NewDBStatsCollector(db, name)
	if err := Registry.Register(c); err != nil {
		return
	}
	dbCollectors[name] = c
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
