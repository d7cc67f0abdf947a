package core

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Import outcomes recorded by Metrics.
const (
	OutcomeSuccess           = "success"
	OutcomePartial           = "partial"
	OutcomeRejected          = "rejected"
	OutcomeUnsupportedFormat = "unsupported_format"
	OutcomeMalformedInput    = "malformed_input"
	OutcomeEmptyBatch        = "empty_batch"
	OutcomeCommitFailed      = "commit_failed"
	OutcomeBusy              = "busy"
	OutcomeError             = "error"
)

// Metrics are the Prometheus collectors of the import service. A nil
// *Metrics records nothing.
type Metrics struct {
	Imports  *prometheus.CounterVec
	Rows     *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "catalog",
				Subsystem: "import",
				Name:      "imports_total",
				Help:      "Imports by outcome",
			},
			[]string{"outcome"},
		),
		Rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "catalog",
				Subsystem: "import",
				Name:      "rows_total",
				Help:      "Rows seen and created by imports, by kind",
			},
			[]string{"kind"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "catalog",
				Subsystem: "import",
				Name:      "duration_seconds",
				Help:      "Wall time of imports that reached the pipeline",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Imports, m.Rows, m.Duration)
	}
	return m
}

// Observe records the outcome of one import.
func (m *Metrics) Observe(result *ImportResult, err error, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.Imports.WithLabelValues(Outcome(result, err)).Inc()
	if errors.Is(err, ErrTooManyImports) {
		return
	}
	m.Duration.Observe(elapsed.Seconds())

	if result == nil {
		return
	}
	m.Rows.WithLabelValues("total").Add(float64(result.TotalRows))
	m.Rows.WithLabelValues("invalid").Add(float64(len(result.RowErrors)))
	m.Rows.WithLabelValues("category").Add(float64(result.CategoriesAdded))
	m.Rows.WithLabelValues("product").Add(float64(result.ProductsAdded))
	m.Rows.WithLabelValues("review").Add(float64(result.ReviewsAdded))
}

// Outcome classifies an import for metrics and logs.
func Outcome(result *ImportResult, err error) string {
	switch {
	case err == nil && result != nil && result.ReviewsAdded == 0:
		return OutcomeRejected
	case err == nil && result != nil && len(result.RowErrors) > 0:
		return OutcomePartial
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrUnsupportedFormat):
		return OutcomeUnsupportedFormat
	case errors.Is(err, ErrMalformedInput):
		return OutcomeMalformedInput
	case errors.Is(err, ErrEmptyBatch):
		return OutcomeEmptyBatch
	case errors.Is(err, ErrCommitFailed):
		return OutcomeCommitFailed
	case errors.Is(err, ErrTooManyImports):
		return OutcomeBusy
	default:
		return OutcomeError
	}
}
