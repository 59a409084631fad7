package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/solrkeys/internal/domain"
)

const namespace = "solrkeys"

// Compile operation labels.
const (
	OpFlatten      = "flatten"
	OpPayloadScore = "payload_score"
	OpSort         = "sort"
	OpFieldName    = "field_name"
)

// ModeUnknown labels compile operations requested with an unsupported parse mode.
const ModeUnknown = "unknown"

// Compile Prometheus metrics.
var (
	CompileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compile_total",
			Help:      "Total number of compile operations",
		},
		[]string{"op", "mode", "status"},
	)

	CompileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Compile operation duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"op"},
	)
)

var registerOnce sync.Once

// Register registers all solrkeys metrics with the default registry. Must be called from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(CompileTotal)
		prometheus.MustRegister(CompileDuration)
		prometheus.MustRegister(httpRequestDuration)
		prometheus.MustRegister(httpRequestsTotal)
	})
}

// ObserveCompile records one compile operation started at start.
func ObserveCompile(op, mode string, start time.Time, err error) {
	CompileDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	CompileTotal.WithLabelValues(op, mode, Status(err)).Inc()
}

// Status maps an error to a low-cardinality status label.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrModeFieldMismatch):
		return "mode_field_mismatch"
	case errors.Is(err, domain.ErrIncompatibleParseMode):
		return "incompatible_parse_mode"
	case errors.Is(err, domain.ErrSortUnsupported):
		return "sort_unsupported"
	case errors.Is(err, domain.ErrUnknownDataType):
		return "unknown_data_type"
	case errors.Is(err, domain.ErrInvalidKeys):
		return "invalid_keys"
	default:
		return "error"
	}
}
