package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationType names a call lifecycle operation.
type OperationType string

const (
	OperationPlaceCall OperationType = "place_call"
	OperationAssignRun OperationType = "assign_run"
	OperationFinalize  OperationType = "finalize"
	OperationReopen    OperationType = "reopen"
)

// OperationStatus is the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "success"
	StatusError   OperationStatus = "error"
)

var (
	callOperationsTotal   *prometheus.CounterVec
	callOperationDuration *prometheus.HistogramVec
)

// InitServiceMetrics registers the service layer metrics.
func InitServiceMetrics(registry *prometheus.Registry) error {
	callOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_operations_total",
			Help: "Total number of call lifecycle operations",
		},
		[]string{"operation", "status"},
	)

	callOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "call_operation_duration_seconds",
			Help:    "Duration of call lifecycle operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	if err := registry.Register(callOperationsTotal); err != nil {
		return err
	}

	if err := registry.Register(callOperationDuration); err != nil {
		return err
	}

	return nil
}

// RecordCallOperation records one call lifecycle operation. Safe to call
// before InitServiceMetrics; recording is simply skipped.
func RecordCallOperation(operation OperationType, status OperationStatus, duration time.Duration) {
	if callOperationsTotal != nil && callOperationDuration != nil {
		callOperationsTotal.WithLabelValues(string(operation), string(status)).Inc()
		callOperationDuration.WithLabelValues(string(operation)).Observe(duration.Seconds())
	}
}
