package docsearch

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Outcome labels for docsearch_sdk_operations_total.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docsearch",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "SDK calls by operation and outcome.",
	}, []string{"operation", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "docsearch",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK call latency.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation"})

	var err error
	if operations, err = adopt(reg, operations); err != nil {
		return nil, err
	}
	if duration, err = adopt(reg, duration); err != nil {
		return nil, err
	}
	return &sdkMetrics{operations: operations, duration: duration}, nil
}

// adopt registers c, or returns the collector already registered under the
// same descriptor so several clients can share one registry.
func adopt[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("docsearch: register metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("docsearch: metric registered as %T", dup.ExistingCollector)
	}
	return existing, nil
}

// outcome buckets err for the status label.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrBlobNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrInvalidParameter), errors.Is(err, ErrInvalidQuery),
		errors.Is(err, ErrUnsupportedMediaType), errors.Is(err, ErrPayloadTooLarge):
		return outcomeRejected
	default:
		return outcomeError
	}
}

// observer records every public SDK call. The zero value of *observer is usable.
type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger.Named("sdk")}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	status := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}

	fields := []zap.Field{zap.String("op", op), zap.String("status", status), zap.Duration("elapsed", elapsed)}
	if status == outcomeError {
		o.logger.Warn("docsearch call failed", append(fields, zap.Error(err))...)
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	o.logger.Debug("docsearch call", fields...)
}
