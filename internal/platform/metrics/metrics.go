package metrics

import (
	"math/big"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "quad-backend/internal/common/errors"
)

const namespace = "quad"

// Metrics holds the service collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	operations   *prometheus.CounterVec
	opDuration   *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	auditRuns    *prometheus.CounterVec
	auditDrift   prometheus.Gauge
	accounts     prometheus.Gauge
}

// New creates and registers collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Account operations by name and outcome (ok or error code).",
		}, []string{"operation", "outcome"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_operation_duration_seconds",
			Help:      "Account operation latency including lock wait.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		auditRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_audits_total",
			Help:      "Conservation audits by result.",
		}, []string{"result"}),
		auditDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_audit_drift",
			Help:      "Sum of balances minus total deposited at the last audit; must be 0.",
		}),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_registered_accounts",
			Help:      "Registered accounts at the last audit.",
		}),
	}
	reg.MustRegister(m.operations, m.opDuration, m.httpRequests, m.httpDuration, m.auditRuns, m.auditDrift, m.accounts)
	return m
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(apperrors.ErrCodeInternal)
}

func (m *Metrics) ObserveOperation(operation string, err error, started time.Time) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.opDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAudit(consistent bool, drift *big.Int, accounts int64) {
	if m == nil {
		return
	}
	result := "consistent"
	if !consistent {
		result = "drift"
	}
	m.auditRuns.WithLabelValues(result).Inc()
	f, _ := new(big.Float).SetInt(drift).Float64()
	m.auditDrift.Set(f)
	m.accounts.Set(float64(accounts))
}

func (m *Metrics) ObserveAuditFailure() {
	if m == nil {
		return
	}
	m.auditRuns.WithLabelValues("error").Inc()
}
