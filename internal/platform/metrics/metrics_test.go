package metrics

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	apperrors "quad-backend/internal/common/errors"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "INSUFFICIENT_FUNDS", Outcome(apperrors.From(apperrors.ErrInsufficientFunds)))
	assert.Equal(t, "INTERNAL_ERROR", Outcome(errors.New("boom")))
}

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("deposit", nil, time.Now())
	m.ObserveOperation("deposit", apperrors.From(apperrors.ErrUserNotRegistered), time.Now())
	m.ObserveOperation("deposit", nil, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("deposit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("deposit", "USER_NOT_REGISTERED")))

	m.ObserveAudit(false, big.NewInt(-5), 3)
	assert.Equal(t, -5.0, testutil.ToFloat64(m.auditDrift))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.accounts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditRuns.WithLabelValues("drift")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("x", nil, time.Now())
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveAudit(true, big.NewInt(0), 0)
		m.ObserveAuditFailure()
	})
}
