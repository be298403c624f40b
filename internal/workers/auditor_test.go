package workers

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quad-backend/internal/features/account/models"
)

type countingAuditor struct {
	calls atomic.Int32
	fail  bool
}

func (a *countingAuditor) Audit(context.Context) (*models.AuditReport, error) {
	a.calls.Add(1)
	if a.fail {
		return nil, errors.New("store down")
	}
	return &models.AuditReport{BalanceSum: new(big.Int), TotalDeposited: new(big.Int), Consistent: true}, nil
}

func TestAuditWorkerRunsUntilCancelled(t *testing.T) {
	a := &countingAuditor{}
	w := NewAuditWorker(a, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return a.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestAuditWorkerSurvivesFailures(t *testing.T) {
	a := &countingAuditor{fail: true}
	w := NewAuditWorker(a, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	w.Start(ctx)

	assert.GreaterOrEqual(t, a.calls.Load(), int32(2))
}

func TestAuditWorkerDisabled(t *testing.T) {
	a := &countingAuditor{}
	NewAuditWorker(a, 0).Start(context.Background())
	assert.Zero(t, a.calls.Load())
}
