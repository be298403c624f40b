package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"quad-backend/internal/common/logger"
	"quad-backend/internal/features/account/models"
)

// Auditable is the part of the account service the auditor needs.
type Auditable interface {
	Audit(ctx context.Context) (*models.AuditReport, error)
}

// AuditWorker periodically checks that balances add up to deposits.
type AuditWorker struct {
	svc      Auditable
	interval time.Duration
	log      zerolog.Logger
}

func NewAuditWorker(svc Auditable, interval time.Duration) *AuditWorker {
	return &AuditWorker{
		svc:      svc,
		interval: interval,
		log:      logger.Component("auditor"),
	}
}

// Start runs one audit immediately and then every interval until ctx is done.
func (w *AuditWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info().Msg("Audit worker disabled")
		return
	}

	w.log.Info().Dur("interval", w.interval).Msg("Starting audit worker...")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping audit worker...")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *AuditWorker) runOnce(ctx context.Context) {
	// A run never outlives one interval.
	runCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	report, err := w.svc.Audit(runCtx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn().Err(err).Msg("Audit failed")
		}
		return
	}
	if report.Consistent {
		w.log.Debug().Int64("accounts", report.Accounts).Str("total_deposited", report.TotalDeposited.String()).Msg("Audit passed")
	}
}
