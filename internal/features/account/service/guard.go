package service

import (
	"context"
	"errors"
	"time"

	apperrors "quad-backend/internal/common/errors"
)

type guardKey struct{}

// guard runs fn while holding the global operation lock. The context passed to
// fn is marked, so any service call made with it (for example by a token
// gateway calling back into us) is rejected instead of deadlocking.
func (s *accountService) guard(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(op, err, started) }()

	if active, ok := ctx.Value(guardKey{}).(string); ok {
		s.log.Warn().Str("operation", op).Str("active_operation", active).Msg("Reentrant call rejected")
		return apperrors.From(apperrors.ErrReentrantCall).
			WithDetail("operation", op).
			WithDetail("active_operation", active)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.From(apperrors.ErrLockTimeout).WithDetail("operation", op)
		}
		return apperrors.NewStoreError("lock", err)
	}
	defer unlock()

	return fn(context.WithValue(ctx, guardKey{}, op))
}

// storeErr keeps AppErrors as they are and wraps everything else.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.NewStoreError(op, err)
}
