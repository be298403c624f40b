package repository

import (
	"context"
	"errors"
	"math/big"

	"quad-backend/internal/features/account/models"
)

var (
	// ErrTxConflict is returned when an atomic unit kept losing optimistic
	// races and gave up.
	ErrTxConflict = errors.New("transaction conflict: retries exhausted")
	// ErrUndeclaredKey is returned when a unit touches an identity it did not
	// declare up front.
	ErrUndeclaredKey = errors.New("identity not declared for this transaction")
)

// Tx is the view of the store inside one atomic unit. Reads see the unit's own
// staged writes; nothing is visible to other readers until the unit commits.
type Tx interface {
	// Get returns a copy of the record, or the unregistered default.
	Get(ctx context.Context, id models.Identity) (*models.Profile, error)
	// Put stages a record write.
	Put(p *models.Profile)
	// AddDeposited stages an increment of the cumulative deposit total.
	AddDeposited(amount *big.Int)
	// Append stages a journal entry.
	Append(e models.Entry)
}

// AccountStore keeps one record per identity plus ledger bookkeeping.
type AccountStore interface {
	// GetProfile returns the record or the unregistered default for unseen keys.
	GetProfile(ctx context.Context, id models.Identity) (*models.Profile, error)

	// Atomic runs fn against the records of ids. Either every write staged by fn
	// is applied, or (fn error, store error) none is.
	Atomic(ctx context.Context, ids []models.Identity, fn func(tx Tx) error) error

	Stats(ctx context.Context) (*models.Stats, error)
	Journal(ctx context.Context, limit int64) ([]models.Entry, error)
	// ForEachRegistered visits every registered record.
	ForEachRegistered(ctx context.Context, fn func(p *models.Profile) error) error

	Ping(ctx context.Context) error
}

// Locker provides the global serialization point for account operations.
type Locker interface {
	// Lock blocks until the lock is held or ctx is done.
	Lock(ctx context.Context) (unlock func(), err error)
}

// Dedup returns ids without duplicates, keeping order.
func Dedup(ids []models.Identity) []models.Identity {
	seen := make(map[models.Identity]struct{}, len(ids))
	out := make([]models.Identity, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
