package memory

import (
	"context"
	"sync"
)

// Locker is a process-wide mutex that honours context cancellation.
type Locker struct {
	sem chan struct{}
}

func NewLocker() *Locker {
	return &Locker{sem: make(chan struct{}, 1)}
}

func (l *Locker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-l.sem }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
