package memory

import (
	"context"
	"sync"
	"time"

	"quad-backend/internal/features/wallet/models"
	"quad-backend/internal/features/wallet/repository"
)

type pending struct {
	payload   string
	expiresAt time.Time
}

// Repository keeps payloads and links in process memory.
type Repository struct {
	mu       sync.Mutex
	payloads map[int64]pending
	links    map[int64]models.Link
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		payloads: make(map[int64]pending),
		links:    make(map[int64]models.Link),
		now:      time.Now,
	}
}

var _ repository.Repository = (*Repository)(nil)

func (r *Repository) SavePayload(_ context.Context, userID int64, payload string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads[userID] = pending{payload: payload, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *Repository) TakePayload(_ context.Context, userID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payloads[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(r.payloads, userID)
	if !r.now().Before(p.expiresAt) {
		return "", repository.ErrNotFound
	}
	return p.payload, nil
}

func (r *Repository) SaveLink(_ context.Context, link *models.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[link.UserID] = *link
	return nil
}

func (r *Repository) GetLink(_ context.Context, userID int64) (*models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &link, nil
}
