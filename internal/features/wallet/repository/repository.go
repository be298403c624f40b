package repository

import (
	"context"
	"errors"
	"time"

	"quad-backend/internal/features/wallet/models"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	// SavePayload stores the pending challenge for a user, replacing any previous one.
	SavePayload(ctx context.Context, userID int64, payload string, ttl time.Duration) error
	// TakePayload returns and removes the pending challenge. Payloads are single-use.
	TakePayload(ctx context.Context, userID int64) (string, error)

	SaveLink(ctx context.Context, link *models.Link) error
	GetLink(ctx context.Context, userID int64) (*models.Link, error)
}
