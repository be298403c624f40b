package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"quad-backend/internal/features/wallet/models"
	"quad-backend/internal/features/wallet/repository"
	platformredis "quad-backend/internal/platform/redis"
)

type Repository struct {
	client redis.UniversalClient
	keys   platformredis.Keyspace
}

func NewRepository(client redis.UniversalClient, prefix string) repository.Repository {
	return &Repository{client: client, keys: platformredis.Keyspace(prefix)}
}

func (r *Repository) payloadKey(userID int64) string {
	return r.keys.Key("wallet", "payload", strconv.FormatInt(userID, 10))
}

func (r *Repository) linkKey(userID int64) string {
	return r.keys.Key("wallet", "link", strconv.FormatInt(userID, 10))
}

func (r *Repository) SavePayload(ctx context.Context, userID int64, payload string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.payloadKey(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save payload: %w", err)
	}
	return nil
}

func (r *Repository) TakePayload(ctx context.Context, userID int64) (string, error) {
	payload, err := r.client.GetDel(ctx, r.payloadKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to take payload: %w", err)
	}
	return payload, nil
}

func (r *Repository) SaveLink(ctx context.Context, link *models.Link) error {
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet link: %w", err)
	}
	if err := r.client.Set(ctx, r.linkKey(link.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save wallet link: %w", err)
	}
	return nil
}

func (r *Repository) GetLink(ctx context.Context, userID int64) (*models.Link, error) {
	data, err := r.client.Get(ctx, r.linkKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet link: %w", err)
	}

	var link models.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet link: %w", err)
	}
	return &link, nil
}
