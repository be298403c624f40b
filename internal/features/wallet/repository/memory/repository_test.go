package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quad-backend/internal/features/wallet/models"
	"quad-backend/internal/features/wallet/repository"
)

func TestPayloadLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRepository()
	r.now = func() time.Time { return now }

	require.NoError(t, r.SavePayload(ctx, 1, "first", time.Minute))
	require.NoError(t, r.SavePayload(ctx, 1, "second", time.Minute))

	got, err := r.TakePayload(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = r.TakePayload(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, r.SavePayload(ctx, 2, "stale", time.Minute))
	now = now.Add(2 * time.Minute)
	_, err = r.TakePayload(ctx, 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLinks(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()

	_, err := r.GetLink(ctx, 5)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	link := &models.Link{UserID: 5, Address: "0:0000000000000000000000000000000000000000000000000000000000000005", Network: models.NetworkTestnet}
	require.NoError(t, r.SaveLink(ctx, link))

	got, err := r.GetLink(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, *link, *got)
}
