package memory

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quad-backend/internal/features/account/models"
	"quad-backend/internal/features/account/repository"
)

const (
	alice models.Identity = "0:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob   models.Identity = "0:bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func register(t *testing.T, s *Store, id models.Identity, balance int64) {
	t.Helper()
	err := s.Atomic(context.Background(), []models.Identity{id}, func(tx repository.Tx) error {
		p, err := tx.Get(context.Background(), id)
		if err != nil {
			return err
		}
		p.Registered = true
		p.Balance = big.NewInt(balance)
		tx.Put(p)
		tx.AddDeposited(big.NewInt(balance))
		return nil
	})
	require.NoError(t, err)
}

func TestGetProfileUnseenReturnsDefault(t *testing.T) {
	s := NewStore(0)

	p, err := s.GetProfile(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, alice, p.Identity)
	assert.False(t, p.Registered)
	assert.Equal(t, 0, p.Balance.Sign())

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.RegisteredCount, "lookup must not persist a record")
}

func TestAtomicCommitsOnSuccess(t *testing.T) {
	s := NewStore(0)
	register(t, s, alice, 100)

	p, err := s.GetProfile(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, p.Registered)
	assert.Equal(t, int64(100), p.Balance.Int64())

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.TotalDeposited.Int64())
	assert.Equal(t, int64(1), stats.RegisteredCount)
}

func TestAtomicDiscardsOnError(t *testing.T) {
	s := NewStore(0)
	register(t, s, alice, 100)
	register(t, s, bob, 0)

	boom := errors.New("boom")
	err := s.Atomic(context.Background(), []models.Identity{alice, bob}, func(tx repository.Tx) error {
		a, _ := tx.Get(context.Background(), alice)
		b, _ := tx.Get(context.Background(), bob)
		a.Balance.Sub(a.Balance, big.NewInt(40))
		b.Balance.Add(b.Balance, big.NewInt(40))
		tx.Put(a)
		tx.Put(b)
		tx.Append(models.Entry{Kind: models.EntryTransfer})
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, _ := s.GetProfile(context.Background(), alice)
	b, _ := s.GetProfile(context.Background(), bob)
	assert.Equal(t, int64(100), a.Balance.Int64())
	assert.Equal(t, int64(0), b.Balance.Int64())

	entries, err := s.Journal(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTxReadsOwnWrites(t *testing.T) {
	s := NewStore(0)
	err := s.Atomic(context.Background(), []models.Identity{alice}, func(tx repository.Tx) error {
		p, _ := tx.Get(context.Background(), alice)
		p.Username = "staged"
		tx.Put(p)

		again, err := tx.Get(context.Background(), alice)
		require.NoError(t, err)
		assert.Equal(t, "staged", again.Username)
		return nil
	})
	require.NoError(t, err)
}

func TestTxRejectsUndeclaredKeys(t *testing.T) {
	s := NewStore(0)

	err := s.Atomic(context.Background(), []models.Identity{alice}, func(tx repository.Tx) error {
		_, err := tx.Get(context.Background(), bob)
		return err
	})
	assert.ErrorIs(t, err, repository.ErrUndeclaredKey)

	err = s.Atomic(context.Background(), []models.Identity{alice}, func(tx repository.Tx) error {
		tx.Put(models.NewUnregistered(bob))
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrUndeclaredKey)
}

func TestJournalNewestFirstAndTrimmed(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		amount := big.NewInt(int64(i + 1))
		err := s.Atomic(context.Background(), nil, func(tx repository.Tx) error {
			tx.Append(models.Entry{Kind: models.EntryDeposit, Amount: amount, At: time.Now()})
			return nil
		})
		require.NoError(t, err)
	}

	entries, err := s.Journal(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(5), entries[0].Amount.Int64())
	assert.Equal(t, int64(3), entries[2].Amount.Int64())

	entries, err = s.Journal(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestForEachRegistered(t *testing.T) {
	s := NewStore(0)
	register(t, s, bob, 7)
	register(t, s, alice, 3)

	var seen []models.Identity
	sum := new(big.Int)
	err := s.ForEachRegistered(context.Background(), func(p *models.Profile) error {
		seen = append(seen, p.Identity)
		sum.Add(sum, p.Balance)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []models.Identity{alice, bob}, seen)
	assert.Equal(t, int64(10), sum.Int64())
}

func TestLockerHonoursContext(t *testing.T) {
	l := NewLocker()

	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op

	unlock2, err := l.Lock(context.Background())
	require.NoError(t, err)
	unlock2()
}
