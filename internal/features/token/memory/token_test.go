package memory

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quad-backend/internal/features/account/models"
)

const (
	owner   models.Identity = "0:0000000000000000000000000000000000000000000000000000000000000001"
	user1   models.Identity = "0:0000000000000000000000000000000000000000000000000000000000000002"
	custody models.Identity = "0:00000000000000000000000000000000000000000000000000000000000000ff"
)

func TestMintAndTransfer(t *testing.T) {
	tok := NewToken("Test Token", "TT")
	require.NoError(t, tok.Mint(owner, big.NewInt(1000)))

	require.NoError(t, tok.Transfer(owner, user1, big.NewInt(300)))
	assert.Equal(t, int64(700), tok.BalanceOf(owner).Int64())
	assert.Equal(t, int64(300), tok.BalanceOf(user1).Int64())
	assert.Equal(t, int64(1000), tok.TotalSupply().Int64())

	err := tok.Transfer(user1, owner, big.NewInt(301))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(300), tok.BalanceOf(user1).Int64())
}

func TestTransferFromSpendsAllowance(t *testing.T) {
	tok := NewToken("Test Token", "TT")
	require.NoError(t, tok.Mint(user1, big.NewInt(100)))

	err := tok.TransferFrom(custody, user1, custody, big.NewInt(10))
	assert.ErrorIs(t, err, ErrInsufficientAllowance, "no approval yet")

	require.NoError(t, tok.Approve(user1, custody, big.NewInt(60)))
	require.NoError(t, tok.TransferFrom(custody, user1, custody, big.NewInt(40)))

	assert.Equal(t, int64(20), tok.Allowance(user1, custody).Int64())
	assert.Equal(t, int64(60), tok.BalanceOf(user1).Int64())
	assert.Equal(t, int64(40), tok.BalanceOf(custody).Int64())

	err = tok.TransferFrom(custody, user1, custody, big.NewInt(21))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.Equal(t, int64(20), tok.Allowance(user1, custody).Int64(), "failed call keeps allowance")
}

func TestTransferFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	tok := NewToken("Test Token", "TT")
	require.NoError(t, tok.Mint(user1, big.NewInt(5)))
	require.NoError(t, tok.Approve(user1, custody, big.NewInt(50)))

	err := tok.TransferFrom(custody, user1, custody, big.NewInt(10))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(50), tok.Allowance(user1, custody).Int64())
}

func TestZeroAddress(t *testing.T) {
	tok := NewToken("Test Token", "TT")
	assert.ErrorIs(t, tok.Mint("", big.NewInt(1)), ErrZeroAddress)
	assert.ErrorIs(t, tok.Approve(user1, "", big.NewInt(1)), ErrZeroAddress)
}

func TestGateway(t *testing.T) {
	tok := NewToken("Test Token", "TT")
	g := NewGateway(tok, custody)
	require.NoError(t, tok.Mint(user1, big.NewInt(100)))
	require.NoError(t, tok.Approve(user1, custody, big.NewInt(100)))

	ctx := context.Background()
	require.NoError(t, g.TransferFrom(ctx, user1, g.Custody(), big.NewInt(70)))
	require.NoError(t, g.Transfer(ctx, user1, big.NewInt(20)))

	bal, err := g.BalanceOf(ctx, custody)
	require.NoError(t, err)
	assert.Equal(t, int64(50), bal.Int64())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, g.TransferFrom(cancelled, user1, custody, big.NewInt(1)), context.Canceled)
}
