package service

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	apperrors "quad-backend/internal/common/errors"
	"quad-backend/internal/features/wallet/models"
	"quad-backend/internal/features/wallet/repository/memory"
)

const testDomain = "quad.example.org"

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

type testWallet struct {
	priv      ed25519.PrivateKey
	pub       ed25519.PublicKey
	addr      *address.Address
	stateInit string
}

// newTestWallet builds a v4-style wallet: seqno, subwallet id, public key.
func newTestWallet(t *testing.T) *testWallet {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	data := cell.BeginCell().
		MustStoreUInt(0, 32).
		MustStoreUInt(698983191, 32).
		MustStoreSlice(pub, 256).
		MustStoreBoolBit(false).
		EndCell()
	code := cell.BeginCell().MustStoreUInt(0xC0DE, 16).EndCell()

	si, err := tlb.ToCell(&tlb.StateInit{Code: code, Data: data})
	require.NoError(t, err)

	return &testWallet{
		priv:      priv,
		pub:       pub,
		addr:      address.NewAddress(0, 0, si.Hash()),
		stateInit: base64.StdEncoding.EncodeToString(si.ToBOC()),
	}
}

func (w *testWallet) request(payload string, at time.Time, domain string) *models.ProofRequest {
	req := &models.ProofRequest{
		Address:   w.addr.StringRaw(),
		Network:   models.NetworkMainnet,
		PublicKey: hex.EncodeToString(w.pub),
		Proof: models.Proof{
			Timestamp: at.Unix(),
			Domain:    models.ProofDomain{LengthBytes: uint32(len(domain)), Value: domain},
			Payload:   payload,
			StateInit: w.stateInit,
		},
	}
	sig := ed25519.Sign(w.priv, signedHash(w.addr, &req.Proof))
	req.Proof.Signature = base64.StdEncoding.EncodeToString(sig)
	return req
}

func newTestService() *Service {
	return NewService(memory.NewRepository(), Config{
		Domain:     testDomain,
		ProofTTL:   5 * time.Minute,
		PayloadTTL: time.Hour,
		Now:        func() time.Time { return testNow },
	})
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "want AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestVerifyProofLinksWallet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	w := newTestWallet(t)

	p, err := svc.GeneratePayload(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Payload)

	link, err := svc.VerifyProof(ctx, 42, w.request(p.Payload, testNow.Add(-time.Minute), testDomain))
	require.NoError(t, err)
	assert.Equal(t, w.addr.StringRaw(), link.Address.String())

	got, err := svc.Linked(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, link.Address, got.Address)
	assert.Equal(t, models.NetworkMainnet, got.Network)
}

func TestPayloadIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	w := newTestWallet(t)

	p, err := svc.GeneratePayload(ctx, 7)
	require.NoError(t, err)
	req := w.request(p.Payload, testNow, testDomain)

	_, err = svc.VerifyProof(ctx, 7, req)
	require.NoError(t, err)

	_, err = svc.VerifyProof(ctx, 7, req)
	requireCode(t, err, apperrors.ErrCodeUnauthorized)
}

func TestVerifyProofRejections(t *testing.T) {
	ctx := context.Background()
	w := newTestWallet(t)
	other := newTestWallet(t)

	tests := []struct {
		name   string
		mutate func(req *models.ProofRequest, payload string) *models.ProofRequest
		code   apperrors.ErrorCode
	}{
		{
			name: "wrong domain",
			mutate: func(_ *models.ProofRequest, payload string) *models.ProofRequest {
				return w.request(payload, testNow, "evil.example.org")
			},
			code: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "expired",
			mutate: func(_ *models.ProofRequest, payload string) *models.ProofRequest {
				return w.request(payload, testNow.Add(-time.Hour), testDomain)
			},
			code: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "from the future",
			mutate: func(_ *models.ProofRequest, payload string) *models.ProofRequest {
				return w.request(payload, testNow.Add(time.Hour), testDomain)
			},
			code: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "wrong payload",
			mutate: func(_ *models.ProofRequest, _ string) *models.ProofRequest {
				return w.request("not-the-payload", testNow, testDomain)
			},
			code: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "tampered signature",
			mutate: func(req *models.ProofRequest, _ string) *models.ProofRequest {
				req.Proof.Payload += "x"
				return req
			},
			code: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "key of another wallet",
			mutate: func(req *models.ProofRequest, _ string) *models.ProofRequest {
				req.PublicKey = hex.EncodeToString(other.pub)
				return req
			},
			code: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "state init of another wallet",
			mutate: func(req *models.ProofRequest, _ string) *models.ProofRequest {
				req.Proof.StateInit = other.stateInit
				return req
			},
			code: apperrors.ErrCodeUnauthorized,
		},
		{
			name: "bad address",
			mutate: func(req *models.ProofRequest, _ string) *models.ProofRequest {
				req.Address = "nope"
				return req
			},
			code: apperrors.ErrCodeValidation,
		},
		{
			name: "bad public key",
			mutate: func(req *models.ProofRequest, _ string) *models.ProofRequest {
				req.PublicKey = "abcd"
				return req
			},
			code: apperrors.ErrCodeValidation,
		},
		{
			name: "unknown network",
			mutate: func(req *models.ProofRequest, _ string) *models.ProofRequest {
				req.Network = "1"
				return req
			},
			code: apperrors.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			p, err := svc.GeneratePayload(ctx, 1)
			require.NoError(t, err)

			_, err = svc.VerifyProof(ctx, 1, tt.mutate(w.request(p.Payload, testNow, testDomain), p.Payload))
			requireCode(t, err, tt.code)

			_, err = svc.Linked(ctx, 1)
			requireCode(t, err, apperrors.ErrCodeWalletNotLinked)
		})
	}
}

func TestContainsBitsUnaligned(t *testing.T) {
	needle := []byte{0xA5, 0x3C}
	// 0b1 followed by needle, shifted by one bit.
	hay := []byte{0xD2, 0x9E, 0x00}
	assert.True(t, containsBits(hay, 17, needle))
	assert.False(t, containsBits(hay, 16, needle))
	assert.True(t, containsBits(needle, 16, needle))
	assert.False(t, containsBits([]byte{0xFF, 0xFF, 0xFF}, 24, needle))
}
