package service

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	apperrors "quad-backend/internal/common/errors"
	"quad-backend/internal/common/logger"
	account "quad-backend/internal/features/account/models"
	"quad-backend/internal/features/wallet/models"
	"quad-backend/internal/features/wallet/repository"
)

const (
	proofPrefix   = "ton-proof-item-v2/"
	connectPrefix = "ton-connect"

	// maxClockSkew tolerates wallets whose clock runs slightly ahead.
	maxClockSkew = time.Minute
)

type Config struct {
	Domain     string
	ProofTTL   time.Duration
	PayloadTTL time.Duration
	Now        func() time.Time
}

type Service struct {
	repo repository.Repository
	cfg  Config
	log  zerolog.Logger
}

func NewService(repo repository.Repository, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{repo: repo, cfg: cfg, log: logger.Component("wallet")}
}

// GeneratePayload issues a fresh single-use challenge for the user.
func (s *Service) GeneratePayload(ctx context.Context, userID int64) (*models.PayloadResponse, error) {
	payload := uuid.New().String()
	if err := s.repo.SavePayload(ctx, userID, payload, s.cfg.PayloadTTL); err != nil {
		return nil, apperrors.NewStoreError("save_payload", err)
	}
	return &models.PayloadResponse{
		Payload:   payload,
		ExpiresAt: s.cfg.Now().Add(s.cfg.PayloadTTL).UTC(),
	}, nil
}

// VerifyProof checks a TON Connect ton_proof and links the wallet to the user.
func (s *Service) VerifyProof(ctx context.Context, userID int64, req *models.ProofRequest) (*models.Link, error) {
	id, err := account.ParseIdentity(req.Address)
	if err != nil {
		return nil, apperrors.NewValidationError("address", err.Error())
	}
	addr, err := address.ParseRawAddr(id.String())
	if err != nil {
		return nil, apperrors.NewValidationError("address", err.Error())
	}
	if req.Network != models.NetworkMainnet && req.Network != models.NetworkTestnet {
		return nil, apperrors.NewValidationError("network", "unknown network")
	}

	if req.Proof.Domain.Value != s.cfg.Domain || int(req.Proof.Domain.LengthBytes) != len(req.Proof.Domain.Value) {
		return nil, apperrors.NewUnauthorizedError("proof domain mismatch")
	}

	now := s.cfg.Now()
	signedAt := time.Unix(req.Proof.Timestamp, 0)
	if now.Sub(signedAt) > s.cfg.ProofTTL || signedAt.Sub(now) > maxClockSkew {
		return nil, apperrors.NewUnauthorizedError("proof expired")
	}

	pub, err := hex.DecodeString(req.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return nil, apperrors.NewValidationError("public_key", "must be a hex encoded ed25519 key")
	}
	if err := checkStateInit(req.Proof.StateInit, addr, pub); err != nil {
		s.log.Debug().Err(err).Int64("user_id", userID).Msg("State init rejected")
		return nil, apperrors.NewUnauthorizedError("wallet state does not match address")
	}

	sig, err := base64.StdEncoding.DecodeString(req.Proof.Signature)
	if err != nil {
		return nil, apperrors.NewValidationError("proof.signature", "must be base64")
	}
	if !ed25519.Verify(pub, signedHash(addr, &req.Proof), sig) {
		return nil, apperrors.NewUnauthorizedError("invalid proof signature")
	}

	expected, err := s.repo.TakePayload(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnauthorizedError("payload expired or unknown")
	}
	if err != nil {
		return nil, apperrors.NewStoreError("take_payload", err)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(req.Proof.Payload)) != 1 {
		return nil, apperrors.NewUnauthorizedError("payload mismatch")
	}

	link := &models.Link{
		UserID:     userID,
		Address:    id,
		Network:    req.Network,
		VerifiedAt: now.UTC(),
	}
	if err := s.repo.SaveLink(ctx, link); err != nil {
		return nil, apperrors.NewStoreError("save_link", err)
	}

	s.log.Info().Int64("user_id", userID).Str("address", id.String()).Msg("Wallet linked")
	return link, nil
}

// Linked returns the wallet bound to a Telegram user.
func (s *Service) Linked(ctx context.Context, userID int64) (*models.Link, error) {
	link, err := s.repo.GetLink(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrCodeWalletNotLinked, "No wallet linked to this user")
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get_link", err)
	}
	return link, nil
}

// LinkedAddress resolves the caller identity for account operations.
func (s *Service) LinkedAddress(ctx context.Context, userID int64) (account.Identity, error) {
	link, err := s.Linked(ctx, userID)
	if err != nil {
		return "", err
	}
	return link.Address, nil
}

// signedHash rebuilds the digest the wallet signed:
// sha256(0xffff ++ "ton-connect" ++ sha256(message)).
func signedHash(addr *address.Address, p *models.Proof) []byte {
	msg := make([]byte, 0, len(proofPrefix)+4+32+4+len(p.Domain.Value)+8+len(p.Payload))
	msg = append(msg, proofPrefix...)
	msg = binary.BigEndian.AppendUint32(msg, uint32(addr.Workchain()))
	msg = append(msg, addr.Data()...)
	msg = binary.LittleEndian.AppendUint32(msg, p.Domain.LengthBytes)
	msg = append(msg, p.Domain.Value...)
	msg = binary.LittleEndian.AppendUint64(msg, uint64(p.Timestamp))
	msg = append(msg, p.Payload...)
	msgHash := sha256.Sum256(msg)

	full := make([]byte, 0, 2+len(connectPrefix)+len(msgHash))
	full = append(full, 0xff, 0xff)
	full = append(full, connectPrefix...)
	full = append(full, msgHash[:]...)
	h := sha256.Sum256(full)
	return h[:]
}

// checkStateInit verifies that the state init hashes to the address and that
// its data cell carries the public key.
func checkStateInit(boc string, addr *address.Address, pub []byte) error {
	raw, err := base64.StdEncoding.DecodeString(boc)
	if err != nil {
		return fmt.Errorf("decode state init: %w", err)
	}
	root, err := cell.FromBOC(raw)
	if err != nil {
		return fmt.Errorf("parse state init: %w", err)
	}
	if subtle.ConstantTimeCompare(root.Hash(), addr.Data()) != 1 {
		return fmt.Errorf("state init hash does not match address")
	}

	var si tlb.StateInit
	if err := tlb.LoadFromCell(&si, root.BeginParse()); err != nil {
		return fmt.Errorf("load state init: %w", err)
	}
	if si.Data == nil {
		return fmt.Errorf("state init has no data")
	}

	bits := si.Data.BitsSize()
	data, err := si.Data.BeginParse().LoadSlice(bits)
	if err != nil {
		return fmt.Errorf("read wallet data: %w", err)
	}
	if !containsBits(data, bits, pub) {
		return fmt.Errorf("public key not found in wallet data")
	}
	return nil
}

// containsBits reports whether needle occurs in the first hayBits bits of hay
// at any bit offset. Wallet contracts store the key after a version specific
// header that is not always byte aligned.
func containsBits(hay []byte, hayBits uint, needle []byte) bool {
	needleBits := uint(len(needle)) * 8
	if needleBits == 0 || hayBits < needleBits {
		return false
	}
	bit := func(b []byte, i uint) byte {
		return (b[i/8] >> (7 - i%8)) & 1
	}
	for off := uint(0); off+needleBits <= hayBits; off++ {
		match := true
		for i := uint(0); i < needleBits; i++ {
			if bit(hay, off+i) != bit(needle, i) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
