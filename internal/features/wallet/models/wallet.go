package models

import (
	"time"

	account "quad-backend/internal/features/account/models"
)

// Networks as reported by TON Connect.
const (
	NetworkMainnet = "-239"
	NetworkTestnet = "-3"
)

// ProofDomain is the app domain the wallet signed.
type ProofDomain struct {
	LengthBytes uint32 `json:"lengthBytes" example:"21"`
	Value       string `json:"value" binding:"required" example:"quad.example.org"`
}

// Proof is the ton_proof item returned by the wallet.
type Proof struct {
	Timestamp int64       `json:"timestamp" binding:"required" example:"1668094767"`
	Domain    ProofDomain `json:"domain" binding:"required"`
	Signature string      `json:"signature" binding:"required" example:"base64_encoded_signature"` // base64
	Payload   string      `json:"payload" binding:"required" example:"6f8c1c7e-3c8e-4e36-9b0a-3f7e0d5e4a11"`
	StateInit string      `json:"state_init" binding:"required" example:"te6cckEBAwEA..."` // base64 BOC
}

// ProofRequest links the wallet at Address to the calling Telegram user.
// @Description TON Connect proof of wallet ownership
type ProofRequest struct {
	Address   string `json:"address" binding:"required" example:"0:0000000000000000000000000000000000000000000000000000000000000001"`
	Network   string `json:"network" binding:"required" example:"-239"`
	PublicKey string `json:"public_key" binding:"required" example:"hex_encoded_public_key"` // hex
	Proof     Proof  `json:"proof" binding:"required"`
}

// PayloadResponse is the challenge the wallet must sign.
type PayloadResponse struct {
	Payload   string    `json:"payload"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Link binds a Telegram user to a verified wallet.
type Link struct {
	UserID     int64            `json:"user_id"`
	Address    account.Identity `json:"address"`
	Network    string           `json:"network"`
	VerifiedAt time.Time        `json:"verified_at"`
}

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string `json:"code" example:"UNAUTHORIZED"`
		Message string `json:"message" example:"Unauthorized: invalid proof signature"`
	} `json:"error"`
}
