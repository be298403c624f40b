package models

import "time"

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string `json:"code" example:"INSUFFICIENT_FUNDS"`
		Message string `json:"message" example:"Insufficient funds"`
	} `json:"error"`
	RequestID string `json:"request_id" example:"6f8c1c7e-3c8e-4e36-9b0a-3f7e0d5e4a11"`
}

// RegisterRequest represents a registerUser call
// @Description Profile of a new account. Category cannot be changed later.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required" example:"User1"`
	Email       string `json:"email" example:"user1@example.com"`
	PhoneNumber string `json:"phone_number" example:"123456789"`
	Category    *uint8 `json:"category" binding:"required" example:"0" enums:"0,1,2,3"`
	Bio         string `json:"bio" example:"Bio of user1"`
}

// UpdateProfileRequest replaces the editable profile fields.
type UpdateProfileRequest struct {
	Username    string `json:"username" binding:"required" example:"User1"`
	Email       string `json:"email" example:"user1@example.com"`
	PhoneNumber string `json:"phone_number" example:"123456789"`
	Bio         string `json:"bio" example:"Bio of user1"`
}

// DepositRequest carries the amount in the token's smallest unit.
type DepositRequest struct {
	Amount string `json:"amount" binding:"required" example:"100000000000000000000"`
}

type TransferRequest struct {
	Recipient string `json:"recipient" binding:"required" example:"0:0000000000000000000000000000000000000000000000000000000000000002"`
	Amount    string `json:"amount" binding:"required" example:"50000000000000000000"`
}

// ProfileResponse is the public view of an account.
type ProfileResponse struct {
	Address      string     `json:"address" example:"0:0000000000000000000000000000000000000000000000000000000000000001"`
	Username     string     `json:"username" example:"User1"`
	Email        string     `json:"email" example:"user1@example.com"`
	PhoneNumber  string     `json:"phone_number" example:"123456789"`
	Bio          string     `json:"bio" example:"Bio of user1"`
	Category     uint8      `json:"category" example:"0"`
	CategoryName string     `json:"category_name" example:"personal"`
	Registered   bool       `json:"registered" example:"true"`
	Balance      string     `json:"balance" example:"50000000000000000000"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type StatsResponse struct {
	TotalDeposited  string `json:"total_deposited" example:"100000000000000000000"`
	RegisteredCount int64  `json:"registered_count" example:"2"`
}

type EntryResponse struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind" example:"transfer" enums:"register,update,deposit,transfer"`
	From   string    `json:"from,omitempty"`
	To     string    `json:"to,omitempty"`
	Amount string    `json:"amount,omitempty"`
	At     time.Time `json:"at"`
}

type JournalResponse struct {
	Items []EntryResponse `json:"items"`
	Total int             `json:"total" example:"2"`
}

type AuditResponse struct {
	Accounts       int64     `json:"accounts" example:"2"`
	BalanceSum     string    `json:"balance_sum" example:"100000000000000000000"`
	TotalDeposited string    `json:"total_deposited" example:"100000000000000000000"`
	Drift          string    `json:"drift" example:"0"`
	Consistent     bool      `json:"consistent" example:"true"`
	CheckedAt      time.Time `json:"checked_at"`
}
