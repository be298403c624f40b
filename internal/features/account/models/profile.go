package models

import (
	"math/big"
	"time"
)

// Category is chosen once at registration and never changes.
type Category uint8

const (
	CategoryPersonal Category = iota
	CategoryBusiness
	CategoryCreator
	CategoryOrganization

	MaxCategory = CategoryOrganization
)

var categoryNames = map[Category]string{
	CategoryPersonal:     "personal",
	CategoryBusiness:     "business",
	CategoryCreator:      "creator",
	CategoryOrganization: "organization",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c <= MaxCategory
}

// Profile is the single record kept per identity. The zero value (with a nil
// Balance treated as 0) is the unregistered default returned for unseen keys.
type Profile struct {
	Identity     Identity   `json:"identity"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	Bio          string     `json:"bio"`
	Category     Category   `json:"category"`
	Registered   bool       `json:"registered"`
	Balance      *big.Int   `json:"balance"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// NewUnregistered returns the default record for an unseen identity.
func NewUnregistered(id Identity) *Profile {
	return &Profile{Identity: id, Balance: new(big.Int)}
}

// Clone returns a deep copy so callers can stage changes safely.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Balance = new(big.Int)
	if p.Balance != nil {
		cp.Balance.Set(p.Balance)
	}
	if p.RegisteredAt != nil {
		t := *p.RegisteredAt
		cp.RegisteredAt = &t
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}

// BalanceOrZero never returns nil.
func (p *Profile) BalanceOrZero() *big.Int {
	if p.Balance == nil {
		return new(big.Int)
	}
	return p.Balance
}

// ProfileInput carries registerUser arguments.
type ProfileInput struct {
	Username    string
	Email       string
	PhoneNumber string
	Category    Category
	Bio         string
}

// ProfileUpdate carries updateUserProfile arguments. Category is absent on purpose:
// it cannot be changed after registration.
type ProfileUpdate struct {
	Username    string
	Email       string
	PhoneNumber string
	Bio         string
}
