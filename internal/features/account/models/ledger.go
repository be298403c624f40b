package models

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// ParseAmount parses a decimal integer amount in the token's smallest unit.
// Zero and negative values are rejected.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("amount %q is not an integer", s)
	}
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return n, nil
}

// EntryKind labels journal entries.
type EntryKind string

const (
	EntryRegister EntryKind = "register"
	EntryUpdate   EntryKind = "update"
	EntryDeposit  EntryKind = "deposit"
	EntryTransfer EntryKind = "transfer"
)

// Entry is one line of the ledger journal.
type Entry struct {
	ID     string    `json:"id"`
	Kind   EntryKind `json:"kind"`
	From   Identity  `json:"from,omitempty"`
	To     Identity  `json:"to,omitempty"`
	Amount *big.Int  `json:"amount,omitempty"`
	At     time.Time `json:"at"`
}

// Stats summarises the ledger.
type Stats struct {
	TotalDeposited  *big.Int `json:"total_deposited"`
	RegisteredCount int64    `json:"registered_count"`
}

// AuditReport compares the sum of balances with cumulative deposits.
type AuditReport struct {
	Accounts       int64     `json:"accounts"`
	BalanceSum     *big.Int  `json:"balance_sum"`
	TotalDeposited *big.Int  `json:"total_deposited"`
	Consistent     bool      `json:"consistent"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Drift is BalanceSum - TotalDeposited.
func (r *AuditReport) Drift() *big.Int {
	return new(big.Int).Sub(r.BalanceSum, r.TotalDeposited)
}
