package models

import (
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

// Identity is the store key of an account: a TON address in raw form
// ("<workchain>:<64 hex>").
type Identity string

func (id Identity) String() string {
	return string(id)
}

// IsZero reports whether id is the empty identity.
func (id Identity) IsZero() bool {
	return id == ""
}

// ParseIdentity accepts a raw or user-friendly TON address and returns its
// normalized raw form.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty address")
	}

	var (
		addr *address.Address
		err  error
	)
	if strings.Contains(s, ":") {
		addr, err = address.ParseRawAddr(s)
	} else {
		addr, err = address.ParseAddr(s)
	}
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", s, err)
	}

	return Identity(strings.ToLower(addr.StringRaw())), nil
}

// MustParseIdentity is ParseIdentity that panics; for constants and tests.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}
