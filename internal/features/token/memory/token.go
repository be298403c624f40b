package memory

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"quad-backend/internal/features/account/models"
	"quad-backend/internal/features/token"
)

var (
	ErrInsufficientBalance   = errors.New("token: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrZeroAddress           = errors.New("token: zero address")
	ErrNegativeAmount        = errors.New("token: negative amount")
)

// Token is an in-process ERC-20 style ledger: balances, allowances, and a
// total supply that only mint changes.
type Token struct {
	mu          sync.Mutex
	name        string
	symbol      string
	totalSupply *big.Int
	balances    map[models.Identity]*big.Int
	allowances  map[models.Identity]map[models.Identity]*big.Int
}

func NewToken(name, symbol string) *Token {
	return &Token{
		name:        name,
		symbol:      symbol,
		totalSupply: new(big.Int),
		balances:    make(map[models.Identity]*big.Int),
		allowances:  make(map[models.Identity]map[models.Identity]*big.Int),
	}
}

func (t *Token) Name() string   { return t.name }
func (t *Token) Symbol() string { return t.symbol }

func (t *Token) TotalSupply() *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.totalSupply)
}

func (t *Token) BalanceOf(who models.Identity) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.balance(who))
}

func (t *Token) balance(who models.Identity) *big.Int {
	if b, ok := t.balances[who]; ok {
		return b
	}
	return new(big.Int)
}

func (t *Token) Mint(to models.Identity, amount *big.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[to] = new(big.Int).Add(t.balance(to), amount)
	t.totalSupply.Add(t.totalSupply, amount)
	return nil
}

// Approve sets (not adds to) the allowance of spender over owner's tokens.
func (t *Token) Approve(owner, spender models.Identity, amount *big.Int) error {
	if owner.IsZero() || spender.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[models.Identity]*big.Int)
	}
	t.allowances[owner][spender] = new(big.Int).Set(amount)
	return nil
}

func (t *Token) Allowance(owner, spender models.Identity) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.allowances[owner][spender]; ok {
		return new(big.Int).Set(a)
	}
	return new(big.Int)
}

func (t *Token) Transfer(from, to models.Identity, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(from, to, amount)
}

// TransferFrom moves tokens on behalf of owner `from`, spending spender's allowance.
func (t *Token) TransferFrom(spender, from, to models.Identity, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed := new(big.Int)
	if a, ok := t.allowances[from][spender]; ok {
		allowed = a
	}
	if allowed.Cmp(amount) < 0 {
		return fmt.Errorf("%w: allowed %s, requested %s", ErrInsufficientAllowance, allowed, amount)
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	if t.allowances[from] == nil {
		t.allowances[from] = make(map[models.Identity]*big.Int)
	}
	t.allowances[from][spender] = new(big.Int).Sub(allowed, amount)
	return nil
}

func (t *Token) move(from, to models.Identity, amount *big.Int) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	fb := t.balance(from)
	if fb.Cmp(amount) < 0 {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, fb, amount)
	}
	t.balances[from] = new(big.Int).Sub(fb, amount)
	t.balances[to] = new(big.Int).Add(t.balance(to), amount)
	return nil
}

// Gateway exposes a Token to the ledger, acting as the custody address.
type Gateway struct {
	token   *Token
	custody models.Identity
}

func NewGateway(t *Token, custody models.Identity) *Gateway {
	return &Gateway{token: t, custody: custody}
}

var _ token.Gateway = (*Gateway)(nil)

func (g *Gateway) Token() *Token {
	return g.token
}

func (g *Gateway) TransferFrom(ctx context.Context, from, to models.Identity, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.token.TransferFrom(g.custody, from, to, amount)
}

func (g *Gateway) Transfer(ctx context.Context, to models.Identity, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.token.Transfer(g.custody, to, amount)
}

func (g *Gateway) BalanceOf(_ context.Context, who models.Identity) (*big.Int, error) {
	return g.token.BalanceOf(who), nil
}

func (g *Gateway) Custody() models.Identity {
	return g.custody
}
