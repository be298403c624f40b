package token

import (
	"context"
	"math/big"

	"quad-backend/internal/features/account/models"
)

// Gateway is the ledger's view of the external fungible token. It is untrusted:
// implementations may fail, block, or try to call back into the ledger.
type Gateway interface {
	// TransferFrom pulls amount from `from` into `to`, spending the allowance
	// `from` granted to the ledger.
	TransferFrom(ctx context.Context, from, to models.Identity, amount *big.Int) error
	// Transfer sends amount from the ledger's custody to `to`.
	Transfer(ctx context.Context, to models.Identity, amount *big.Int) error
	BalanceOf(ctx context.Context, who models.Identity) (*big.Int, error)
	// Custody is the address holding deposited tokens.
	Custody() models.Identity
}
