package service

import (
	"context"
	"math/big"

	"quad-backend/internal/features/account/models"
)

// AccountService is the registry and ledger. Every mutating call runs under
// the global operation guard.
type AccountService interface {
	RegisterUser(ctx context.Context, caller models.Identity, in models.ProfileInput) (*models.Profile, error)
	UpdateUserProfile(ctx context.Context, caller models.Identity, upd models.ProfileUpdate) (*models.Profile, error)
	GetProfile(ctx context.Context, id models.Identity) (*models.Profile, error)

	DepositFunds(ctx context.Context, caller models.Identity, amount *big.Int) (*models.Profile, error)
	TransferFunds(ctx context.Context, caller, recipient models.Identity, amount *big.Int) (*models.Profile, error)

	Stats(ctx context.Context) (*models.Stats, error)
	Journal(ctx context.Context, limit int64) ([]models.Entry, error)
	Audit(ctx context.Context) (*models.AuditReport, error)
}
