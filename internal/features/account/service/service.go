package service

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	apperrors "quad-backend/internal/common/errors"
	"quad-backend/internal/common/logger"
	"quad-backend/internal/common/validation"
	"quad-backend/internal/features/account/models"
	"quad-backend/internal/features/account/repository"
	"quad-backend/internal/features/token"
	"quad-backend/internal/platform/metrics"
)

const (
	opRegister = "register"
	opUpdate   = "update_profile"
	opDeposit  = "deposit"
	opTransfer = "transfer"
	opAudit    = "audit"

	defaultLockTimeout = 5 * time.Second
	refundTimeout      = 10 * time.Second
)

// Config tunes the account service.
type Config struct {
	// IgnoreReregistration turns a repeated registerUser into a no-op instead
	// of an ALREADY_REGISTERED error.
	IgnoreReregistration bool
	LockTimeout          time.Duration
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

type accountService struct {
	store       repository.AccountStore
	locker      repository.Locker
	gateway     token.Gateway
	metrics     *metrics.Metrics
	log         zerolog.Logger
	ignoreRereg bool
	lockTimeout time.Duration
	now         func() time.Time
}

func NewAccountService(
	store repository.AccountStore,
	locker repository.Locker,
	gateway token.Gateway,
	m *metrics.Metrics,
	cfg Config,
) AccountService {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &accountService{
		store:       store,
		locker:      locker,
		gateway:     gateway,
		metrics:     m,
		log:         logger.Component("account"),
		ignoreRereg: cfg.IgnoreReregistration,
		lockTimeout: cfg.LockTimeout,
		now:         cfg.Now,
	}
}

func validationErr(err error) error {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return apperrors.NewValidationError(fe.Field, fe.Reason)
	}
	return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Validation failed")
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return apperrors.From(apperrors.ErrInvalidAmount)
	}
	return nil
}

func (s *accountService) RegisterUser(ctx context.Context, caller models.Identity, in models.ProfileInput) (*models.Profile, error) {
	if err := validation.ValidateProfileFields(in.Username, in.Email, in.PhoneNumber, in.Bio); err != nil {
		return nil, validationErr(err)
	}
	if !in.Category.Valid() {
		return nil, apperrors.NewValidationError("category", "unknown category")
	}

	var out *models.Profile
	err := s.guard(ctx, opRegister, func(ctx context.Context) error {
		return storeErr(opRegister, s.store.Atomic(ctx, []models.Identity{caller}, func(tx repository.Tx) error {
			p, err := tx.Get(ctx, caller)
			if err != nil {
				return err
			}
			if p.Registered {
				if s.ignoreRereg {
					out = p
					return nil
				}
				return apperrors.From(apperrors.ErrAlreadyRegistered).WithDetail("identity", caller.String())
			}

			now := s.now().UTC()
			p.Identity = caller
			p.Username = in.Username
			p.Email = in.Email
			p.PhoneNumber = in.PhoneNumber
			p.Bio = in.Bio
			p.Category = in.Category
			p.Registered = true
			p.Balance = p.BalanceOrZero()
			p.RegisteredAt = &now
			p.UpdatedAt = &now

			tx.Put(p)
			tx.Append(models.Entry{Kind: models.EntryRegister, From: caller, At: now})
			out = p
			return nil
		}))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("identity", caller.String()).Str("category", out.Category.String()).Msg("User registered")
	return out, nil
}

func (s *accountService) UpdateUserProfile(ctx context.Context, caller models.Identity, upd models.ProfileUpdate) (*models.Profile, error) {
	if err := validation.ValidateProfileFields(upd.Username, upd.Email, upd.PhoneNumber, upd.Bio); err != nil {
		return nil, validationErr(err)
	}

	var out *models.Profile
	err := s.guard(ctx, opUpdate, func(ctx context.Context) error {
		return storeErr(opUpdate, s.store.Atomic(ctx, []models.Identity{caller}, func(tx repository.Tx) error {
			p, err := tx.Get(ctx, caller)
			if err != nil {
				return err
			}
			if !p.Registered {
				return apperrors.From(apperrors.ErrNotRegistered).WithDetail("identity", caller.String())
			}

			now := s.now().UTC()
			p.Username = upd.Username
			p.Email = upd.Email
			p.PhoneNumber = upd.PhoneNumber
			p.Bio = upd.Bio
			p.UpdatedAt = &now

			tx.Put(p)
			tx.Append(models.Entry{Kind: models.EntryUpdate, From: caller, At: now})
			out = p
			return nil
		}))
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("identity", caller.String()).Msg("Profile updated")
	return out, nil
}

func (s *accountService) GetProfile(ctx context.Context, id models.Identity) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, storeErr("get_profile", err)
	}
	return p, nil
}

// DepositFunds pulls amount from the caller's token account into custody and
// credits the caller. The pull happens before the credit; if the credit then
// fails the pulled tokens are sent back.
func (s *accountService) DepositFunds(ctx context.Context, caller models.Identity, amount *big.Int) (*models.Profile, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	var out *models.Profile
	err := s.guard(ctx, opDeposit, func(ctx context.Context) error {
		p, err := s.store.GetProfile(ctx, caller)
		if err != nil {
			return storeErr(opDeposit, err)
		}
		if !p.Registered {
			return apperrors.From(apperrors.ErrUserNotRegistered).WithDetail("identity", caller.String())
		}

		if err := s.gateway.TransferFrom(ctx, caller, s.gateway.Custody(), amount); err != nil {
			s.log.Warn().Err(err).Str("identity", caller.String()).Str("amount", amount.String()).Msg("Token pull failed")
			return apperrors.Wrap(err, apperrors.ErrCodeTokenTransferFailed, apperrors.ErrTokenTransferFailed.Message)
		}

		err = s.store.Atomic(ctx, []models.Identity{caller}, func(tx repository.Tx) error {
			p, err := tx.Get(ctx, caller)
			if err != nil {
				return err
			}
			if !p.Registered {
				return apperrors.From(apperrors.ErrUserNotRegistered).WithDetail("identity", caller.String())
			}
			p.Balance = new(big.Int).Add(p.BalanceOrZero(), amount)

			tx.Put(p)
			tx.AddDeposited(amount)
			tx.Append(models.Entry{Kind: models.EntryDeposit, From: caller, Amount: new(big.Int).Set(amount), At: s.now().UTC()})
			out = p
			return nil
		})
		if err != nil {
			s.refund(ctx, caller, amount, err)
			return storeErr(opDeposit, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("identity", caller.String()).Str("amount", amount.String()).Msg("Deposit credited")
	return out, nil
}

func (s *accountService) refund(ctx context.Context, caller models.Identity, amount *big.Int, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()

	if err := s.gateway.Transfer(ctx, caller, amount); err != nil {
		s.log.Error().Err(err).AnErr("cause", cause).
			Str("identity", caller.String()).Str("amount", amount.String()).
			Msg("Deposit refund failed, manual reconciliation required")
		return
	}
	s.log.Warn().AnErr("cause", cause).Str("identity", caller.String()).Str("amount", amount.String()).Msg("Deposit refunded")
}

// TransferFunds moves amount between two internal balances. Checks run in a
// fixed order: caller, recipient, then funds. A self-transfer passes the same
// checks and leaves the balance unchanged.
func (s *accountService) TransferFunds(ctx context.Context, caller, recipient models.Identity, amount *big.Int) (*models.Profile, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}

	var out *models.Profile
	err := s.guard(ctx, opTransfer, func(ctx context.Context) error {
		ids := repository.Dedup([]models.Identity{caller, recipient})
		return storeErr(opTransfer, s.store.Atomic(ctx, ids, func(tx repository.Tx) error {
			from, err := tx.Get(ctx, caller)
			if err != nil {
				return err
			}
			if !from.Registered {
				return apperrors.From(apperrors.ErrUserNotRegistered).WithDetail("identity", caller.String())
			}
			to, err := tx.Get(ctx, recipient)
			if err != nil {
				return err
			}
			if !to.Registered {
				return apperrors.From(apperrors.ErrRecipientNotRegistered).WithDetail("recipient", recipient.String())
			}
			if from.BalanceOrZero().Cmp(amount) < 0 {
				return apperrors.From(apperrors.ErrInsufficientFunds).
					WithDetail("balance", from.BalanceOrZero().String()).
					WithDetail("amount", amount.String())
			}

			entry := models.Entry{Kind: models.EntryTransfer, From: caller, To: recipient, Amount: new(big.Int).Set(amount), At: s.now().UTC()}
			if caller == recipient {
				tx.Append(entry)
				out = from
				return nil
			}

			from.Balance = new(big.Int).Sub(from.BalanceOrZero(), amount)
			to.Balance = new(big.Int).Add(to.BalanceOrZero(), amount)
			tx.Put(from)
			tx.Put(to)
			tx.Append(entry)
			out = from
			return nil
		}))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("from", caller.String()).Str("to", recipient.String()).Str("amount", amount.String()).Msg("Transfer applied")
	return out, nil
}

func (s *accountService) Stats(ctx context.Context) (*models.Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, storeErr("stats", err)
	}
	return st, nil
}

func (s *accountService) Journal(ctx context.Context, limit int64) ([]models.Entry, error) {
	if limit <= 0 {
		return nil, apperrors.NewValidationError("limit", "must be positive")
	}
	entries, err := s.store.Journal(ctx, limit)
	if err != nil {
		return nil, storeErr("journal", err)
	}
	return entries, nil
}

// Audit checks that the balances of registered accounts add up to the total
// ever deposited. It runs under the guard so no operation lands mid-scan.
func (s *accountService) Audit(ctx context.Context) (*models.AuditReport, error) {
	var report *models.AuditReport
	err := s.guard(ctx, opAudit, func(ctx context.Context) error {
		st, err := s.store.Stats(ctx)
		if err != nil {
			return storeErr(opAudit, err)
		}

		sum := new(big.Int)
		var n int64
		err = s.store.ForEachRegistered(ctx, func(p *models.Profile) error {
			sum.Add(sum, p.BalanceOrZero())
			n++
			return nil
		})
		if err != nil {
			return storeErr(opAudit, err)
		}

		report = &models.AuditReport{
			Accounts:       n,
			BalanceSum:     sum,
			TotalDeposited: st.TotalDeposited,
			Consistent:     sum.Cmp(st.TotalDeposited) == 0,
			CheckedAt:      s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveAuditFailure()
		return nil, err
	}

	s.metrics.ObserveAudit(report.Consistent, report.Drift(), report.Accounts)
	if !report.Consistent {
		s.log.Error().
			Str("balance_sum", report.BalanceSum.String()).
			Str("total_deposited", report.TotalDeposited.String()).
			Msg("Ledger conservation violated")
	}
	return report, nil
}
