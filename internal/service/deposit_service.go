package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finjar/internal/auth"
	"finjar/internal/cache"
	apperrors "finjar/internal/errors"
	"finjar/internal/model"
	"finjar/internal/repository"
)

// DepositPatch carries the optional fields of a deposit update.
type DepositPatch struct {
	Amount      *decimal.Decimal
	Description *string
}

// DepositService handles deposit mutations. Every mutation locks the parent
// jar row and applies the deposit write and the balance delta inside one
// transaction, so concurrent mutations on the same jar serialize and no
// partially applied pair is ever visible.
type DepositService interface {
	AddDeposit(ctx context.Context, owner *model.User, jarID uuid.UUID, amount decimal.Decimal, description string) (*model.Deposit, error)
	UpdateDeposit(ctx context.Context, owner *model.User, depositID uuid.UUID, patch DepositPatch) (*model.Deposit, error)
	DeleteDeposit(ctx context.Context, owner *model.User, depositID uuid.UUID) error
	ListDeposits(ctx context.Context, owner *model.User, jarID *uuid.UUID) ([]model.Deposit, error)
}

type depositService struct {
	depositRepo repository.DepositRepository
	tx          repository.TxManager
	cache       *cache.Client
}

// NewDepositService creates a new deposit service.
func NewDepositService(depositRepo repository.DepositRepository, tx repository.TxManager, cache *cache.Client) DepositService {
	return &depositService{
		depositRepo: depositRepo,
		tx:          tx,
		cache:       cache,
	}
}

// AddDeposit appends a deposit and increments the jar balance atomically.
// A missing jar and a jar owned by someone else both report ErrJarNotFound.
func (s *depositService) AddDeposit(ctx context.Context, owner *model.User, jarID uuid.UUID, amount decimal.Decimal, description string) (*model.Deposit, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	deposit := &model.Deposit{
		ID:          uuid.New(),
		JarID:       jarID,
		UserID:      owner.ID,
		Amount:      amount,
		Description: description,
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repos) error {
		jar, err := r.Jars.FindByIDAndOwnerForUpdate(ctx, jarID, owner.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrJarNotFound
			}
			return fmt.Errorf("find jar: %w", err)
		}

		if err := r.Deposits.Create(ctx, deposit); err != nil {
			return fmt.Errorf("create deposit: %w", err)
		}
		if err := r.Jars.UpdateBalance(ctx, jar.ID, jar.CurrentAmount.Add(amount)); err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}
		return r.Activities.Create(ctx, &model.JarActivity{
			JarID:  jar.ID,
			UserID: owner.ID,
			Action: fmt.Sprintf("added %s to %q", amount.StringFixed(2), jar.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, jarCacheKey(jarID))
	return deposit, nil
}

// UpdateDeposit changes amount and/or description and applies the amount
// delta to the jar balance in the same transaction.
func (s *depositService) UpdateDeposit(ctx context.Context, owner *model.User, depositID uuid.UUID, patch DepositPatch) (*model.Deposit, error) {
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	var deposit *model.Deposit
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repos) error {
		var err error
		deposit, err = r.Deposits.FindByID(ctx, depositID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrDepositNotFound
			}
			return fmt.Errorf("find deposit: %w", err)
		}
		if err := auth.AssertOwner(owner, deposit); err != nil {
			return err
		}

		jar, err := r.Jars.FindByIDAndOwnerForUpdate(ctx, deposit.JarID, owner.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrJarNotFound
			}
			return fmt.Errorf("find jar: %w", err)
		}

		// The first read ran before the jar lock, so a concurrent mutation of
		// the same deposit may have committed since. Re-read under the lock
		// and take the delta from the committed amount.
		deposit, err = r.Deposits.FindByIDForUpdate(ctx, depositID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrDepositNotFound
			}
			return fmt.Errorf("find deposit: %w", err)
		}

		delta := decimal.Zero
		if patch.Amount != nil {
			delta = patch.Amount.Sub(deposit.Amount)
			deposit.Amount = *patch.Amount
		}
		if patch.Description != nil {
			deposit.Description = *patch.Description
		}

		if err := r.Deposits.Update(ctx, deposit); err != nil {
			return fmt.Errorf("update deposit: %w", err)
		}
		if !delta.IsZero() {
			if err := r.Jars.UpdateBalance(ctx, jar.ID, jar.CurrentAmount.Add(delta)); err != nil {
				return fmt.Errorf("adjust balance: %w", err)
			}
		}
		return r.Activities.Create(ctx, &model.JarActivity{
			JarID:  jar.ID,
			UserID: owner.ID,
			Action: fmt.Sprintf("updated a deposit in %q", jar.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, jarCacheKey(deposit.JarID))
	return deposit, nil
}

// DeleteDeposit removes a deposit and decrements the jar balance atomically.
func (s *depositService) DeleteDeposit(ctx context.Context, owner *model.User, depositID uuid.UUID) error {
	var jarID uuid.UUID
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repos) error {
		deposit, err := r.Deposits.FindByID(ctx, depositID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrDepositNotFound
			}
			return fmt.Errorf("find deposit: %w", err)
		}
		if err := auth.AssertOwner(owner, deposit); err != nil {
			return err
		}
		jarID = deposit.JarID

		jar, err := r.Jars.FindByIDAndOwnerForUpdate(ctx, deposit.JarID, owner.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrJarNotFound
			}
			return fmt.Errorf("find jar: %w", err)
		}

		// Re-read under the jar lock: a concurrent delete of the same deposit
		// may have committed between the first read and the lock, and its
		// amount must not be subtracted twice.
		deposit, err = r.Deposits.FindByIDForUpdate(ctx, depositID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrDepositNotFound
			}
			return fmt.Errorf("find deposit: %w", err)
		}

		if err := r.Deposits.Delete(ctx, deposit.ID); err != nil {
			return fmt.Errorf("delete deposit: %w", err)
		}
		if err := r.Jars.UpdateBalance(ctx, jar.ID, jar.CurrentAmount.Sub(deposit.Amount)); err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}
		return r.Activities.Create(ctx, &model.JarActivity{
			JarID:  jar.ID,
			UserID: owner.ID,
			Action: fmt.Sprintf("removed %s from %q", deposit.Amount.StringFixed(2), jar.Name),
		})
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, jarCacheKey(jarID))
	return nil
}

// ListDeposits lists the caller's deposits, optionally filtered to one jar.
// A filter naming a deleted or foreign jar yields an empty list.
func (s *depositService) ListDeposits(ctx context.Context, owner *model.User, jarID *uuid.UUID) ([]model.Deposit, error) {
	var (
		deposits []model.Deposit
		err      error
	)
	if jarID != nil {
		deposits, err = s.depositRepo.FindByJarAndOwner(ctx, *jarID, owner.ID)
	} else {
		deposits, err = s.depositRepo.FindByOwner(ctx, owner.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	return deposits, nil
}
