package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finjar/internal/cache"
	apperrors "finjar/internal/errors"
	"finjar/internal/model"
	"finjar/internal/repository"
)

const jarCacheTTL = 5 * time.Minute

// JarPatch carries the optional fields of a jar update; only non-nil fields
// are applied.
type JarPatch struct {
	Name         *string
	TargetAmount *decimal.Decimal
	Description  *string
}

// JarService handles jar lifecycle operations. Deposit-driven balance changes
// live in DepositService; here the balance is only initialized, recomputed by
// Recalculate, or removed with the jar.
type JarService interface {
	CreateJar(ctx context.Context, owner *model.User, name string, target decimal.Decimal, description string) (*model.Jar, error)
	ListJars(ctx context.Context, owner *model.User) ([]model.Jar, error)
	GetJar(ctx context.Context, owner *model.User, jarID uuid.UUID) (*model.Jar, error)
	UpdateJar(ctx context.Context, owner *model.User, jarID uuid.UUID, patch JarPatch) (*model.Jar, error)
	DeleteJar(ctx context.Context, owner *model.User, jarID uuid.UUID) error
	Recalculate(ctx context.Context, owner *model.User, jarID uuid.UUID) (*model.Jar, error)
}

type jarService struct {
	jarRepo repository.JarRepository
	tx      repository.TxManager
	cache   *cache.Client
}

// NewJarService creates a new jar service.
func NewJarService(jarRepo repository.JarRepository, tx repository.TxManager, cache *cache.Client) JarService {
	return &jarService{
		jarRepo: jarRepo,
		tx:      tx,
		cache:   cache,
	}
}

func jarCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("jar:%s", id.String())
}

// CreateJar creates a jar with a zero balance.
func (s *jarService) CreateJar(ctx context.Context, owner *model.User, name string, target decimal.Decimal, description string) (*model.Jar, error) {
	if target.IsNegative() {
		return nil, apperrors.ErrInvalidAmount
	}

	jar := &model.Jar{
		ID:            uuid.New(),
		UserID:        owner.ID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Description:   description,
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repos) error {
		if err := r.Jars.Create(ctx, jar); err != nil {
			return fmt.Errorf("create jar: %w", err)
		}
		return r.Activities.Create(ctx, &model.JarActivity{
			JarID:  jar.ID,
			UserID: owner.ID,
			Action: fmt.Sprintf("created jar %q with target %s", jar.Name, jar.TargetAmount.StringFixed(2)),
		})
	})
	if err != nil {
		return nil, err
	}
	return jar, nil
}

// ListJars lists the caller's jars.
func (s *jarService) ListJars(ctx context.Context, owner *model.User) ([]model.Jar, error) {
	jars, err := s.jarRepo.FindByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list jars: %w", err)
	}
	return jars, nil
}

// GetJar retrieves one of the caller's jars, with caching.
func (s *jarService) GetJar(ctx context.Context, owner *model.User, jarID uuid.UUID) (*model.Jar, error) {
	if data, _ := s.cache.Get(ctx, jarCacheKey(jarID)); data != nil {
		var cached model.Jar
		if err := json.Unmarshal(data, &cached); err == nil && cached.OwnedBy(owner.ID) {
			return &cached, nil
		}
	}

	jar, err := s.jarRepo.FindByIDAndOwner(ctx, jarID, owner.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrJarNotFound
		}
		return nil, fmt.Errorf("find jar: %w", err)
	}

	if payload, err := json.Marshal(jar); err == nil {
		_ = s.cache.Set(ctx, jarCacheKey(jarID), payload, jarCacheTTL)
	}
	return jar, nil
}

// UpdateJar applies the supplied fields. Changing the target never touches
// the derived balance; only the reported progress moves.
func (s *jarService) UpdateJar(ctx context.Context, owner *model.User, jarID uuid.UUID, patch JarPatch) (*model.Jar, error) {
	if patch.TargetAmount != nil && patch.TargetAmount.IsNegative() {
		return nil, apperrors.ErrInvalidAmount
	}

	var jar *model.Jar
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repos) error {
		var err error
		jar, err = r.Jars.FindByIDAndOwnerForUpdate(ctx, jarID, owner.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrJarNotFound
			}
			return fmt.Errorf("find jar: %w", err)
		}

		if patch.Name != nil {
			jar.Name = *patch.Name
		}
		if patch.TargetAmount != nil {
			jar.TargetAmount = *patch.TargetAmount
		}
		if patch.Description != nil {
			jar.Description = *patch.Description
		}

		if err := r.Jars.Update(ctx, jar); err != nil {
			return fmt.Errorf("update jar: %w", err)
		}
		return r.Activities.Create(ctx, &model.JarActivity{
			JarID:  jar.ID,
			UserID: owner.ID,
			Action: fmt.Sprintf("updated jar %q", jar.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, jarCacheKey(jarID))
	return jar, nil
}

// DeleteJar removes a jar and everything hanging off it. Deposits and
// activity rows are cleared before the jar row so a retry after a partial
// failure re-runs the cleanup and never leaves orphaned deposits behind a
// missing jar.
func (s *jarService) DeleteJar(ctx context.Context, owner *model.User, jarID uuid.UUID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repos) error {
		jar, err := r.Jars.FindByIDAndOwnerForUpdate(ctx, jarID, owner.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrJarNotFound
			}
			return fmt.Errorf("find jar: %w", err)
		}

		if err := r.Activities.DeleteByJar(ctx, jar.ID); err != nil {
			return fmt.Errorf("delete jar activity: %w", err)
		}
		if err := r.Deposits.DeleteByJar(ctx, jar.ID); err != nil {
			return fmt.Errorf("delete jar deposits: %w", err)
		}
		if err := r.Jars.Delete(ctx, jar.ID); err != nil {
			return fmt.Errorf("delete jar: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, jarCacheKey(jarID))
	return nil
}

// Recalculate recomputes the balance from scratch as the sum of the jar's
// live deposits. Idempotent; intended as a drift repair.
func (s *jarService) Recalculate(ctx context.Context, owner *model.User, jarID uuid.UUID) (*model.Jar, error) {
	var jar *model.Jar
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, r *repository.Repos) error {
		var err error
		jar, err = r.Jars.FindByIDAndOwnerForUpdate(ctx, jarID, owner.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrJarNotFound
			}
			return fmt.Errorf("find jar: %w", err)
		}

		sum, err := r.Deposits.SumByJar(ctx, jar.ID)
		if err != nil {
			return fmt.Errorf("sum deposits: %w", err)
		}
		if err := r.Jars.UpdateBalance(ctx, jar.ID, sum); err != nil {
			return fmt.Errorf("write balance: %w", err)
		}
		jar.CurrentAmount = sum
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, jarCacheKey(jarID))
	return jar, nil
}
