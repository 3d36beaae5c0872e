package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finjar/internal/model"
)

// DepositRepository defines deposit persistence operations.
type DepositRepository interface {
	Create(ctx context.Context, deposit *model.Deposit) error
	Update(ctx context.Context, deposit *model.Deposit) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Deposit, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Deposit, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Deposit, error)
	FindByJarAndOwner(ctx context.Context, jarID, ownerID uuid.UUID) ([]model.Deposit, error)
	SumByJar(ctx context.Context, jarID uuid.UUID) (decimal.Decimal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByJar(ctx context.Context, jarID uuid.UUID) error
}

type depositRepository struct {
	db *gorm.DB
}

// NewDepositRepository creates a new deposit repository.
func NewDepositRepository(db *gorm.DB) DepositRepository {
	return &depositRepository{db: db}
}

// Create creates a new deposit.
func (r *depositRepository) Create(ctx context.Context, deposit *model.Deposit) error {
	return r.db.WithContext(ctx).Create(deposit).Error
}

// Update updates an existing deposit.
func (r *depositRepository) Update(ctx context.Context, deposit *model.Deposit) error {
	return r.db.WithContext(ctx).Save(deposit).Error
}

// FindByID finds a deposit by ID.
func (r *depositRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	var deposit model.Deposit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&deposit).Error; err != nil {
		return nil, err
	}
	return &deposit, nil
}

// FindByIDForUpdate finds a deposit with a row-level lock. Must run inside a
// transaction, after the parent jar row is locked, so a concurrent mutation
// of the same deposit reads the committed amount and not a stale snapshot.
func (r *depositRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	var deposit model.Deposit
	if err := r.db.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("id = ?", id).First(&deposit).Error; err != nil {
		return nil, err
	}
	return &deposit, nil
}

// FindByOwner lists all deposits belonging to a user, newest first.
func (r *depositRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Deposit, error) {
	deposits := make([]model.Deposit, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).
		Order("created_at DESC").Find(&deposits).Error; err != nil {
		return nil, err
	}
	return deposits, nil
}

// FindByJarAndOwner lists a jar's deposits scoped to the owner, newest first.
// The slice starts non-nil so an empty result serializes as [] and not null.
func (r *depositRepository) FindByJarAndOwner(ctx context.Context, jarID, ownerID uuid.UUID) ([]model.Deposit, error) {
	deposits := make([]model.Deposit, 0)
	if err := r.db.WithContext(ctx).Where("jar_id = ? AND user_id = ?", jarID, ownerID).
		Order("created_at DESC").Find(&deposits).Error; err != nil {
		return nil, err
	}
	return deposits, nil
}

// SumByJar computes the sum of all live deposit amounts for a jar.
func (r *depositRepository) SumByJar(ctx context.Context, jarID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Deposit{}).
		Where("jar_id = ?", jarID).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// Delete removes a deposit row.
func (r *depositRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Deposit{}).Error
}

// DeleteByJar removes every deposit of a jar. Used by the cascade delete,
// which must clear deposits before the jar row itself goes away.
func (r *depositRepository) DeleteByJar(ctx context.Context, jarID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("jar_id = ?", jarID).Delete(&model.Deposit{}).Error
}
