package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finjar/internal/model"
)

// JarRepository defines jar persistence operations. Finders are owner-scoped:
// a jar that exists but belongs to another user behaves like a missing jar.
type JarRepository interface {
	Create(ctx context.Context, jar *model.Jar) error
	Update(ctx context.Context, jar *model.Jar) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Jar, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Jar, error)
	FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*model.Jar, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type jarRepository struct {
	db *gorm.DB
}

// NewJarRepository creates a new jar repository.
func NewJarRepository(db *gorm.DB) JarRepository {
	return &jarRepository{db: db}
}

// Create creates a new jar.
func (r *jarRepository) Create(ctx context.Context, jar *model.Jar) error {
	return r.db.WithContext(ctx).Create(jar).Error
}

// Update updates an existing jar.
func (r *jarRepository) Update(ctx context.Context, jar *model.Jar) error {
	return r.db.WithContext(ctx).Save(jar).Error
}

// FindByOwner lists all jars belonging to a user. The slice starts non-nil
// so a user with no jars serializes as [] and not null.
func (r *jarRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Jar, error) {
	jars := make([]model.Jar, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at").Find(&jars).Error; err != nil {
		return nil, err
	}
	return jars, nil
}

// FindByIDAndOwner finds a jar by ID scoped to its owner.
func (r *jarRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Jar, error) {
	var jar model.Jar
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&jar).Error; err != nil {
		return nil, err
	}
	return &jar, nil
}

// FindByIDAndOwnerForUpdate finds a jar with a row-level lock. Must run inside
// a transaction; the lock serializes concurrent balance mutations on the jar.
func (r *jarRepository) FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*model.Jar, error) {
	var jar model.Jar
	if err := r.db.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("id = ? AND user_id = ?", id, ownerID).First(&jar).Error; err != nil {
		return nil, err
	}
	return &jar, nil
}

// UpdateBalance writes the jar's derived balance.
func (r *jarRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Jar{}).
		Where("id = ?", id).
		Update("current_amount", balance).Error
}

// Delete removes a jar row.
func (r *jarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Jar{}).Error
}
