package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"finjar/internal/model"
)

// ActivityRepository defines jar activity persistence operations.
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.JarActivity) error
	FindByJarAndOwner(ctx context.Context, jarID, ownerID uuid.UUID) ([]model.JarActivity, error)
	DeleteByJar(ctx context.Context, jarID uuid.UUID) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Create appends an activity entry.
func (r *activityRepository) Create(ctx context.Context, activity *model.JarActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// FindByJarAndOwner lists a jar's activity scoped to the owner, newest first.
// The slice starts non-nil so an empty feed serializes as [] and not null.
func (r *activityRepository) FindByJarAndOwner(ctx context.Context, jarID, ownerID uuid.UUID) ([]model.JarActivity, error) {
	activities := make([]model.JarActivity, 0)
	if err := r.db.WithContext(ctx).Where("jar_id = ? AND user_id = ?", jarID, ownerID).
		Order("created_at DESC").Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// DeleteByJar removes all activity entries of a jar.
func (r *activityRepository) DeleteByJar(ctx context.Context, jarID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("jar_id = ?", jarID).Delete(&model.JarActivity{}).Error
}
