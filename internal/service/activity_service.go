package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finjar/internal/model"
	"finjar/internal/repository"
)

// ActivityService exposes the per-jar activity feed.
type ActivityService interface {
	ListForJar(ctx context.Context, owner *model.User, jarID uuid.UUID) ([]model.JarActivity, error)
}

type activityService struct {
	activityRepo repository.ActivityRepository
}

// NewActivityService creates a new activity service.
func NewActivityService(activityRepo repository.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

// ListForJar returns a jar's activity, newest first, scoped to the owner.
func (s *activityService) ListForJar(ctx context.Context, owner *model.User, jarID uuid.UUID) ([]model.JarActivity, error) {
	activities, err := s.activityRepo.FindByJarAndOwner(ctx, jarID, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return activities, nil
}
