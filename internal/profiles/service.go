package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/types"
)

// Service exposes profile operations, always scoped to the calling user.
type Service interface {
	GetMine(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateMine(ctx context.Context, userID uuid.UUID, input UpdateInput) (*models.Profile, error)
}

// UpdateInput holds optional profile mutations.
type UpdateInput struct {
	Phone     *string
	AvatarURL *string
	Bio       *string
	Address   *types.Address
}

type service struct {
	repo *Repository
}

// NewService constructs a profile service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

// GetMine returns the caller's profile, creating an empty one on first access.
func (s *service) GetMine(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	existing, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading profile")
	}

	created := &models.Profile{UserID: userID}
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating profile")
	}
	return created, nil
}

func (s *service) UpdateMine(ctx context.Context, userID uuid.UUID, input UpdateInput) (*models.Profile, error) {
	existing, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Phone != nil {
		existing.Phone = input.Phone
	}
	if input.AvatarURL != nil {
		existing.AvatarURL = input.AvatarURL
	}
	if input.Bio != nil {
		existing.Bio = input.Bio
	}
	if input.Address != nil {
		existing.Address = input.Address
	}

	if err := s.repo.Save(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating profile")
	}
	return existing, nil
}
