package subscriber

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Service exposes newsletter subscription operations.
type Service interface {
	Subscribe(ctx context.Context, email string) (*models.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context, params listing.Params) ([]models.Subscriber, listing.Meta, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a subscriber service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscriber repository required")
	}
	return &service{repo: repo}, nil
}

// Subscribe upserts the address. Repeat calls and re-subscriptions after an
// unsubscribe both succeed.
func (s *service) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if !existing.IsSubscribed {
			existing.IsSubscribed = true
			if err := s.repo.Save(ctx, existing); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resubscribing")
			}
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading subscriber")
	}

	created := &models.Subscriber{Email: email, IsSubscribed: true}
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating subscriber")
	}
	return created, nil
}

func (s *service) Unsubscribe(ctx context.Context, email string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subscriber not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading subscriber")
	}
	if !existing.IsSubscribed {
		return nil
	}
	existing.IsSubscribed = false
	if err := s.repo.Save(ctx, existing); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unsubscribing")
	}
	return nil
}

func (s *service) List(ctx context.Context, params listing.Params) ([]models.Subscriber, listing.Meta, error) {
	rows, meta, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, listing.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing subscribers")
	}
	return rows, meta, nil
}
