package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/internal/products"
	"github.com/joymart/joymart-backend/pkg/db"
	"github.com/joymart/joymart-backend/pkg/db/models"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Service exposes review operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*ReviewDTO, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params listing.Params) ([]ReviewDTO, listing.Meta, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ReviewDTO, error)
	Update(ctx context.Context, id, userID uuid.UUID, input UpdateInput) (*ReviewDTO, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// CreateInput holds a new review submission.
type CreateInput struct {
	ProductID uuid.UUID
	Rating    int
	Comment   string
}

// UpdateInput holds optional review mutations.
type UpdateInput struct {
	Rating  *int
	Comment *string
}

type service struct {
	repo        *Repository
	productRepo *product.Repository
	dbClient    *db.Client
}

// NewService constructs a review service instance.
func NewService(repo *Repository, productRepo *product.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, productRepo: productRepo, dbClient: dbClient}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	target, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if target.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	row := &models.Review{
		ProductID: input.ProductID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating review")
		}
		return s.refreshStats(ctx, tx, input.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(row), nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, params listing.Params) ([]ReviewDTO, listing.Meta, error) {
	rows, meta, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, listing.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reviews")
	}
	return toDTOs(rows), meta, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ReviewDTO, error) {
	row, err := s.loadReview(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(row), nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, input UpdateInput) (*ReviewDTO, error) {
	row, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
		}
		row.Rating = *input.Rating
	}
	if input.Comment != nil {
		row.Comment = *input.Comment
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating review")
		}
		return s.refreshStats(ctx, tx, row.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(row), nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	row, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, row.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting review")
		}
		return s.refreshStats(ctx, tx, row.ProductID)
	})
}

func (s *service) loadReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading review")
	}
	return row, nil
}

// loadOwned hides non-owned rows as not-found so ownership cannot be probed.
func (s *service) loadOwned(ctx context.Context, id, userID uuid.UUID) (*models.Review, error) {
	row, err := s.loadReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return row, nil
}

func (s *service) refreshStats(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	average, count, err := s.repo.WithTx(tx).Stats(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing review stats")
	}
	if err := s.productRepo.WithTx(tx).ApplyReviewStats(ctx, productID, average, count); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "applying review stats")
	}
	return nil
}
