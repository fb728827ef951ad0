package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/joymart/joymart-backend/internal/products"
	user "github.com/joymart/joymart-backend/internal/users"
	"github.com/joymart/joymart-backend/pkg/db/models"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Service exposes product comment operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*CommentDTO, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params listing.Params) ([]CommentDTO, listing.Meta, error)
	Update(ctx context.Context, id, userID uuid.UUID, input UpdateInput) (*CommentDTO, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// CreateInput holds a new comment submission.
type CreateInput struct {
	ProductID uuid.UUID
	Rating    int
	Comment   string
}

// UpdateInput holds optional comment mutations.
type UpdateInput struct {
	Rating  *int
	Comment *string
}

type service struct {
	repo        *Repository
	productRepo *product.Repository
	userRepo    *user.Repository
}

// NewService constructs a comment service instance.
func NewService(repo *Repository, productRepo *product.Repository, userRepo *user.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("comment repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, productRepo: productRepo, userRepo: userRepo}, nil
}

// Create records a comment, snapshotting the author's name and email so the
// thread keeps its attribution even if the account changes later.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*CommentDTO, error) {
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

	author, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	row := &models.ProductComment{
		ProductID: input.ProductID,
		UserID:    userID,
		UserName:  author.Name,
		Email:     author.Email,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating comment")
	}
	return toDTO(row), nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, params listing.Params) ([]CommentDTO, listing.Meta, error) {
	rows, meta, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, listing.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing comments")
	}
	return toDTOs(rows), meta, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, input UpdateInput) (*CommentDTO, error) {
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

	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating comment")
	}
	return toDTO(row), nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	row, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting comment")
	}
	return nil
}

// loadOwned hides non-owned rows as not-found so ownership cannot be probed.
func (s *service) loadOwned(ctx context.Context, id, userID uuid.UUID) (*models.ProductComment, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading comment")
	}
	if row.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}
	return row, nil
}
