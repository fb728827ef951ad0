package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, input UpdateInput) (*ProductDTO, error)
	SoftDelete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error
	HardDelete(ctx context.Context, actorRole enums.UserRole, productID uuid.UUID) error
	GetByID(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListInput) ([]ProductDTO, listing.Meta, error)
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	CategoryID        uuid.UUID
	Title             string
	ShortTitle        string
	Description       string
	ShortDescription  string
	Price             decimal.Decimal
	OriginalPrice     decimal.Decimal
	Stock             int
	LowStockThreshold *int
	Images            []string
	Thumbnail         *string
	Featured          bool
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	CategoryID        *uuid.UUID
	Title             *string
	ShortTitle        *string
	Description       *string
	ShortDescription  *string
	Price             *decimal.Decimal
	OriginalPrice     *decimal.Decimal
	Stock             *int
	LowStockThreshold *int
	Images            *[]string
	Thumbnail         *string
	Featured          *bool
	IsActive          *bool
}

// ListInput selects the catalog view plus the shaping parameters.
type ListInput struct {
	View     View
	SellerID uuid.UUID
	Params   listing.Params
}

type categoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo         *Repository
	categoryRepo categoryLoader
}

// NewService constructs a product service instance.
func NewService(repo *Repository, categoryRepo categoryLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categoryRepo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo, categoryRepo: categoryRepo}, nil
}

func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateInput) (*ProductDTO, error) {
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
	}

	original := input.OriginalPrice
	if original.IsZero() {
		original = input.Price
	}

	product := &models.Product{
		SellerID:           sellerID,
		CategoryID:         input.CategoryID,
		Title:              input.Title,
		ShortTitle:         input.ShortTitle,
		Description:        input.Description,
		ShortDescription:   input.ShortDescription,
		Price:              input.Price,
		OriginalPrice:      original,
		DiscountPercentage: discountPercent(input.Price, original),
		Stock:              input.Stock,
		LowStockThreshold:  5,
		Images:             input.Images,
		Thumbnail:          input.Thumbnail,
		Featured:           input.Featured,
		IsActive:           input.Stock > 0,
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return s.GetByID(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, err := s.loadForWrite(ctx, actorID, actorRole, productID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
		}
		product.CategoryID = *input.CategoryID
	}
	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.ShortTitle != nil {
		product.ShortTitle = *input.ShortTitle
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.ShortDescription != nil {
		product.ShortDescription = *input.ShortDescription
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = *input.OriginalPrice
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
		product.IsActive = *input.Stock > 0
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.Images != nil {
		product.Images = *input.Images
	}
	if input.Thumbnail != nil {
		product.Thumbnail = input.Thumbnail
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.DiscountPercentage = discountPercent(product.Price, product.OriginalPrice)
	product.Category = nil

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return s.GetByID(ctx, product.ID)
}

func (s *service) SoftDelete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error {
	if _, err := s.loadForWrite(ctx, actorID, actorRole, productID); err != nil {
		return err
	}
	if err := s.repo.Updates(ctx, productID, map[string]any{"is_deleted": true, "is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func (s *service) HardDelete(ctx context.Context, actorRole enums.UserRole, productID uuid.UUID) error {
	if actorRole != enums.UserRoleSuperAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only a super admin may permanently delete a product")
	}
	if err := s.repo.HardDelete(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return toDTO(product), nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]ProductDTO, listing.Meta, error) {
	rows, meta, err := s.repo.List(ctx, input.View, input.SellerID, input.Params)
	if err != nil {
		return nil, meta, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return toDTOs(rows), meta, nil
}

// loadForWrite enforces ownership: sellers touch only their own listings,
// admins and super admins touch any.
func (s *service) loadForWrite(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !actorRole.IsPrivileged() && product.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}
	return product, nil
}

func discountPercent(price, original decimal.Decimal) int {
	if original.IsZero() || original.LessThanOrEqual(price) {
		return 0
	}
	percent := original.Sub(price).Div(original).Mul(decimal.NewFromInt(100))
	return int(percent.Round(0).IntPart())
}
