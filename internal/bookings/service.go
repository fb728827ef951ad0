package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/joymart/joymart-backend/internal/products"
	"github.com/joymart/joymart-backend/pkg/db"
	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Service exposes cart and order-line operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*BookingDTO, error)
	UpdateStatus(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, bookingID uuid.UUID, next enums.OrderStatus) (*BookingDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, bookingID uuid.UUID) error
	GetByID(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, bookingID uuid.UUID) (*BookingDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]BookingDTO, error)
	ListAll(ctx context.Context, params listing.Params) ([]BookingDTO, listing.Meta, error)
}

// CreateInput holds the validated payload to add a product to the cart.
type CreateInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo        *Repository
	productRepo *product.Repository
	dbClient    *db.Client
}

// NewService constructs a booking service instance.
func NewService(repo *Repository, productRepo *product.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, productRepo: productRepo, dbClient: dbClient}, nil
}

// Create reserves stock and merges the request into the user's open cart row
// for the product, all inside one transaction. The conditional decrement is
// what makes two concurrent adds safe: the second one fails instead of
// driving stock negative.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*BookingDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var bookingID uuid.UUID
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		bookingRepo := s.repo.WithTx(tx)

		prod, err := productRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if prod.IsDeleted || !prod.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
		}

		if err := productRepo.DecrementStock(ctx, input.ProductID, input.Quantity, false); err != nil {
			return err
		}

		existing, err := bookingRepo.FindOpenCartRow(ctx, input.ProductID, userID)
		switch {
		case err == nil:
			existing.Quantity += input.Quantity
			if err := bookingRepo.Save(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart row")
			}
			bookingID = existing.ID
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := &models.Booking{
				ProductID:   input.ProductID,
				UserID:      userID,
				Quantity:    input.Quantity,
				OrderStatus: enums.OrderStatusPending,
			}
			if err := bookingRepo.Create(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating booking")
			}
			bookingID = row.ID
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart row")
		}
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, bookingID)
}

// UpdateStatus moves a booking along the fulfillment state machine. Admins go
// forward one step at a time; the owner may only cancel, and only while the
// booking is still pending or confirmed. Cancelling restores stock once.
func (s *service) UpdateStatus(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, bookingID uuid.UUID, next enums.OrderStatus) (*BookingDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		bookingRepo := s.repo.WithTx(tx)

		row, err := bookingRepo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading booking")
		}

		isOwner := row.UserID == actorID
		if !isOwner && !actorRole.IsPrivileged() {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		if !actorRole.IsPrivileged() && next != enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only cancellation is allowed")
		}

		if !row.OrderStatus.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move booking from %s to %s", row.OrderStatus, next)).
				WithDetails(map[string]any{"from": row.OrderStatus.String(), "to": next.String()})
		}

		if next == enums.OrderStatusCancelled {
			if err := s.productRepo.WithTx(tx).IncrementStock(ctx, row.ProductID, row.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restoring stock")
			}
		}

		row.OrderStatus = next
		row.Product = nil
		if err := bookingRepo.Save(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, bookingID)
}

// Delete removes a cart row, returning its reserved stock unless the booking
// was already cancelled (cancellation restored it).
func (s *service) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, bookingID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		bookingRepo := s.repo.WithTx(tx)

		row, err := bookingRepo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading booking")
		}
		if row.UserID != actorID && !actorRole.IsPrivileged() {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}

		if row.OrderStatus != enums.OrderStatusCancelled {
			if err := s.productRepo.WithTx(tx).IncrementStock(ctx, row.ProductID, row.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restoring stock")
			}
		}

		if err := bookingRepo.Delete(ctx, bookingID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting booking")
		}
		return nil
	})
}

func (s *service) GetByID(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, bookingID uuid.UUID) (*BookingDTO, error) {
	dto, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if dto.UserID != actorID && !actorRole.IsPrivileged() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	return dto, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]BookingDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bookings")
	}
	return toDTOs(rows), nil
}

func (s *service) ListAll(ctx context.Context, params listing.Params) ([]BookingDTO, listing.Meta, error) {
	rows, meta, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, meta, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bookings")
	}
	return toDTOs(rows), meta, nil
}

func (s *service) load(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	row, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading booking")
	}
	return toDTO(row), nil
}
