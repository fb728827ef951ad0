package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/internal/products"
	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Service exposes the product moderation queue.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*ReportDTO, error)
	List(ctx context.Context, params listing.Params) ([]ReportDTO, listing.Meta, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ReportDTO, error)
	Reply(ctx context.Context, id, adminID uuid.UUID, input ReplyInput) (*ReportDTO, error)
}

// CreateInput holds a new complaint.
type CreateInput struct {
	ProductID uuid.UUID
	Reason    string
	Details   string
}

// ReplyInput holds an admin resolution.
type ReplyInput struct {
	Message string
	Status  string
}

type service struct {
	repo        *Repository
	productRepo *product.Repository
	now         func() time.Time
}

// NewService constructs a report service instance.
func NewService(repo *Repository, productRepo *product.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, productRepo: productRepo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*ReportDTO, error) {
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	if _, err := s.productRepo.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	row := &models.ReportedProduct{
		ProductID:  input.ProductID,
		ReportedBy: userID,
		Reason:     input.Reason,
		Details:    input.Details,
		Status:     enums.ReportStatusPending,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating report")
	}
	return toDTO(row), nil
}

func (s *service) List(ctx context.Context, params listing.Params) ([]ReportDTO, listing.Meta, error) {
	rows, meta, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, listing.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reports")
	}
	return toDTOs(rows), meta, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ReportDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(row), nil
}

// Reply records the moderator's answer and moves the report out of pending.
func (s *service) Reply(ctx context.Context, id, adminID uuid.UUID, input ReplyInput) (*ReportDTO, error) {
	status, err := enums.ParseReportStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid report status")
	}
	if input.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reply message is required")
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	repliedAt := s.now().UTC()
	row.Status = status
	row.ReplyMessage = &input.Message
	row.RepliedBy = &adminID
	row.RepliedAt = &repliedAt
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replying to report")
	}
	return toDTO(row), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ReportedProduct, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading report")
	}
	return row, nil
}
