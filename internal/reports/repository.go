package report

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Repository persists product reports.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, report *models.ReportedProduct) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReportedProduct, error) {
	var report models.ReportedProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Reporter").
		First(&report, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *Repository) Save(ctx context.Context, report *models.ReportedProduct) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// List pages reports for moderators, filterable by status.
func (r *Repository) List(ctx context.Context, params listing.Params) ([]models.ReportedProduct, listing.Meta, error) {
	var rows []models.ReportedProduct
	query := r.db.WithContext(ctx).
		Model(&models.ReportedProduct{}).
		Preload("Product").
		Preload("Reporter").
		Order("created_at DESC")
	meta, err := listing.New(query, params).Filter().Find(&rows)
	if err != nil {
		return nil, listing.Meta{}, err
	}
	return rows, meta, nil
}
