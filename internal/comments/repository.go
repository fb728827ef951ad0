package comment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Repository persists product comments.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, row *models.ProductComment) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductComment, error) {
	var row models.ProductComment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Save(ctx context.Context, row *models.ProductComment) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProductComment{}, "id = ?", id).Error
}

// ListByProduct pages comments for one product, newest first by default.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, params listing.Params) ([]models.ProductComment, listing.Meta, error) {
	var rows []models.ProductComment
	query := r.db.WithContext(ctx).
		Model(&models.ProductComment{}).
		Where("product_id = ?", productID).
		Order("created_at DESC")
	meta, err := listing.New(query, params).Find(&rows)
	if err != nil {
		return nil, listing.Meta{}, err
	}
	return rows, meta, nil
}
