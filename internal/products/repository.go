package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// searchableFields are the columns the list endpoint matches a search term against.
var searchableFields = []string{"title", "short_description", "description"}

// View selects which slice of the catalog a list query can see.
type View int

const (
	// ViewPublic shows only purchasable products.
	ViewPublic View = iota
	// ViewSeller shows one seller's products, deleted included.
	ViewSeller
	// ViewAdmin shows every non-deleted product.
	ViewAdmin
	// ViewAll shows everything, soft-deleted rows included.
	ViewAll
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the product, assigning an id when the caller did not.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads the product with its category.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Save persists the full product row.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Updates applies a partial column update.
func (r *Repository) Updates(ctx context.Context, id uuid.UUID, values map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(values).Error
}

// HardDelete removes the row permanently.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List applies the query-shaping utility over the requested catalog view.
func (r *Repository) List(ctx context.Context, view View, sellerID uuid.UUID, params listing.Params) ([]models.Product, listing.Meta, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Category")

	switch view {
	case ViewPublic:
		query = query.Where("is_active = ? AND is_deleted = ?", true, false)
	case ViewSeller:
		query = query.Where("seller_id = ?", sellerID)
	case ViewAdmin:
		query = query.Where("is_deleted = ?", false)
	case ViewAll:
	}

	var rows []models.Product
	meta, err := listing.New(query, params).
		Search(searchableFields...).
		Filter().
		Sort().
		Select().
		Find(&rows)
	if err != nil {
		return nil, meta, err
	}
	return rows, meta, nil
}

// DecrementStock subtracts qty in a single conditional UPDATE. The guard
// `stock >= qty` makes concurrent decrements safe; zero rows affected means
// the product is gone, retired, or short on stock. Hitting zero flips
// is_active off in the same statement, and retire additionally soft-deletes
// the row.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int, retire bool) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	updates := map[string]any{
		"stock":     gorm.Expr("stock - ?", qty),
		"is_active": gorm.Expr("CASE WHEN stock - ? <= 0 THEN ? ELSE is_active END", qty, false),
	}
	if retire {
		updates["is_deleted"] = gorm.Expr("CASE WHEN stock - ? <= 0 THEN ? ELSE is_deleted END", qty, true)
	}

	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_deleted = ? AND stock >= ?", id, false, qty).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
	}
	return nil
}

// IncrementStock returns qty units to the shelf and reactivates the listing.
func (r *Repository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":     gorm.Expr("stock + ?", qty),
			"is_active": true,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyReviewStats refreshes the denormalized rating columns.
func (r *Repository) ApplyReviewStats(ctx context.Context, id uuid.UUID, average float64, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"rating_average": average, "rating_count": count}).
		Error
}
