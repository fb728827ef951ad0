package booking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Repository persists bookings.
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

func (r *Repository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Product").First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindOpenCartRow returns the user's unclaimed row for the product, or
// gorm.ErrRecordNotFound. Open means no payment has claimed it and the row
// has not reached a terminal status, so a confirmed-but-unpaid row still
// absorbs further adds instead of spawning a duplicate.
func (r *Repository) FindOpenCartRow(ctx context.Context, productID, userID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ? AND order_id IS NULL AND order_status NOT IN ?",
			productID, userID,
			[]string{string(enums.OrderStatusCancelled), string(enums.OrderStatusDelivered)}).
		First(&booking).
		Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *Repository) Save(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Booking{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// FindManyForUser loads the given booking ids, scoped to one owner.
func (r *Repository) FindManyForUser(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ? AND user_id = ?", ids, userID).
		Find(&rows).
		Error
	return rows, err
}

// AssignOrder claims cart rows for a payment by stamping the transaction id
// into order_id. The update only touches rows that are still unclaimed, so a
// double claim comes back short on rows affected instead of overwriting the
// first payment's claim.
func (r *Repository) AssignOrder(ctx context.Context, ids []uuid.UUID, orderID string, values map[string]any) (int64, error) {
	values["order_id"] = orderID
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id IN ? AND order_id IS NULL", ids).
		Updates(values)
	return result.RowsAffected, result.Error
}

// UpdateByOrderID applies a fixed-value update to every booking claimed by the
// transaction. Fixed values keep the write idempotent under replays.
func (r *Repository) UpdateByOrderID(ctx context.Context, orderID string, values map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("order_id = ?", orderID).
		Updates(values).
		Error
}

func (r *Repository) ListAll(ctx context.Context, params listing.Params) ([]models.Booking, listing.Meta, error) {
	query := r.db.WithContext(ctx).Model(&models.Booking{}).Preload("Product").Preload("User")

	var rows []models.Booking
	meta, err := listing.New(query, params).
		Filter().
		Sort().
		Find(&rows)
	if err != nil {
		return nil, meta, err
	}
	return rows, meta, nil
}
