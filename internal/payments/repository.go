package payment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
)

// Repository persists payments and their line items.
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

// Create inserts the payment and its items in one go.
func (r *Repository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	for i := range payment.Items {
		if payment.Items[i].ID == uuid.Nil {
			payment.Items[i].ID = uuid.New()
		}
		payment.Items[i].PaymentID = payment.ID
	}
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *Repository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&payment, "transaction_id = ?", transactionID).
		Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByTransactionIDForUser scopes the lookup to one owner.
func (r *Repository) FindByTransactionIDForUser(ctx context.Context, transactionID string, userID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&payment, "transaction_id = ? AND user_id = ?", transactionID, userID).
		Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateByTransactionID applies a fixed-value update to every payment row
// carrying the transaction id. Struct updates route jsonb columns through the
// serializer; repeating the same update is a no-op, which keeps validation
// and IPN replays idempotent.
func (r *Repository) UpdateByTransactionID(ctx context.Context, transactionID string, values models.Payment) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("transaction_id = ?", transactionID).
		Updates(values).
		Error
}
