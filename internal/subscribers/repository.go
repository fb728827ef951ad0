package subscriber

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/listing"
)

// Repository persists newsletter subscribers.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *Repository) Create(ctx context.Context, sub *models.Subscriber) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.Email = normalizeEmail(sub.Email)
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := r.db.WithContext(ctx).First(&sub, "email = ?", normalizeEmail(email)).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *Repository) Save(ctx context.Context, sub *models.Subscriber) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// List pages subscribers for admins, searchable by email.
func (r *Repository) List(ctx context.Context, params listing.Params) ([]models.Subscriber, listing.Meta, error) {
	var rows []models.Subscriber
	query := r.db.WithContext(ctx).
		Model(&models.Subscriber{}).
		Order("created_at DESC")
	meta, err := listing.New(query, params).Search("email").Filter().Find(&rows)
	if err != nil {
		return nil, listing.Meta{}, err
	}
	return rows, meta, nil
}
