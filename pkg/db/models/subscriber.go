package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a newsletter opt-in. Unsubscribe flips the flag instead of
// deleting, so repeat subscriptions stay idempotent.
type Subscriber struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	IsSubscribed bool      `gorm:"column:is_subscribed;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
