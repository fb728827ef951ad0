package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/joymart/joymart-backend/pkg/types"
)

// Profile extends a User with optional contact and display data.
type Profile struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;uniqueIndex;not null"`
	Phone     *string        `gorm:"column:phone"`
	AvatarURL *string        `gorm:"column:avatar_url"`
	Bio       *string        `gorm:"column:bio"`
	Address   *types.Address `gorm:"column:address;type:jsonb;serializer:json"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
