package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/joymart/joymart-backend/pkg/enums"
)

// User is a platform account. Soft deletion keeps the row for audit.
type User struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name                string           `gorm:"column:name;not null"`
	Email               string           `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash        string           `gorm:"column:password_hash;not null"`
	Role                enums.UserRole   `gorm:"column:role;type:text;not null;default:'user'"`
	Status              enums.UserStatus `gorm:"column:status;type:text;not null;default:'active'"`
	IsDeleted           bool             `gorm:"column:is_deleted;not null;default:false"`
	NeedsPasswordChange bool             `gorm:"column:needs_password_change;not null;default:false"`
	PasswordChangedAt   *time.Time       `gorm:"column:password_changed_at"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
