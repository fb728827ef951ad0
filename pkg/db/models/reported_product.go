package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/joymart/joymart-backend/pkg/enums"
)

// ReportedProduct is a user complaint queued for moderation.
type ReportedProduct struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID    uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	ReportedBy   uuid.UUID          `gorm:"column:reported_by;type:uuid;not null;index"`
	Reason       string             `gorm:"column:reason;not null"`
	Details      string             `gorm:"column:details;not null;default:''"`
	Status       enums.ReportStatus `gorm:"column:status;type:text;not null;default:'pending';index"`
	ReplyMessage *string            `gorm:"column:reply_message"`
	RepliedBy    *uuid.UUID         `gorm:"column:replied_by;type:uuid"`
	RepliedAt    *time.Time         `gorm:"column:replied_at"`
	Product      *Product           `gorm:"foreignKey:ProductID"`
	Reporter     *User              `gorm:"foreignKey:ReportedBy"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
