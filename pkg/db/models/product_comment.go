package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductComment is a public remark on a product. The author's name and email
// are snapshotted at creation so the thread survives account changes.
type ProductComment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	UserName  string    `gorm:"column:user_name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   string    `gorm:"column:comment;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
