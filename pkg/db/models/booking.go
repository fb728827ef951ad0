package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/joymart/joymart-backend/pkg/enums"
)

// Booking ties one user to one product and quantity. A null OrderID marks a
// cart item; a payment claims rows by stamping its transaction id into
// order_id, so several bookings in one checkout share the same value.
type Booking struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index:idx_bookings_product_user"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:idx_bookings_product_user;index"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	OrderID       *string              `gorm:"column:order_id;index"`
	OrderStatus   enums.OrderStatus    `gorm:"column:order_status;type:text;not null;default:'pending';index"`
	PaymentStatus *enums.PaymentStatus `gorm:"column:payment_status;type:text"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	Product       *Product             `gorm:"foreignKey:ProductID"`
	User          *User                `gorm:"foreignKey:UserID"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
