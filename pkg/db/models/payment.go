package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joymart/joymart-backend/pkg/enums"
	"github.com/joymart/joymart-backend/pkg/types"
)

// Payment aggregates one purchase attempt. TransactionID correlates the local
// record with the gateway; every status update keys on it.
type Payment struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	TransactionID   string               `gorm:"column:transaction_id;uniqueIndex;not null"`
	OrderStatus     enums.OrderStatus    `gorm:"column:order_status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null"`
	TotalAmount     decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency        string               `gorm:"column:currency;not null;default:'BDT'"`
	ShippingAddress *types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ContactInfo     *types.ContactInfo   `gorm:"column:contact_info;type:jsonb;serializer:json"`
	GatewayDetail   *types.GatewayDetail `gorm:"column:gateway_detail;type:jsonb;serializer:json"`
	TrackingInfo    *types.TrackingInfo  `gorm:"column:tracking_info;type:jsonb;serializer:json"`
	Items           []PaymentItem        `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
	User            *User                `gorm:"foreignKey:UserID"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
