package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a seller listing with live stock. Stock never drops below zero:
// every decrement is a conditional UPDATE guarded by `stock >= qty`.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SellerID           uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	CategoryID         uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	Title              string          `gorm:"column:title;not null"`
	ShortTitle         string          `gorm:"column:short_title;not null;default:''"`
	Description        string          `gorm:"column:description;not null"`
	ShortDescription   string          `gorm:"column:short_description;not null;default:''"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice      decimal.Decimal `gorm:"column:original_price;type:numeric(12,2);not null;default:0"`
	DiscountPercentage int             `gorm:"column:discount_percentage;not null;default:0"`
	Stock              int             `gorm:"column:stock;not null;default:0"`
	LowStockThreshold  int             `gorm:"column:low_stock_threshold;not null;default:5"`
	Images             []string        `gorm:"column:images;type:jsonb;serializer:json"`
	Thumbnail          *string         `gorm:"column:thumbnail"`
	Featured           bool            `gorm:"column:featured;not null;default:false"`
	RatingAverage      float64         `gorm:"column:rating_average;not null;default:0"`
	RatingCount        int             `gorm:"column:rating_count;not null;default:0"`
	// no gorm default here: GORM would omit a false value on insert and let
	// the column default flip a zero-stock product back to active
	IsActive           bool            `gorm:"column:is_active;not null"`
	IsDeleted          bool            `gorm:"column:is_deleted;not null;default:false"`
	Category           *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
