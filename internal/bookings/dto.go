package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
)

// BookingDTO is the cart/order line returned to clients, with a product
// snapshot and the computed line total.
type BookingDTO struct {
	ID            uuid.UUID            `json:"id"`
	ProductID     uuid.UUID            `json:"product_id"`
	UserID        uuid.UUID            `json:"user_id"`
	Quantity      int                  `json:"quantity"`
	OrderID       *string              `json:"order_id,omitempty"`
	OrderStatus   enums.OrderStatus    `json:"order_status"`
	PaymentStatus *enums.PaymentStatus `json:"payment_status,omitempty"`
	PaymentMethod *enums.PaymentMethod `json:"payment_method,omitempty"`
	Product       *ProductSnapshot     `json:"product,omitempty"`
	LineTotal     decimal.Decimal      `json:"line_total"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ProductSnapshot is the slice of product data a cart line needs.
type ProductSnapshot struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Thumbnail *string         `json:"thumbnail,omitempty"`
	IsActive  bool            `json:"is_active"`
	Stock     int             `json:"stock"`
}

func toDTO(m *models.Booking) *BookingDTO {
	if m == nil {
		return nil
	}
	dto := &BookingDTO{
		ID:            m.ID,
		ProductID:     m.ProductID,
		UserID:        m.UserID,
		Quantity:      m.Quantity,
		OrderID:       m.OrderID,
		OrderStatus:   m.OrderStatus,
		PaymentStatus: m.PaymentStatus,
		PaymentMethod: m.PaymentMethod,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.Product != nil {
		dto.Product = &ProductSnapshot{
			ID:        m.Product.ID,
			Title:     m.Product.Title,
			Price:     m.Product.Price,
			Thumbnail: m.Product.Thumbnail,
			IsActive:  m.Product.IsActive,
			Stock:     m.Product.Stock,
		}
		dto.LineTotal = m.Product.Price.Mul(decimal.NewFromInt(int64(m.Quantity)))
	}
	return dto
}

func toDTOs(rows []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out
}
