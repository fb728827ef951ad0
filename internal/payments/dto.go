package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	"github.com/joymart/joymart-backend/pkg/types"
)

// PaymentDTO is the order/payment record returned to clients.
type PaymentDTO struct {
	ID              uuid.UUID            `json:"id"`
	UserID          uuid.UUID            `json:"user_id"`
	TransactionID   string               `json:"transaction_id"`
	OrderStatus     enums.OrderStatus    `json:"order_status"`
	PaymentStatus   enums.PaymentStatus  `json:"payment_status"`
	PaymentMethod   enums.PaymentMethod  `json:"payment_method"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	Currency        string               `json:"currency"`
	ShippingAddress *types.Address       `json:"shipping_address,omitempty"`
	ContactInfo     *types.ContactInfo   `json:"contact_info,omitempty"`
	GatewayDetail   *types.GatewayDetail `json:"gateway_detail,omitempty"`
	TrackingInfo    *types.TrackingInfo  `json:"tracking_info,omitempty"`
	Items           []PaymentItemDTO     `json:"items"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// PaymentItemDTO is one frozen line inside a payment.
type PaymentItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InitiateResult is the response to a payment initiation.
type InitiateResult struct {
	TransactionID string              `json:"transactionId"`
	PaymentURL    string              `json:"paymentUrl,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
}

// SettleResult reports whether a validation or IPN settled the payment.
type SettleResult struct {
	Success bool `json:"success"`
}

func toDTO(m *models.Payment) *PaymentDTO {
	if m == nil {
		return nil
	}
	dto := &PaymentDTO{
		ID:              m.ID,
		UserID:          m.UserID,
		TransactionID:   m.TransactionID,
		OrderStatus:     m.OrderStatus,
		PaymentStatus:   m.PaymentStatus,
		PaymentMethod:   m.PaymentMethod,
		TotalAmount:     m.TotalAmount,
		Currency:        m.Currency,
		ShippingAddress: m.ShippingAddress,
		ContactInfo:     m.ContactInfo,
		GatewayDetail:   m.GatewayDetail,
		TrackingInfo:    m.TrackingInfo,
		Items:           make([]PaymentItemDTO, 0, len(m.Items)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for _, item := range m.Items {
		line := PaymentItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.Product != nil {
			line.Title = item.Product.Title
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}

func toDTOs(rows []models.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out
}
