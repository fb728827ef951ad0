package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joymart/joymart-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID                 uuid.UUID       `json:"id"`
	SellerID           uuid.UUID       `json:"seller_id"`
	CategoryID         uuid.UUID       `json:"category_id"`
	CategoryName       string          `json:"category_name,omitempty"`
	Title              string          `json:"title"`
	ShortTitle         string          `json:"short_title,omitempty"`
	Description        string          `json:"description"`
	ShortDescription   string          `json:"short_description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountPercentage int             `json:"discount_percentage"`
	Stock              int             `json:"stock"`
	LowStockThreshold  int             `json:"low_stock_threshold"`
	Images             []string        `json:"images,omitempty"`
	Thumbnail          *string         `json:"thumbnail,omitempty"`
	Featured           bool            `json:"featured"`
	RatingAverage      float64         `json:"rating_average"`
	RatingCount        int             `json:"rating_count"`
	IsActive           bool            `json:"is_active"`
	IsDeleted          bool            `json:"is_deleted"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func toDTO(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:                 m.ID,
		SellerID:           m.SellerID,
		CategoryID:         m.CategoryID,
		Title:              m.Title,
		ShortTitle:         m.ShortTitle,
		Description:        m.Description,
		ShortDescription:   m.ShortDescription,
		Price:              m.Price,
		OriginalPrice:      m.OriginalPrice,
		DiscountPercentage: m.DiscountPercentage,
		Stock:              m.Stock,
		LowStockThreshold:  m.LowStockThreshold,
		Images:             m.Images,
		Thumbnail:          m.Thumbnail,
		Featured:           m.Featured,
		RatingAverage:      m.RatingAverage,
		RatingCount:        m.RatingCount,
		IsActive:           m.IsActive,
		IsDeleted:          m.IsDeleted,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Category != nil {
		dto.CategoryName = m.Category.Name
	}
	return dto
}

func toDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out
}
