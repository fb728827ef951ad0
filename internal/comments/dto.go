package comment

import (
	"time"

	"github.com/google/uuid"

	"github.com/joymart/joymart-backend/pkg/db/models"
)

// CommentDTO is the public projection of a product comment.
type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toDTO(row *models.ProductComment) *CommentDTO {
	return &CommentDTO{
		ID:        row.ID,
		ProductID: row.ProductID,
		UserID:    row.UserID,
		UserName:  row.UserName,
		Email:     row.Email,
		Rating:    row.Rating,
		Comment:   row.Comment,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toDTOs(rows []models.ProductComment) []CommentDTO {
	out := make([]CommentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out
}
