package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
)

// ReportDTO is the moderation view of a reported product.
type ReportDTO struct {
	ID           uuid.UUID          `json:"id"`
	ProductID    uuid.UUID          `json:"productId"`
	ProductTitle string             `json:"productTitle,omitempty"`
	ReportedBy   uuid.UUID          `json:"reportedBy"`
	ReporterName string             `json:"reporterName,omitempty"`
	Reason       string             `json:"reason"`
	Details      string             `json:"details,omitempty"`
	Status       enums.ReportStatus `json:"status"`
	ReplyMessage *string            `json:"replyMessage,omitempty"`
	RepliedBy    *uuid.UUID         `json:"repliedBy,omitempty"`
	RepliedAt    *time.Time         `json:"repliedAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func toDTO(row *models.ReportedProduct) *ReportDTO {
	dto := &ReportDTO{
		ID:           row.ID,
		ProductID:    row.ProductID,
		ReportedBy:   row.ReportedBy,
		Reason:       row.Reason,
		Details:      row.Details,
		Status:       row.Status,
		ReplyMessage: row.ReplyMessage,
		RepliedBy:    row.RepliedBy,
		RepliedAt:    row.RepliedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.Product != nil {
		dto.ProductTitle = row.Product.Title
	}
	if row.Reporter != nil {
		dto.ReporterName = row.Reporter.Name
	}
	return dto
}

func toDTOs(rows []models.ReportedProduct) []ReportDTO {
	out := make([]ReportDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out
}
