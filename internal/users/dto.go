package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
)

// UserDTO is the account payload returned to clients. The password hash never
// leaves the service layer.
type UserDTO struct {
	ID                  uuid.UUID        `json:"id"`
	Name                string           `json:"name"`
	Email               string           `json:"email"`
	Role                enums.UserRole   `json:"role"`
	Status              enums.UserStatus `json:"status"`
	NeedsPasswordChange bool             `json:"needs_password_change"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ToDTO strips the sensitive columns off a user row.
func ToDTO(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:                  m.ID,
		Name:                m.Name,
		Email:               m.Email,
		Role:                m.Role,
		Status:              m.Status,
		NeedsPasswordChange: m.NeedsPasswordChange,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
