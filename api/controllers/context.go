package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/joymart/joymart-backend/api/middleware"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
)

// actorFromRequest resolves the authenticated user id and role seeded by the
// auth middleware.
func actorFromRequest(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	return id, role, nil
}
