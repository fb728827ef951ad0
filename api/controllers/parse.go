package controllers

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
)

func parseUUIDField(raw, label string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return parsed, nil
}
