package controllers

import (
	"net/http"

	"github.com/joymart/joymart-backend/api/responses"
	"github.com/joymart/joymart-backend/api/validators"
	profilesvc "github.com/joymart/joymart-backend/internal/profiles"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/logger"
	"github.com/joymart/joymart-backend/pkg/types"
)

// GetMyProfile returns the caller's profile, creating it on first access.
func GetMyProfile(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetMine(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UpdateMyProfile applies partial profile changes for the caller.
func UpdateMyProfile(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateMine(r.Context(), userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type updateProfileRequest struct {
	Phone     *string         `json:"phone,omitempty" validate:"omitempty,max=32"`
	AvatarURL *string         `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Bio       *string         `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Address   *addressRequest `json:"address,omitempty"`
}

type addressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a addressRequest) toAddress() types.Address {
	return types.Address{
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func (r updateProfileRequest) toInput() profilesvc.UpdateInput {
	input := profilesvc.UpdateInput{
		Phone:     r.Phone,
		AvatarURL: r.AvatarURL,
		Bio:       r.Bio,
	}
	if r.Address != nil {
		addr := r.Address.toAddress()
		input.Address = &addr
	}
	return input
}
