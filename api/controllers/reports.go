package controllers

import (
	"net/http"
	"strings"

	"github.com/joymart/joymart-backend/api/responses"
	"github.com/joymart/joymart-backend/api/validators"
	reportsvc "github.com/joymart/joymart-backend/internal/reports"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
	"github.com/joymart/joymart-backend/pkg/logger"
)

// CreateReport files a product complaint for moderation.
func CreateReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		userID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createReportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListReports pages the moderation queue (admin only).
func ListReports(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		params := listing.ParamsFromQuery(r.URL.Query(), "status", "product_id")
		rows, meta, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMeta(w, rows, meta)
	}
}

// GetReport returns one report (admin only).
func GetReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		reportID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetByID(r.Context(), reportID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ReplyToReport records the moderator's answer and status change (admin only).
func ReplyToReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		adminID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reportID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload replyReportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reply(r.Context(), reportID, adminID, reportsvc.ReplyInput{
			Message: strings.TrimSpace(payload.Message),
			Status:  strings.TrimSpace(payload.Status),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createReportRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Reason    string `json:"reason" validate:"required,min=3,max=200"`
	Details   string `json:"details,omitempty" validate:"omitempty,max=2000"`
}

func (r createReportRequest) toInput() (reportsvc.CreateInput, error) {
	productID, err := parseUUIDField(r.ProductID, "product id")
	if err != nil {
		return reportsvc.CreateInput{}, err
	}
	return reportsvc.CreateInput{
		ProductID: productID,
		Reason:    strings.TrimSpace(r.Reason),
		Details:   strings.TrimSpace(r.Details),
	}, nil
}

type replyReportRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
	Status  string `json:"status" validate:"required,oneof=pending reviewed resolved dismissed"`
}
