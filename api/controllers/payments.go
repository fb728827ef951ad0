package controllers

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/joymart/joymart-backend/api/responses"
	"github.com/joymart/joymart-backend/api/validators"
	paymentsvc "github.com/joymart/joymart-backend/internal/payments"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/logger"
)

// InitiatePayment starts a checkout and returns the gateway redirect URL for
// online methods.
func InitiatePayment(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		userID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload initiatePaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initiate(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ValidatePayment re-checks a transaction against the gateway and settles it.
func ValidatePayment(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		transactionID := chi.URLParam(r, "transactionId")
		if transactionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required"))
			return
		}

		result, err := svc.Validate(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PaymentIPN receives the gateway's server-to-server notification. The claim
// is re-verified against the gateway before any state changes.
func PaymentIPN(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		if err := r.ParseForm(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ipn payload"))
			return
		}

		result, err := svc.HandleIPN(r.Context(), paymentsvc.IPNInput{
			TransactionID: r.PostFormValue("tran_id"),
			Status:        r.PostFormValue("status"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// TrackPayment returns the caller's order identified by transaction id.
func TrackPayment(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		userID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transactionID := chi.URLParam(r, "transactionId")
		if transactionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required"))
			return
		}

		result, err := svc.Track(r.Context(), userID, transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PaymentHistory lists the caller's orders, newest first.
func PaymentHistory(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		userID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.History(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// PaymentRedirect renders the gateway return pages (success, fail, cancel).
// The gateway browser-redirects here, so the response is HTML, not JSON.
func PaymentRedirect(kind string, logg *logger.Logger) http.HandlerFunc {
	titles := map[string]string{
		"success": "Payment Successful",
		"fail":    "Payment Failed",
		"cancel":  "Payment Cancelled",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID := chi.URLParam(r, "transactionId")
		title, ok := titles[kind]
		if !ok {
			title = "Payment Update"
		}
		body := fmt.Sprintf(
			"<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1><p>Transaction: %s</p></body></html>",
			title, title, html.EscapeString(transactionID),
		)
		responses.WriteHTML(w, http.StatusOK, body)
	}
}

type initiatePaymentRequest struct {
	BookingIDs      []string                 `json:"bookingIds,omitempty" validate:"omitempty,dive,uuid"`
	Items           []paymentLineItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	TotalAmount     string                   `json:"totalAmount" validate:"required"`
	Currency        string                   `json:"currency,omitempty" validate:"omitempty,len=3"`
	PaymentMethod   string                   `json:"paymentMethod" validate:"required,oneof=online cod wallet"`
	Customer        customerRequest          `json:"customer" validate:"required"`
	ShippingAddress *addressRequest          `json:"shippingAddress,omitempty"`
}

type paymentLineItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type customerRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Address string `json:"address,omitempty" validate:"omitempty,max=400"`
}

func (r initiatePaymentRequest) toInput() (paymentsvc.InitiateInput, error) {
	total, err := parseAmount(r.TotalAmount, "total amount")
	if err != nil {
		return paymentsvc.InitiateInput{}, err
	}
	if total.Equal(decimal.Zero) {
		return paymentsvc.InitiateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be positive")
	}

	method, err := enums.ParsePaymentMethod(strings.TrimSpace(r.PaymentMethod))
	if err != nil {
		return paymentsvc.InitiateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	input := paymentsvc.InitiateInput{
		TotalAmount: total,
		Currency:    strings.ToUpper(strings.TrimSpace(r.Currency)),
		Method:      method,
		Customer: paymentsvc.CustomerInput{
			Name:    strings.TrimSpace(r.Customer.Name),
			Email:   strings.TrimSpace(r.Customer.Email),
			Phone:   strings.TrimSpace(r.Customer.Phone),
			Address: strings.TrimSpace(r.Customer.Address),
		},
	}

	for _, raw := range r.BookingIDs {
		id, err := parseUUIDField(raw, "booking id")
		if err != nil {
			return paymentsvc.InitiateInput{}, err
		}
		input.BookingIDs = append(input.BookingIDs, id)
	}
	for _, item := range r.Items {
		productID, err := parseUUIDField(item.ProductID, "product id")
		if err != nil {
			return paymentsvc.InitiateInput{}, err
		}
		input.Items = append(input.Items, paymentsvc.LineItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}
	if len(input.BookingIDs) == 0 && len(input.Items) == 0 {
		return paymentsvc.InitiateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one booking or line item is required")
	}

	if r.ShippingAddress != nil {
		addr := r.ShippingAddress.toAddress()
		input.ShippingAddress = &addr
	}
	return input, nil
}
