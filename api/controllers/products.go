package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joymart/joymart-backend/api/responses"
	"github.com/joymart/joymart-backend/api/validators"
	productsvc "github.com/joymart/joymart-backend/internal/products"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/listing"
	"github.com/joymart/joymart-backend/pkg/logger"
)

// productFilterKeys are the query keys allowed through as equality filters.
var productFilterKeys = []string{"category_id", "featured", "seller_id"}

// CreateProduct adds a catalog entry owned by the calling seller.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		sellerID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), sellerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// UpdateProduct applies partial changes; sellers may only touch their own rows.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), actorID, role, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// DeleteProduct soft-deletes a product.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SoftDelete(r.Context(), actorID, role, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

// HardDeleteProduct permanently removes a product (superAdmin only).
func HardDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		_, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.HardDelete(r.Context(), role, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

// GetProduct returns a single product by id.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ListProducts serves the public storefront catalog.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, productsvc.ViewPublic, false)
}

// ListSellerProducts serves the calling seller's own catalog.
func ListSellerProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, productsvc.ViewSeller, true)
}

// ListAdminProducts serves the moderation catalog view.
func ListAdminProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, productsvc.ViewAdmin, false)
}

func listProducts(svc productsvc.Service, logg *logger.Logger, view productsvc.View, sellerScoped bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input := productsvc.ListInput{
			View:   view,
			Params: listing.ParamsFromQuery(r.URL.Query(), productFilterKeys...),
		}
		if sellerScoped {
			sellerID, _, err := actorFromRequest(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.SellerID = sellerID
		} else {
			// superAdmin sees soft-deleted rows on the admin listing.
			if _, role, err := actorFromRequest(r); err == nil && view == productsvc.ViewAdmin && role == enums.UserRoleSuperAdmin {
				input.View = productsvc.ViewAll
			}
		}

		rows, meta, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMeta(w, rows, meta)
	}
}

type createProductRequest struct {
	CategoryID        string   `json:"categoryId" validate:"required,uuid"`
	Title             string   `json:"title" validate:"required,min=2,max=200"`
	ShortTitle        string   `json:"shortTitle,omitempty" validate:"omitempty,max=80"`
	Description       string   `json:"description" validate:"required"`
	ShortDescription  string   `json:"shortDescription,omitempty" validate:"omitempty,max=400"`
	Price             string   `json:"price" validate:"required"`
	OriginalPrice     string   `json:"originalPrice,omitempty"`
	Stock             int      `json:"stock" validate:"min=0"`
	LowStockThreshold *int     `json:"lowStockThreshold,omitempty" validate:"omitempty,min=0"`
	Images            []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Thumbnail         *string  `json:"thumbnail,omitempty" validate:"omitempty,url"`
	Featured          bool     `json:"featured,omitempty"`
}

func (r createProductRequest) toInput() (productsvc.CreateInput, error) {
	categoryID, err := uuid.Parse(r.CategoryID)
	if err != nil {
		return productsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
	}
	price, err := parseAmount(r.Price, "price")
	if err != nil {
		return productsvc.CreateInput{}, err
	}
	original := decimal.Zero
	if strings.TrimSpace(r.OriginalPrice) != "" {
		original, err = parseAmount(r.OriginalPrice, "original price")
		if err != nil {
			return productsvc.CreateInput{}, err
		}
	}
	return productsvc.CreateInput{
		CategoryID:        categoryID,
		Title:             strings.TrimSpace(r.Title),
		ShortTitle:        strings.TrimSpace(r.ShortTitle),
		Description:       r.Description,
		ShortDescription:  r.ShortDescription,
		Price:             price,
		OriginalPrice:     original,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		Images:            r.Images,
		Thumbnail:         r.Thumbnail,
		Featured:          r.Featured,
	}, nil
}

type updateProductRequest struct {
	CategoryID        *string   `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	Title             *string   `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	ShortTitle        *string   `json:"shortTitle,omitempty" validate:"omitempty,max=80"`
	Description       *string   `json:"description,omitempty"`
	ShortDescription  *string   `json:"shortDescription,omitempty" validate:"omitempty,max=400"`
	Price             *string   `json:"price,omitempty"`
	OriginalPrice     *string   `json:"originalPrice,omitempty"`
	Stock             *int      `json:"stock,omitempty" validate:"omitempty,min=0"`
	LowStockThreshold *int      `json:"lowStockThreshold,omitempty" validate:"omitempty,min=0"`
	Images            *[]string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Thumbnail         *string   `json:"thumbnail,omitempty" validate:"omitempty,url"`
	Featured          *bool     `json:"featured,omitempty"`
	IsActive          *bool     `json:"isActive,omitempty"`
}

func (r updateProductRequest) toInput() (productsvc.UpdateInput, error) {
	input := productsvc.UpdateInput{
		Title:             r.Title,
		ShortTitle:        r.ShortTitle,
		Description:       r.Description,
		ShortDescription:  r.ShortDescription,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		Images:            r.Images,
		Thumbnail:         r.Thumbnail,
		Featured:          r.Featured,
		IsActive:          r.IsActive,
	}
	if r.CategoryID != nil {
		categoryID, err := uuid.Parse(*r.CategoryID)
		if err != nil {
			return productsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &categoryID
	}
	if r.Price != nil {
		price, err := parseAmount(*r.Price, "price")
		if err != nil {
			return productsvc.UpdateInput{}, err
		}
		input.Price = &price
	}
	if r.OriginalPrice != nil {
		original, err := parseAmount(*r.OriginalPrice, "original price")
		if err != nil {
			return productsvc.UpdateInput{}, err
		}
		input.OriginalPrice = &original
	}
	return input, nil
}

func parseAmount(raw, label string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	if amount.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, label+" cannot be negative")
	}
	return amount, nil
}
