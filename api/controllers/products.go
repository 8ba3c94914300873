package controllers

import (
	"net/http"

	"github.com/davegutierrez/shoplite-backend/api/responses"
	"github.com/davegutierrez/shoplite-backend/api/validators"
	movementsvc "github.com/davegutierrez/shoplite-backend/internal/movements"
	"github.com/davegutierrez/shoplite-backend/internal/products"
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
)

// createProductPayload extends the catalog input with an optional opening
// quantity. The stock itself is still written through the movements ledger so
// the cached balance never moves without a row backing it.
type createProductPayload struct {
	products.CreateProductInput
	OpeningQty *int `json:"opening_qty,omitempty" validate:"omitempty,gt=0"`
}

const openingStockReason = "opening stock"

// ProductCreate registers a catalog item, optionally seeding its stock with
// an opening adjustment recorded against the caller.
func ProductCreate(svc products.Service, movements movementsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "products service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload.CreateProductInput)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.OpeningQty != nil && movements != nil {
			result, err := movements.CreateAdjustment(r.Context(), movementsvc.Actor{UserID: userID, Role: role}, movementsvc.AdjustmentInput{
				ProductID: product.ID,
				QtyDelta:  *payload.OpeningQty,
				Reason:    openingStockReason,
			})
			if err != nil {
				// The product exists at this point; report the stock
				// failure rather than pretending the whole call failed.
				logg.Error(r.Context(), "product.opening_stock_failed", err)
				responses.WriteError(r.Context(), logg, w, apperrors.Wrap(apperrors.CodeInternal, err, "product created but opening stock failed"))
				return
			}
			product.StockCached = result.StockAfter
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductGet loads one catalog item.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "products service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductList returns catalog items matching the query filters.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "products service unavailable"))
			return
		}

		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := products.ListFilter{
			CategoryID:      categoryID,
			Search:          r.URL.Query().Get("search"),
			IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
			LowStockOnly:    r.URL.Query().Get("low_stock") == "true",
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ProductUpdate applies a partial update to one catalog item.
func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "products service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload products.UpdateProductInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductDeactivate soft-deletes a catalog item. The ledger history stays.
func ProductDeactivate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "products service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Deactivate(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
