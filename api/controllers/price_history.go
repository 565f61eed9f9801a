package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kolschhq/kolsch-backend/api/responses"
	"github.com/kolschhq/kolsch-backend/api/validators"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

type priceEntryCreateRequest struct {
	IngredientID *int            `json:"ingredientId,omitempty"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	Supplier     *string         `json:"supplier,omitempty"`
	Date         time.Time       `json:"date" validate:"required"`
	Notes        *string         `json:"notes,omitempty"`
}

func (r priceEntryCreateRequest) toInsert() storage.InsertPriceHistoryEntry {
	return storage.InsertPriceHistoryEntry{
		IngredientID: r.IngredientID,
		Price:        r.Price,
		Supplier:     r.Supplier,
		Date:         r.Date,
		Notes:        r.Notes,
	}
}

type priceEntryUpdateRequest struct {
	IngredientID *int             `json:"ingredientId,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Supplier     *string          `json:"supplier,omitempty"`
	Date         *time.Time       `json:"date,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

func (r priceEntryUpdateRequest) toUpdate() storage.UpdatePriceHistoryEntry {
	return storage.UpdatePriceHistoryEntry{
		IngredientID: r.IngredientID,
		Price:        r.Price,
		Supplier:     r.Supplier,
		Date:         r.Date,
		Notes:        r.Notes,
	}
}

// PriceHistoryList returns the tenant's price history entries.
func PriceHistoryList(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := listTenant(r.Context())
		if !ok {
			responses.WriteSuccess(w, []models.PriceHistoryEntry{})
			return
		}
		entries, err := store.ListPriceHistory(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// PriceHistoryForIngredient returns the price series for one inventory item,
// oldest first. The item itself must be visible to the caller.
func PriceHistoryForIngredient(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := store.GetInventoryItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(item.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("inventory item"))
			return
		}

		entries, err := store.PriceHistoryForIngredient(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entries)
	}
}

// PriceEntryCreate records a price observation for the tenant.
func PriceEntryCreate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body priceEntryCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := store.CreatePriceHistoryEntry(r.Context(), tenantOf(r.Context()), body.toInsert())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// PriceEntryUpdate applies a partial update.
func PriceEntryUpdate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body priceEntryUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetPriceHistoryEntry(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("price history entry"))
			return
		}

		entry, err := store.UpdatePriceHistoryEntry(r.Context(), id, body.toUpdate())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}

// PriceEntryDelete removes a price observation.
func PriceEntryDelete(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetPriceHistoryEntry(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("price history entry"))
			return
		}

		if _, err := store.DeletePriceHistoryEntry(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
