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

type inventoryCreateRequest struct {
	Name            string           `json:"name" validate:"required"`
	Quantity        int              `json:"quantity" validate:"gte=0"`
	CurrentQuantity int              `json:"currentQuantity" validate:"gte=0"`
	MinimumQuantity int              `json:"minimumQuantity" validate:"gte=0"`
	Unit            string           `json:"unit" validate:"required"`
	Location        *string          `json:"location,omitempty"`
	ExpirationDate  *time.Time       `json:"expirationDate,omitempty"`
	Cost            *decimal.Decimal `json:"cost,omitempty"`
	Supplier        *string          `json:"supplier,omitempty"`
	Barcode         *string          `json:"barcode,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	ImageURL        *string          `json:"imageUrl,omitempty"`
	Status          *string          `json:"status,omitempty"`
	Forecast        *string          `json:"forecast,omitempty"`
}

func (r inventoryCreateRequest) toInsert() storage.InsertInventoryItem {
	return storage.InsertInventoryItem{
		Name:            r.Name,
		Quantity:        r.Quantity,
		CurrentQuantity: r.CurrentQuantity,
		MinimumQuantity: r.MinimumQuantity,
		Unit:            r.Unit,
		Location:        r.Location,
		ExpirationDate:  r.ExpirationDate,
		Cost:            r.Cost,
		Supplier:        r.Supplier,
		Barcode:         r.Barcode,
		Category:        r.Category,
		Notes:           r.Notes,
		ImageURL:        r.ImageURL,
		Status:          r.Status,
		Forecast:        r.Forecast,
	}
}

type inventoryUpdateRequest struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Quantity        *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	CurrentQuantity *int             `json:"currentQuantity,omitempty" validate:"omitempty,gte=0"`
	MinimumQuantity *int             `json:"minimumQuantity,omitempty" validate:"omitempty,gte=0"`
	Unit            *string          `json:"unit,omitempty" validate:"omitempty,min=1"`
	Location        *string          `json:"location,omitempty"`
	ExpirationDate  *time.Time       `json:"expirationDate,omitempty"`
	Cost            *decimal.Decimal `json:"cost,omitempty"`
	Supplier        *string          `json:"supplier,omitempty"`
	Barcode         *string          `json:"barcode,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	ImageURL        *string          `json:"imageUrl,omitempty"`
	Status          *string          `json:"status,omitempty"`
	Forecast        *string          `json:"forecast,omitempty"`
}

func (r inventoryUpdateRequest) toUpdate() storage.UpdateInventoryItem {
	return storage.UpdateInventoryItem{
		Name:            r.Name,
		Quantity:        r.Quantity,
		CurrentQuantity: r.CurrentQuantity,
		MinimumQuantity: r.MinimumQuantity,
		Unit:            r.Unit,
		Location:        r.Location,
		ExpirationDate:  r.ExpirationDate,
		Cost:            r.Cost,
		Supplier:        r.Supplier,
		Barcode:         r.Barcode,
		Category:        r.Category,
		Notes:           r.Notes,
		ImageURL:        r.ImageURL,
		Status:          r.Status,
		Forecast:        r.Forecast,
	}
}

// InventoryList returns the tenant's inventory.
func InventoryList(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := listTenant(r.Context())
		if !ok {
			responses.WriteSuccess(w, []models.InventoryItem{})
			return
		}

		items, err := store.ListInventoryItems(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// InventoryGet returns a single item, hiding other tenants' records.
func InventoryGet(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
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

		responses.WriteSuccess(w, item)
	}
}

// InventoryCreate adds an item to the tenant's inventory.
func InventoryCreate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body inventoryCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := store.CreateInventoryItem(r.Context(), tenantOf(r.Context()), body.toInsert())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// InventoryUpdate applies a partial update.
func InventoryUpdate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inventoryUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetInventoryItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("inventory item"))
			return
		}

		item, err := store.UpdateInventoryItem(r.Context(), id, body.toUpdate())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// InventoryDelete removes an item.
func InventoryDelete(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetInventoryItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("inventory item"))
			return
		}

		if _, err := store.DeleteInventoryItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
