package controllers

import (
	"net/http"
	"time"

	"github.com/kolschhq/kolsch-backend/api/responses"
	"github.com/kolschhq/kolsch-backend/api/validators"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

type equipmentCreateRequest struct {
	Name            string     `json:"name" validate:"required"`
	Type            string     `json:"type" validate:"required"`
	Capacity        *string    `json:"capacity,omitempty"`
	Status          *string    `json:"status,omitempty" validate:"omitempty,oneof=available active maintenance retired"`
	Location        *string    `json:"location,omitempty"`
	PurchaseDate    *time.Time `json:"purchaseDate,omitempty"`
	LastMaintenance *time.Time `json:"lastMaintenance,omitempty"`
	NextMaintenance *time.Time `json:"nextMaintenance,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	ImageURL        *string    `json:"imageUrl,omitempty"`
}

func (r equipmentCreateRequest) toInsert() storage.InsertEquipment {
	return storage.InsertEquipment{
		Name:            r.Name,
		Type:            r.Type,
		Capacity:        r.Capacity,
		Status:          r.Status,
		Location:        r.Location,
		PurchaseDate:    r.PurchaseDate,
		LastMaintenance: r.LastMaintenance,
		NextMaintenance: r.NextMaintenance,
		Notes:           r.Notes,
		ImageURL:        r.ImageURL,
	}
}

type equipmentUpdateRequest struct {
	Name            *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	Type            *string    `json:"type,omitempty" validate:"omitempty,min=1"`
	Capacity        *string    `json:"capacity,omitempty"`
	Status          *string    `json:"status,omitempty" validate:"omitempty,oneof=available active maintenance retired"`
	Location        *string    `json:"location,omitempty"`
	PurchaseDate    *time.Time `json:"purchaseDate,omitempty"`
	LastMaintenance *time.Time `json:"lastMaintenance,omitempty"`
	NextMaintenance *time.Time `json:"nextMaintenance,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	ImageURL        *string    `json:"imageUrl,omitempty"`
}

func (r equipmentUpdateRequest) toUpdate() storage.UpdateEquipment {
	return storage.UpdateEquipment{
		Name:            r.Name,
		Type:            r.Type,
		Capacity:        r.Capacity,
		Status:          r.Status,
		Location:        r.Location,
		PurchaseDate:    r.PurchaseDate,
		LastMaintenance: r.LastMaintenance,
		NextMaintenance: r.NextMaintenance,
		Notes:           r.Notes,
		ImageURL:        r.ImageURL,
	}
}

// EquipmentList returns the tenant's equipment.
func EquipmentList(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := listTenant(r.Context())
		if !ok {
			responses.WriteSuccess(w, []models.Equipment{})
			return
		}
		items, err := store.ListEquipment(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// EquipmentGet returns one piece of equipment.
func EquipmentGet(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := store.GetEquipment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(item.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("equipment"))
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// EquipmentCreate registers new equipment for the tenant.
func EquipmentCreate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body equipmentCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := store.CreateEquipment(r.Context(), tenantOf(r.Context()), body.toInsert())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// EquipmentUpdate applies a partial update.
func EquipmentUpdate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body equipmentUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetEquipment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("equipment"))
			return
		}

		item, err := store.UpdateEquipment(r.Context(), id, body.toUpdate())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// EquipmentDelete removes equipment.
func EquipmentDelete(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetEquipment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("equipment"))
			return
		}

		if _, err := store.DeleteEquipment(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
