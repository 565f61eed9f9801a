package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kolschhq/kolsch-backend/api/responses"
	"github.com/kolschhq/kolsch-backend/api/validators"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

type sourceCreateRequest struct {
	Name      string           `json:"name" validate:"required"`
	Type      string           `json:"type" validate:"required"`
	Supplier  string           `json:"supplier" validate:"required"`
	Location  string           `json:"location" validate:"required"`
	Contact   *string          `json:"contact,omitempty"`
	Rating    *int             `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Notes     *string          `json:"notes,omitempty"`
	Latitude  *decimal.Decimal `json:"latitude,omitempty"`
	Longitude *decimal.Decimal `json:"longitude,omitempty"`
}

func (r sourceCreateRequest) toInsert() storage.InsertIngredientSource {
	return storage.InsertIngredientSource{
		Name:      r.Name,
		Type:      r.Type,
		Supplier:  r.Supplier,
		Location:  r.Location,
		Contact:   r.Contact,
		Rating:    r.Rating,
		Notes:     r.Notes,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

type sourceUpdateRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Type      *string          `json:"type,omitempty" validate:"omitempty,min=1"`
	Supplier  *string          `json:"supplier,omitempty" validate:"omitempty,min=1"`
	Location  *string          `json:"location,omitempty" validate:"omitempty,min=1"`
	Contact   *string          `json:"contact,omitempty"`
	Rating    *int             `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Notes     *string          `json:"notes,omitempty"`
	Latitude  *decimal.Decimal `json:"latitude,omitempty"`
	Longitude *decimal.Decimal `json:"longitude,omitempty"`
}

func (r sourceUpdateRequest) toUpdate() storage.UpdateIngredientSource {
	return storage.UpdateIngredientSource{
		Name:      r.Name,
		Type:      r.Type,
		Supplier:  r.Supplier,
		Location:  r.Location,
		Contact:   r.Contact,
		Rating:    r.Rating,
		Notes:     r.Notes,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// SourceList returns the tenant's ingredient sources.
func SourceList(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := listTenant(r.Context())
		if !ok {
			responses.WriteSuccess(w, []models.IngredientSource{})
			return
		}
		items, err := store.ListIngredientSources(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// SourceGet returns one ingredient source.
func SourceGet(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source, err := store.GetIngredientSource(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(source.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("ingredient source"))
			return
		}

		responses.WriteSuccess(w, source)
	}
}

// SourceCreate adds an ingredient source for the tenant.
func SourceCreate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body sourceCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source, err := store.CreateIngredientSource(r.Context(), tenantOf(r.Context()), body.toInsert())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, source)
	}
}

// SourceUpdate applies a partial update.
func SourceUpdate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body sourceUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetIngredientSource(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("ingredient source"))
			return
		}

		source, err := store.UpdateIngredientSource(r.Context(), id, body.toUpdate())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, source)
	}
}

// SourceDelete removes an ingredient source.
func SourceDelete(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetIngredientSource(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("ingredient source"))
			return
		}

		if _, err := store.DeleteIngredientSource(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
