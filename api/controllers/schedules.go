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

type scheduleCreateRequest struct {
	Title       string           `json:"title" validate:"required"`
	Description *string          `json:"description,omitempty"`
	RecipeID    *int             `json:"recipeId,omitempty"`
	EquipmentID *int             `json:"equipmentId,omitempty"`
	StartDate   time.Time        `json:"startDate" validate:"required"`
	EndDate     time.Time        `json:"endDate" validate:"required"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=scheduled in-progress completed cancelled"`
	BatchSize   *decimal.Decimal `json:"batchSize,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

func (r scheduleCreateRequest) toInsert() storage.InsertBrewingSchedule {
	return storage.InsertBrewingSchedule{
		Title:       r.Title,
		Description: r.Description,
		RecipeID:    r.RecipeID,
		EquipmentID: r.EquipmentID,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      r.Status,
		BatchSize:   r.BatchSize,
		Notes:       r.Notes,
	}
}

type scheduleUpdateRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	RecipeID    *int             `json:"recipeId,omitempty"`
	EquipmentID *int             `json:"equipmentId,omitempty"`
	StartDate   *time.Time       `json:"startDate,omitempty"`
	EndDate     *time.Time       `json:"endDate,omitempty"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=scheduled in-progress completed cancelled"`
	BatchSize   *decimal.Decimal `json:"batchSize,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

func (r scheduleUpdateRequest) toUpdate() storage.UpdateBrewingSchedule {
	return storage.UpdateBrewingSchedule{
		Title:       r.Title,
		Description: r.Description,
		RecipeID:    r.RecipeID,
		EquipmentID: r.EquipmentID,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      r.Status,
		BatchSize:   r.BatchSize,
		Notes:       r.Notes,
	}
}

// ScheduleList returns the tenant's brewing schedules.
func ScheduleList(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := listTenant(r.Context())
		if !ok {
			responses.WriteSuccess(w, []models.BrewingSchedule{})
			return
		}
		items, err := store.ListBrewingSchedules(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ScheduleGet returns one brewing schedule.
func ScheduleGet(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sched, err := store.GetBrewingSchedule(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(sched.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("brewing schedule"))
			return
		}

		responses.WriteSuccess(w, sched)
	}
}

// ScheduleCreate books a brew for the tenant.
func ScheduleCreate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body scheduleCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sched, err := store.CreateBrewingSchedule(r.Context(), tenantOf(r.Context()), body.toInsert())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sched)
	}
}

// ScheduleUpdate applies a partial update.
func ScheduleUpdate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body scheduleUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetBrewingSchedule(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("brewing schedule"))
			return
		}

		sched, err := store.UpdateBrewingSchedule(r.Context(), id, body.toUpdate())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sched)
	}
}

// ScheduleDelete removes a brewing schedule.
func ScheduleDelete(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetBrewingSchedule(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("brewing schedule"))
			return
		}

		if _, err := store.DeleteBrewingSchedule(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
