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

type recipeCreateRequest struct {
	Name             string           `json:"name" validate:"required"`
	Style            *string          `json:"style,omitempty"`
	BatchSize        *decimal.Decimal `json:"batchSize,omitempty"`
	TargetABV        *decimal.Decimal `json:"targetAbv,omitempty"`
	TargetIBU        *int             `json:"targetIbu,omitempty"`
	SRM              *int             `json:"srm,omitempty"`
	Ingredients      []string         `json:"ingredients" validate:"required,min=1,dive,required"`
	Instructions     []string         `json:"instructions" validate:"required,min=1,dive,required"`
	FermentationTemp *string          `json:"fermentationTemp,omitempty"`
	FermentationTime *string          `json:"fermentationTime,omitempty"`
	Description      *string          `json:"description,omitempty"`
	ImageURL         *string          `json:"imageUrl,omitempty"`
}

func (r recipeCreateRequest) toInsert() storage.InsertRecipe {
	return storage.InsertRecipe{
		Name:             r.Name,
		Style:            r.Style,
		BatchSize:        r.BatchSize,
		TargetABV:        r.TargetABV,
		TargetIBU:        r.TargetIBU,
		SRM:              r.SRM,
		Ingredients:      r.Ingredients,
		Instructions:     r.Instructions,
		FermentationTemp: r.FermentationTemp,
		FermentationTime: r.FermentationTime,
		Description:      r.Description,
		ImageURL:         r.ImageURL,
	}
}

type recipeUpdateRequest struct {
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Style            *string          `json:"style,omitempty"`
	BatchSize        *decimal.Decimal `json:"batchSize,omitempty"`
	TargetABV        *decimal.Decimal `json:"targetAbv,omitempty"`
	TargetIBU        *int             `json:"targetIbu,omitempty"`
	SRM              *int             `json:"srm,omitempty"`
	Ingredients      []string         `json:"ingredients,omitempty" validate:"omitempty,min=1,dive,required"`
	Instructions     []string         `json:"instructions,omitempty" validate:"omitempty,min=1,dive,required"`
	FermentationTemp *string          `json:"fermentationTemp,omitempty"`
	FermentationTime *string          `json:"fermentationTime,omitempty"`
	Description      *string          `json:"description,omitempty"`
	ImageURL         *string          `json:"imageUrl,omitempty"`
}

func (r recipeUpdateRequest) toUpdate() storage.UpdateRecipe {
	return storage.UpdateRecipe{
		Name:             r.Name,
		Style:            r.Style,
		BatchSize:        r.BatchSize,
		TargetABV:        r.TargetABV,
		TargetIBU:        r.TargetIBU,
		SRM:              r.SRM,
		Ingredients:      r.Ingredients,
		Instructions:     r.Instructions,
		FermentationTemp: r.FermentationTemp,
		FermentationTime: r.FermentationTime,
		Description:      r.Description,
		ImageURL:         r.ImageURL,
	}
}

// RecipeList returns the tenant's recipes.
func RecipeList(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := listTenant(r.Context())
		if !ok {
			responses.WriteSuccess(w, []models.Recipe{})
			return
		}
		items, err := store.ListRecipes(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// RecipeGet returns one recipe.
func RecipeGet(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := store.GetRecipe(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(recipe.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("recipe"))
			return
		}

		responses.WriteSuccess(w, recipe)
	}
}

// RecipeCreate adds a recipe for the tenant.
func RecipeCreate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body recipeCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := store.CreateRecipe(r.Context(), tenantOf(r.Context()), body.toInsert())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, recipe)
	}
}

// RecipeUpdate applies a partial update.
func RecipeUpdate(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body recipeUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetRecipe(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("recipe"))
			return
		}

		recipe, err := store.UpdateRecipe(r.Context(), id, body.toUpdate())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recipe)
	}
}

// RecipeDelete removes a recipe.
func RecipeDelete(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.GetRecipe(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !visibleTo(existing.BreweryID, r.Context()) {
			responses.WriteError(r.Context(), logg, w, notVisible("recipe"))
			return
		}

		if _, err := store.DeleteRecipe(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
