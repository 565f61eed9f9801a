package storage

import (
	"time"

	"github.com/kolschhq/kolsch-backend/pkg/db/models"
)

func validateInsertInventoryItem(in InsertInventoryItem) error {
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Unit == "" {
		return invalid("unit is required")
	}
	if in.Quantity < 0 || in.CurrentQuantity < 0 || in.MinimumQuantity < 0 {
		return invalid("quantity fields must be non-negative")
	}
	return nil
}

func validateUpdateInventoryItem(in UpdateInventoryItem) error {
	for _, qty := range []*int{in.Quantity, in.CurrentQuantity, in.MinimumQuantity} {
		if qty != nil && *qty < 0 {
			return invalid("quantity fields must be non-negative")
		}
	}
	return nil
}

func validateInsertRecipe(in InsertRecipe) error {
	if in.Name == "" {
		return invalid("name is required")
	}
	if len(in.Ingredients) == 0 {
		return invalid("ingredients must have at least one entry")
	}
	if len(in.Instructions) == 0 {
		return invalid("instructions must have at least one step")
	}
	return nil
}

func validateUpdateRecipe(in UpdateRecipe) error {
	// nil slices mean "leave unchanged"; provided slices must stay non-empty.
	if in.Ingredients != nil && len(in.Ingredients) == 0 {
		return invalid("ingredients must have at least one entry")
	}
	if in.Instructions != nil && len(in.Instructions) == 0 {
		return invalid("instructions must have at least one step")
	}
	return nil
}

func validateScheduleWindow(start, end time.Time) error {
	if end.Before(start) {
		return invalid("endDate must not precede startDate")
	}
	return nil
}

func validateScheduleStatus(status string) error {
	if !models.ValidScheduleStatus(status) {
		return invalid("invalid schedule status")
	}
	return nil
}

func sameTenant(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
