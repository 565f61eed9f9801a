package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kolschhq/kolsch-backend/pkg/config"
	"github.com/kolschhq/kolsch-backend/pkg/security"
)

// Seed loads the demo fixture: one user and a handful of tenant-less
// inventory, equipment, recipe and schedule rows. It is a dev/test
// convenience, not a correctness requirement, and is never run against the
// persistent backend.
func (m *MemoryStore) Seed(ctx context.Context) error {
	// Hash at seed time so the demo account can actually log in. Cheap
	// parameters keep test startup fast.
	hash, err := security.HashPassword("password", config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
	})
	if err != nil {
		return err
	}

	if _, err := m.CreateUser(ctx, InsertUser{
		ID:        "1",
		Username:  "sam",
		Email:     "sam@brewery.com",
		Password:  hash,
		FirstName: "Sam",
		LastName:  "Brewer",
		Role:      "member",
	}); err != nil {
		return err
	}

	items := []InsertInventoryItem{
		{
			Name:            "Cascade Hops",
			Quantity:        5,
			CurrentQuantity: 5,
			MinimumQuantity: 10,
			Unit:            "kg",
			Category:        strPtr("Hops"),
			Location:        strPtr("Storage A"),
			Notes:           strPtr("Critical level"),
			Cost:            decPtr("15.99"),
			Supplier:        strPtr("Hop Supplier Inc"),
			Barcode:         strPtr("123456789"),
		},
		{
			Name:            "Pilsner Malt",
			Quantity:        75,
			CurrentQuantity: 75,
			MinimumQuantity: 20,
			Unit:            "kg",
			Category:        strPtr("Malt"),
			Location:        strPtr("Storage B"),
			Notes:           strPtr("Warning level"),
			Cost:            decPtr("3.99"),
			Supplier:        strPtr("Malt House"),
			Barcode:         strPtr("987654321"),
		},
	}
	for _, item := range items {
		if _, err := m.CreateInventoryItem(ctx, nil, item); err != nil {
			return err
		}
	}

	equipment := []InsertEquipment{
		{
			Name:            "Brew Kettle #1",
			Type:            "kettle",
			Location:        strPtr("Brewhouse"),
			Capacity:        strPtr("500L"),
			Status:          strPtr("active"),
			PurchaseDate:    timePtr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			LastMaintenance: timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			NextMaintenance: timePtr(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)),
			Notes:           strPtr("Regular maintenance required"),
		},
		{
			Name:            "Fermenter #2",
			Type:            "fermenter",
			Location:        strPtr("Fermentation Room"),
			Capacity:        strPtr("1000L"),
			Status:          strPtr("active"),
			PurchaseDate:    timePtr(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)),
			LastMaintenance: timePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
			NextMaintenance: timePtr(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)),
			Notes:           strPtr("Temperature control working properly"),
		},
	}
	for _, eq := range equipment {
		if _, err := m.CreateEquipment(ctx, nil, eq); err != nil {
			return err
		}
	}

	recipes := []InsertRecipe{
		{
			Name:             "Summer Kolsch",
			Style:            strPtr("Kolsch"),
			BatchSize:        decPtr("500"),
			TargetABV:        decPtr("4.8"),
			TargetIBU:        intPtr(22),
			Ingredients:      []string{"Pilsner Malt", "Vienna Malt", "Cascade Hops", "Kolsch Yeast"},
			Instructions:     []string{"Mash at 152F for 60 minutes", "Boil for 60 minutes", "Ferment at 60F for 10 days"},
			FermentationTemp: strPtr("60F"),
			FermentationTime: strPtr("10 days"),
			Description:      strPtr("Light, crisp and refreshing German-style ale perfect for summer"),
		},
		{
			Name:             "Vienna Lager",
			Style:            strPtr("Vienna Lager"),
			BatchSize:        decPtr("500"),
			TargetABV:        decPtr("5.2"),
			TargetIBU:        intPtr(25),
			Ingredients:      []string{"Vienna Malt", "Munich Malt", "Saaz Hops", "Lager Yeast"},
			Instructions:     []string{"Mash at 154F for 60 minutes", "Boil for 90 minutes", "Ferment at 50F for 14 days", "Lager for 4 weeks"},
			FermentationTemp: strPtr("50F"),
			FermentationTime: strPtr("14 days"),
			Description:      strPtr("Traditional amber lager with toasty malt character"),
		},
	}
	for _, recipe := range recipes {
		if _, err := m.CreateRecipe(ctx, nil, recipe); err != nil {
			return err
		}
	}

	schedules := []InsertBrewingSchedule{
		{
			Title:       "Summer Kolsch Batch #1242",
			StartDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
			Status:      strPtr("in-progress"),
			BatchSize:   decPtr("500"),
			Description: strPtr("First batch of Summer Kolsch for the season"),
			Notes:       strPtr("Targeting lower fermentation temperature"),
			RecipeID:    intPtr(1),
			EquipmentID: intPtr(1),
		},
		{
			Title:       "Vienna Lager Batch #1243",
			StartDate:   time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
			Status:      strPtr("scheduled"),
			BatchSize:   decPtr("500"),
			Description: strPtr("Monthly Vienna Lager batch"),
			Notes:       strPtr("Extended lagering period"),
			RecipeID:    intPtr(2),
			EquipmentID: intPtr(2),
		},
	}
	for _, schedule := range schedules {
		if _, err := m.CreateBrewingSchedule(ctx, nil, schedule); err != nil {
			return err
		}
	}

	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
