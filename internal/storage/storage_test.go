package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kolschhq/kolsch-backend/pkg/db"
	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	pkgerrors "github.com/kolschhq/kolsch-backend/pkg/errors"
	"github.com/kolschhq/kolsch-backend/pkg/security"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	breweries := `
CREATE TABLE IF NOT EXISTS breweries (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  location TEXT NOT NULL,
  founded_year INTEGER,
  website TEXT,
  phone TEXT,
  brewing_capacity TEXT,
  specialties TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  email TEXT NOT NULL,
  password TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  brewery_id TEXT,
  role TEXT NOT NULL DEFAULT 'member',
  profile_image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);`
	inventory := `
CREATE TABLE IF NOT EXISTS inventory_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  brewery_id TEXT,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  current_quantity INTEGER NOT NULL,
  minimum_quantity INTEGER NOT NULL,
  unit TEXT NOT NULL,
  location TEXT,
  expiration_date DATETIME,
  cost NUMERIC,
  supplier TEXT,
  barcode TEXT,
  category TEXT,
  notes TEXT,
  image_url TEXT,
  status TEXT DEFAULT 'good',
  forecast TEXT DEFAULT 'Sufficient',
  created_at DATETIME,
  updated_at DATETIME
);`
	equipment := `
CREATE TABLE IF NOT EXISTS equipment (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  brewery_id TEXT,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  capacity TEXT,
  status TEXT NOT NULL DEFAULT 'available',
  location TEXT,
  purchase_date DATETIME,
  last_maintenance DATETIME,
  next_maintenance DATETIME,
  notes TEXT,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	recipes := `
CREATE TABLE IF NOT EXISTS recipes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  brewery_id TEXT,
  name TEXT NOT NULL,
  style TEXT,
  batch_size NUMERIC,
  target_abv NUMERIC,
  target_ibu INTEGER,
  srm INTEGER,
  ingredients TEXT NOT NULL,
  instructions TEXT NOT NULL,
  fermentation_temp TEXT,
  fermentation_time TEXT,
  description TEXT,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	schedules := `
CREATE TABLE IF NOT EXISTS brewing_schedules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  brewery_id TEXT,
  title TEXT NOT NULL,
  description TEXT,
  recipe_id INTEGER,
  equipment_id INTEGER,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'scheduled',
  batch_size NUMERIC,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	sources := `
CREATE TABLE IF NOT EXISTS ingredient_sources (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  brewery_id TEXT,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  supplier TEXT NOT NULL,
  location TEXT NOT NULL,
  contact TEXT,
  rating INTEGER,
  notes TEXT,
  latitude NUMERIC,
  longitude NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`
	prices := `
CREATE TABLE IF NOT EXISTS ingredient_price_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  brewery_id TEXT,
  ingredient_id INTEGER,
  price NUMERIC NOT NULL,
  supplier TEXT,
  date DATETIME NOT NULL,
  notes TEXT,
  created_at DATETIME
);`
	sessions := `
CREATE TABLE IF NOT EXISTS sessions (
  sid TEXT PRIMARY KEY,
  sess TEXT NOT NULL,
  expire DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_expire ON sessions (expire);`

	for _, stmt := range []string{breweries, users, inventory, equipment, recipes, schedules, sources, prices, sessions} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

// forEachBackend runs fn against a fresh in-memory store and a fresh
// sqlite-backed GormStore so both implementations stay contract-equal.
func forEachBackend(t *testing.T, opts Options, fn func(t *testing.T, s Storage)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore(opts))
	})
	t.Run("gorm", func(t *testing.T) {
		conn := setupTestDB(t)
		fn(t, NewGormStore(db.FromGorm(conn), opts))
	})
}

func newBrewery(t *testing.T, s Storage, name string) *models.Brewery {
	t.Helper()

	brewery, err := s.CreateBrewery(context.Background(), InsertBrewery{
		Name:     name,
		Type:     "microbrewery",
		Location: "Cologne",
	})
	require.NoError(t, err)
	return brewery
}

func newUser(t *testing.T, s Storage, username, email string) *models.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), InsertUser{
		Username:  username,
		Email:     email,
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return user
}

func newItem(t *testing.T, s Storage, breweryID *string, name string) *models.InventoryItem {
	t.Helper()

	item, err := s.CreateInventoryItem(context.Background(), breweryID, InsertInventoryItem{
		Name:            name,
		Quantity:        10,
		CurrentQuantity: 10,
		MinimumQuantity: 2,
		Unit:            "kg",
	})
	require.NoError(t, err)
	return item
}

func TestBreweryLifecycle(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()

		year := 2015
		created, err := s.CreateBrewery(ctx, InsertBrewery{
			Name:        "Rheinufer Brauhaus",
			Type:        "brewpub",
			Location:    "Cologne",
			FoundedYear: &year,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		got, err := s.GetBrewery(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, created.Type, got.Type)
		require.NotNil(t, got.FoundedYear)
		assert.Equal(t, 2015, *got.FoundedYear)

		website := "https://rheinufer.example"
		updated, err := s.UpdateBrewery(ctx, created.ID, UpdateBrewery{Website: &website})
		require.NoError(t, err)
		assert.Equal(t, "Rheinufer Brauhaus", updated.Name)
		require.NotNil(t, updated.Website)
		assert.Equal(t, website, *updated.Website)

		all, err := s.ListBreweries(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		ok, err := s.DeleteBrewery(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DeleteBrewery(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGetMissingRecords(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()

		_, err := s.GetBrewery(ctx, "nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

		_, err = s.GetUser(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = s.GetInventoryItem(ctx, 9999)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

		_, err = s.GetRecipe(ctx, 9999)
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = s.UpdateEquipment(ctx, 9999, UpdateEquipment{})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	})
}

func TestCreateUserUniqueness(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		newUser(t, s, "sam", "sam@brewery.example")

		_, err := s.CreateUser(ctx, InsertUser{
			Username:  "sam",
			Email:     "other@brewery.example",
			Password:  "hashed",
			FirstName: "Other",
			LastName:  "Sam",
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

		_, err = s.CreateUser(ctx, InsertUser{
			Username:  "sam2",
			Email:     "sam@brewery.example",
			Password:  "hashed",
			FirstName: "Other",
			LastName:  "Sam",
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

		byName, err := s.GetUserByUsername(ctx, "sam")
		require.NoError(t, err)
		byMail, err := s.GetUserByEmail(ctx, "sam@brewery.example")
		require.NoError(t, err)
		assert.Equal(t, byName.ID, byMail.ID)
	})
}

func TestCreateBreweryWithOwnerAtomicity(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()

		brewery, owner, err := s.CreateBreweryWithOwner(ctx,
			InsertBrewery{Name: "Altstadt", Type: "brewpub", Location: "Cologne"},
			InsertUser{Username: "owner", Email: "owner@alt.example", Password: "hashed", FirstName: "A", LastName: "B"},
		)
		require.NoError(t, err)
		require.NotNil(t, owner.BreweryID)
		assert.Equal(t, brewery.ID, *owner.BreweryID)
		assert.Equal(t, models.RoleOwner, owner.Role)

		// Duplicate owner username must roll the brewery back too.
		_, _, err = s.CreateBreweryWithOwner(ctx,
			InsertBrewery{Name: "Second", Type: "brewpub", Location: "Cologne"},
			InsertUser{Username: "owner", Email: "second@alt.example", Password: "hashed", FirstName: "A", LastName: "B"},
		)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

		all, err := s.ListBreweries(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestInventoryItemLifecycle(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		brewery := newBrewery(t, s, "Hopfen & Co")

		cost := decimal.RequireFromString("15.99")
		created, err := s.CreateInventoryItem(ctx, &brewery.ID, InsertInventoryItem{
			Name:            "Cascade Hops",
			Quantity:        5,
			CurrentQuantity: 5,
			MinimumQuantity: 10,
			Unit:            "kg",
			Cost:            &cost,
		})
		require.NoError(t, err)
		assert.Equal(t, "good", created.Status)
		assert.Equal(t, "Sufficient", created.Forecast)
		require.NotNil(t, created.Cost)
		assert.True(t, created.Cost.Equal(cost))

		// Partial update leaves untouched fields alone.
		qty := 42
		status := "low"
		updated, err := s.UpdateInventoryItem(ctx, created.ID, UpdateInventoryItem{
			CurrentQuantity: &qty,
			Status:          &status,
		})
		require.NoError(t, err)
		assert.Equal(t, "Cascade Hops", updated.Name)
		assert.Equal(t, 42, updated.CurrentQuantity)
		assert.Equal(t, 5, updated.Quantity)
		assert.Equal(t, "low", updated.Status)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		// Empty update is a no-op apart from the timestamp.
		same, err := s.UpdateInventoryItem(ctx, created.ID, UpdateInventoryItem{})
		require.NoError(t, err)
		assert.Equal(t, updated.Name, same.Name)
		assert.Equal(t, updated.CurrentQuantity, same.CurrentQuantity)

		ok, err := s.DeleteInventoryItem(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DeleteInventoryItem(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.GetInventoryItem(ctx, created.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestInventoryItemValidation(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()

		_, err := s.CreateInventoryItem(ctx, nil, InsertInventoryItem{Unit: "kg"})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

		_, err = s.CreateInventoryItem(ctx, nil, InsertInventoryItem{Name: "Malt"})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

		_, err = s.CreateInventoryItem(ctx, nil, InsertInventoryItem{
			Name: "Malt", Unit: "kg", Quantity: -1,
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}

func TestTenantIsolation(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		one := newBrewery(t, s, "Brewery One")
		two := newBrewery(t, s, "Brewery Two")

		newItem(t, s, &one.ID, "Hops One")
		newItem(t, s, &one.ID, "Malt One")
		newItem(t, s, &two.ID, "Hops Two")

		itemsOne, err := s.ListInventoryItems(ctx, one.ID)
		require.NoError(t, err)
		require.Len(t, itemsOne, 2)
		for _, item := range itemsOne {
			require.NotNil(t, item.BreweryID)
			assert.Equal(t, one.ID, *item.BreweryID)
		}

		itemsTwo, err := s.ListInventoryItems(ctx, two.ID)
		require.NoError(t, err)
		assert.Len(t, itemsTwo, 1)

		all, err := s.ListInventoryItems(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestRecipeValidation(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()

		_, err := s.CreateRecipe(ctx, nil, InsertRecipe{
			Name:         "Empty Kolsch",
			Ingredients:  nil,
			Instructions: []string{"Brew it"},
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

		recipe, err := s.CreateRecipe(ctx, nil, InsertRecipe{
			Name:         "Summer Kolsch",
			Ingredients:  []string{"Pilsner Malt", "Saaz Hops"},
			Instructions: []string{"Mash", "Boil", "Ferment"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Pilsner Malt", "Saaz Hops"}, []string(recipe.Ingredients))

		_, err = s.UpdateRecipe(ctx, recipe.ID, UpdateRecipe{Ingredients: []string{}})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

		style := "Kolsch"
		updated, err := s.UpdateRecipe(ctx, recipe.ID, UpdateRecipe{Style: &style})
		require.NoError(t, err)
		assert.Len(t, updated.Ingredients, 2)
		require.NotNil(t, updated.Style)
	})
}

func TestBrewingScheduleReferences(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		one := newBrewery(t, s, "Brewery One")
		two := newBrewery(t, s, "Brewery Two")

		recipe, err := s.CreateRecipe(ctx, &one.ID, InsertRecipe{
			Name:         "Vienna Lager",
			Ingredients:  []string{"Vienna Malt"},
			Instructions: []string{"Brew"},
		})
		require.NoError(t, err)

		equip, err := s.CreateEquipment(ctx, &one.ID, InsertEquipment{Name: "Kettle", Type: "kettle"})
		require.NoError(t, err)
		assert.Equal(t, models.EquipmentAvailable, equip.Status)

		start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, 10)

		sched, err := s.CreateBrewingSchedule(ctx, &one.ID, InsertBrewingSchedule{
			Title:       "Spring batch",
			RecipeID:    &recipe.ID,
			EquipmentID: &equip.ID,
			StartDate:   start,
			EndDate:     end,
		})
		require.NoError(t, err)
		assert.Equal(t, models.ScheduleScheduled, sched.Status)

		// Referencing another tenant's recipe is rejected.
		_, err = s.CreateBrewingSchedule(ctx, &two.ID, InsertBrewingSchedule{
			Title:     "Stolen recipe",
			RecipeID:  &recipe.ID,
			StartDate: start,
			EndDate:   end,
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

		// End before start is rejected.
		_, err = s.CreateBrewingSchedule(ctx, &one.ID, InsertBrewingSchedule{
			Title:     "Backwards",
			StartDate: end,
			EndDate:   start,
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

		bogus := "time-travel"
		_, err = s.UpdateBrewingSchedule(ctx, sched.ID, UpdateBrewingSchedule{Status: &bogus})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

		done := models.ScheduleCompleted
		updated, err := s.UpdateBrewingSchedule(ctx, sched.ID, UpdateBrewingSchedule{Status: &done})
		require.NoError(t, err)
		assert.Equal(t, models.ScheduleCompleted, updated.Status)
	})
}

func TestDeleteBreweryBlockedByChildren(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		brewery := newBrewery(t, s, "Busy Brewery")
		newItem(t, s, &brewery.ID, "Hops")

		_, err := s.DeleteBrewery(ctx, brewery.ID)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

		_, err = s.GetBrewery(ctx, brewery.ID)
		require.NoError(t, err)
	})
}

func TestDeleteBreweryCascade(t *testing.T) {
	forEachBackend(t, Options{CascadeDelete: true}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		brewery := newBrewery(t, s, "Doomed Brewery")
		item := newItem(t, s, &brewery.ID, "Hops")

		user := newUser(t, s, "worker", "worker@doomed.example")
		_, err := s.AddUserToBrewery(ctx, user.ID, brewery.ID, models.RoleAdmin)
		require.NoError(t, err)

		ok, err := s.DeleteBrewery(ctx, brewery.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = s.GetInventoryItem(ctx, item.ID)
		assert.True(t, errors.Is(err, ErrNotFound))

		detached, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, detached.BreweryID)
		assert.Equal(t, models.RoleMember, detached.Role)
	})
}

func TestBreweryMembership(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		brewery := newBrewery(t, s, "Team Brewery")
		user := newUser(t, s, "jo", "jo@team.example")

		added, err := s.AddUserToBrewery(ctx, user.ID, brewery.ID, models.RoleAdmin)
		require.NoError(t, err)
		require.NotNil(t, added.BreweryID)
		assert.Equal(t, brewery.ID, *added.BreweryID)
		assert.Equal(t, models.RoleAdmin, added.Role)

		members, err := s.ListBreweryUsers(ctx, brewery.ID)
		require.NoError(t, err)
		assert.Len(t, members, 1)

		removed, err := s.RemoveUserFromBrewery(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, removed.BreweryID)
		assert.Equal(t, models.RoleMember, removed.Role)

		_, err = s.AddUserToBrewery(ctx, "ghost", brewery.ID, models.RoleMember)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))

		_, err = s.AddUserToBrewery(ctx, user.ID, "ghost-brewery", models.RoleMember)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	})
}

func TestPriceHistory(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		brewery := newBrewery(t, s, "Price Brewery")
		hops := newItem(t, s, &brewery.ID, "Cascade Hops")
		malt := newItem(t, s, &brewery.ID, "Pilsner Malt")

		ghost := 9999
		_, err := s.CreatePriceHistoryEntry(ctx, &brewery.ID, InsertPriceHistoryEntry{
			IngredientID: &ghost,
			Price:        decimal.RequireFromString("12.00"),
			Date:         time.Now(),
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

		for i, price := range []string{"12.00", "13.50"} {
			_, err := s.CreatePriceHistoryEntry(ctx, &brewery.ID, InsertPriceHistoryEntry{
				IngredientID: &hops.ID,
				Price:        decimal.RequireFromString(price),
				Date:         time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)
		}
		_, err = s.CreatePriceHistoryEntry(ctx, &brewery.ID, InsertPriceHistoryEntry{
			IngredientID: &malt.ID,
			Price:        decimal.RequireFromString("4.25"),
			Date:         time.Now(),
		})
		require.NoError(t, err)

		forHops, err := s.PriceHistoryForIngredient(ctx, hops.ID)
		require.NoError(t, err)
		assert.Len(t, forHops, 2)

		all, err := s.ListPriceHistory(ctx, brewery.ID)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		newPrice := decimal.RequireFromString("14.00")
		updated, err := s.UpdatePriceHistoryEntry(ctx, forHops[0].ID, UpdatePriceHistoryEntry{Price: &newPrice})
		require.NoError(t, err)
		assert.True(t, updated.Price.Equal(newPrice))

		ok, err := s.DeletePriceHistoryEntry(ctx, forHops[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DeletePriceHistoryEntry(ctx, forHops[0].ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestIngredientSources(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		brewery := newBrewery(t, s, "Sourcing Brewery")

		_, err := s.CreateIngredientSource(ctx, &brewery.ID, InsertIngredientSource{Name: "Farm"})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

		lat := decimal.RequireFromString("50.93753000")
		lng := decimal.RequireFromString("6.96028000")
		source, err := s.CreateIngredientSource(ctx, &brewery.ID, InsertIngredientSource{
			Name:      "Hallertau Farm",
			Type:      "hops",
			Supplier:  "Hallertau GmbH",
			Location:  "Bavaria",
			Latitude:  &lat,
			Longitude: &lng,
		})
		require.NoError(t, err)
		require.NotNil(t, source.Latitude)
		assert.True(t, source.Latitude.Equal(lat))

		rating := 5
		updated, err := s.UpdateIngredientSource(ctx, source.ID, UpdateIngredientSource{Rating: &rating})
		require.NoError(t, err)
		require.NotNil(t, updated.Rating)
		assert.Equal(t, 5, *updated.Rating)
		assert.Equal(t, "Hallertau Farm", updated.Name)

		ok, err := s.DeleteIngredientSource(ctx, source.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSessions(t *testing.T) {
	forEachBackend(t, Options{}, func(t *testing.T, s Storage) {
		ctx := context.Background()
		now := time.Now().Truncate(time.Second)

		require.NoError(t, s.PutSession(ctx, models.Session{
			SID:    "sid-1",
			Sess:   `{"userID":"u1"}`,
			Expire: now.Add(time.Hour),
		}))

		// Upsert replaces the payload.
		require.NoError(t, s.PutSession(ctx, models.Session{
			SID:    "sid-1",
			Sess:   `{"userID":"u1","breweryID":"b1"}`,
			Expire: now.Add(2 * time.Hour),
		}))

		got, err := s.GetSession(ctx, "sid-1")
		require.NoError(t, err)
		assert.Contains(t, got.Sess, "breweryID")

		require.NoError(t, s.PutSession(ctx, models.Session{
			SID:    "sid-stale",
			Sess:   `{}`,
			Expire: now.Add(-time.Hour),
		}))

		swept, err := s.DeleteExpiredSessions(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), swept)

		_, err = s.GetSession(ctx, "sid-stale")
		assert.True(t, errors.Is(err, ErrNotFound))

		ok, err := s.DeleteSession(ctx, "sid-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.DeleteSession(ctx, "sid-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryStoreSeed(t *testing.T) {
	s := NewMemoryStore(Options{})
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	user, err := s.GetUserByUsername(ctx, "sam")
	require.NoError(t, err)
	assert.Equal(t, "sam@brewery.com", user.Email)

	// The demo credentials must verify, not just exist.
	ok, err := security.VerifyPassword("password", user.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	items, err := s.ListInventoryItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Cascade Hops", items[0].Name)
	assert.Equal(t, 1, items[0].ID)

	recipes, err := s.ListRecipes(ctx, "")
	require.NoError(t, err)
	assert.Len(t, recipes, 2)

	schedules, err := s.ListBrewingSchedules(ctx, "")
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, models.ScheduleInProgress, schedules[0].Status)
}
