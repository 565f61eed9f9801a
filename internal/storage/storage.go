package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kolschhq/kolsch-backend/pkg/config"
	"github.com/kolschhq/kolsch-backend/pkg/db"
	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	pkgerrors "github.com/kolschhq/kolsch-backend/pkg/errors"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

// ErrNotFound is the designated non-fatal "no such record" result. Backends
// wrap it in a NOT_FOUND coded error, so both errors.Is and pkg/errors code
// checks work on the return value.
var ErrNotFound = errors.New("record not found")

// Storage is the capability contract both backends satisfy. Reads on missing
// ids return ErrNotFound (deletes return false); backend connectivity
// failures surface as coded DEPENDENCY/INTERNAL errors.
//
// List operations take a brewery id filter: the empty string returns rows
// across all tenants and is reserved for trusted internal callers.
type Storage interface {
	// Users and identity. Username/email lookups are case-preserving exact
	// matches; uniqueness is global, not per tenant.
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, in InsertUser) (*models.User, error)

	// Breweries (tenant roots).
	CreateBrewery(ctx context.Context, in InsertBrewery) (*models.Brewery, error)
	// CreateBreweryWithOwner creates a brewery and its first user as one
	// atomic step: both records exist afterwards, or neither does.
	CreateBreweryWithOwner(ctx context.Context, brewery InsertBrewery, owner InsertUser) (*models.Brewery, *models.User, error)
	GetBrewery(ctx context.Context, id string) (*models.Brewery, error)
	UpdateBrewery(ctx context.Context, id string, in UpdateBrewery) (*models.Brewery, error)
	DeleteBrewery(ctx context.Context, id string) (bool, error)
	ListBreweries(ctx context.Context) ([]models.Brewery, error)
	// AddUserToBrewery and RemoveUserFromBrewery fail with an INTERNAL coded
	// error when the user or brewery is missing: route-level validation is
	// expected to have confirmed existence already.
	AddUserToBrewery(ctx context.Context, userID, breweryID, role string) (*models.User, error)
	RemoveUserFromBrewery(ctx context.Context, userID string) (*models.User, error)
	ListBreweryUsers(ctx context.Context, breweryID string) ([]models.User, error)

	// Inventory.
	ListInventoryItems(ctx context.Context, breweryID string) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id int) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, breweryID *string, in InsertInventoryItem) (*models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id int, in UpdateInventoryItem) (*models.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id int) (bool, error)

	// Equipment.
	ListEquipment(ctx context.Context, breweryID string) ([]models.Equipment, error)
	GetEquipment(ctx context.Context, id int) (*models.Equipment, error)
	CreateEquipment(ctx context.Context, breweryID *string, in InsertEquipment) (*models.Equipment, error)
	UpdateEquipment(ctx context.Context, id int, in UpdateEquipment) (*models.Equipment, error)
	DeleteEquipment(ctx context.Context, id int) (bool, error)

	// Recipes.
	ListRecipes(ctx context.Context, breweryID string) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id int) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, breweryID *string, in InsertRecipe) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id int, in UpdateRecipe) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id int) (bool, error)

	// Brewing schedules.
	ListBrewingSchedules(ctx context.Context, breweryID string) ([]models.BrewingSchedule, error)
	GetBrewingSchedule(ctx context.Context, id int) (*models.BrewingSchedule, error)
	CreateBrewingSchedule(ctx context.Context, breweryID *string, in InsertBrewingSchedule) (*models.BrewingSchedule, error)
	UpdateBrewingSchedule(ctx context.Context, id int, in UpdateBrewingSchedule) (*models.BrewingSchedule, error)
	DeleteBrewingSchedule(ctx context.Context, id int) (bool, error)

	// Ingredient sources.
	ListIngredientSources(ctx context.Context, breweryID string) ([]models.IngredientSource, error)
	GetIngredientSource(ctx context.Context, id int) (*models.IngredientSource, error)
	CreateIngredientSource(ctx context.Context, breweryID *string, in InsertIngredientSource) (*models.IngredientSource, error)
	UpdateIngredientSource(ctx context.Context, id int, in UpdateIngredientSource) (*models.IngredientSource, error)
	DeleteIngredientSource(ctx context.Context, id int) (bool, error)

	// Ingredient price history.
	ListPriceHistory(ctx context.Context, breweryID string) ([]models.PriceHistoryEntry, error)
	PriceHistoryForIngredient(ctx context.Context, ingredientID int) ([]models.PriceHistoryEntry, error)
	GetPriceHistoryEntry(ctx context.Context, id int) (*models.PriceHistoryEntry, error)
	CreatePriceHistoryEntry(ctx context.Context, breweryID *string, in InsertPriceHistoryEntry) (*models.PriceHistoryEntry, error)
	UpdatePriceHistoryEntry(ctx context.Context, id int, in UpdatePriceHistoryEntry) (*models.PriceHistoryEntry, error)
	DeletePriceHistoryEntry(ctx context.Context, id int) (bool, error)

	// Sessions. Lifecycle policy (TTLs, sweeping cadence) belongs to the
	// auth collaborator; this layer only persists the rows.
	GetSession(ctx context.Context, sid string) (*models.Session, error)
	PutSession(ctx context.Context, session models.Session) error
	DeleteSession(ctx context.Context, sid string) (bool, error)
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)

	// Ping reports backend reachability for health checks.
	Ping(ctx context.Context) error
}

// New selects a backend from configuration. The returned Storage is built
// once at boot and shared for the life of the process.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Storage, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		return NewMemoryStore(Options{CascadeDelete: cfg.DB.CascadeDelete}), nil
	default:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "connect to database")
		}
		return NewGormStore(client, Options{CascadeDelete: cfg.DB.CascadeDelete}), nil
	}
}

// Options carries backend-independent behavior switches.
type Options struct {
	// CascadeDelete: when true, deleting a brewery removes its owned rows;
	// when false, deletion is refused with CONFLICT while children exist.
	CascadeDelete bool
}

// InsertUser is the caller-supplied shape for user creation. Password must
// already be hashed by the auth collaborator.
type InsertUser struct {
	ID              string
	Username        string
	Email           string
	Password        string
	FirstName       string
	LastName        string
	BreweryID       *string
	Role            string
	ProfileImageURL *string
}

// InsertBrewery carries the tenant-root fields supplied at signup. ID may be
// empty, in which case the backend assigns a random GUID.
type InsertBrewery struct {
	ID              string
	Name            string
	Type            string
	Location        string
	FoundedYear     *int
	Website         *string
	Phone           *string
	BrewingCapacity *string
	Specialties     *string
}

// UpdateBrewery is a partial update: nil fields are left untouched.
type UpdateBrewery struct {
	Name            *string
	Type            *string
	Location        *string
	FoundedYear     *int
	Website         *string
	Phone           *string
	BrewingCapacity *string
	Specialties     *string
}

type InsertInventoryItem struct {
	Name            string
	Quantity        int
	CurrentQuantity int
	MinimumQuantity int
	Unit            string
	Location        *string
	ExpirationDate  *time.Time
	Cost            *decimal.Decimal
	Supplier        *string
	Barcode         *string
	Category        *string
	Notes           *string
	ImageURL        *string
	Status          *string
	Forecast        *string
}

type UpdateInventoryItem struct {
	Name            *string
	Quantity        *int
	CurrentQuantity *int
	MinimumQuantity *int
	Unit            *string
	Location        *string
	ExpirationDate  *time.Time
	Cost            *decimal.Decimal
	Supplier        *string
	Barcode         *string
	Category        *string
	Notes           *string
	ImageURL        *string
	Status          *string
	Forecast        *string
}

type InsertEquipment struct {
	Name            string
	Type            string
	Capacity        *string
	Status          *string
	Location        *string
	PurchaseDate    *time.Time
	LastMaintenance *time.Time
	NextMaintenance *time.Time
	Notes           *string
	ImageURL        *string
}

type UpdateEquipment struct {
	Name            *string
	Type            *string
	Capacity        *string
	Status          *string
	Location        *string
	PurchaseDate    *time.Time
	LastMaintenance *time.Time
	NextMaintenance *time.Time
	Notes           *string
	ImageURL        *string
}

type InsertRecipe struct {
	Name             string
	Style            *string
	BatchSize        *decimal.Decimal
	TargetABV        *decimal.Decimal
	TargetIBU        *int
	SRM              *int
	Ingredients      []string
	Instructions     []string
	FermentationTemp *string
	FermentationTime *string
	Description      *string
	ImageURL         *string
}

type UpdateRecipe struct {
	Name             *string
	Style            *string
	BatchSize        *decimal.Decimal
	TargetABV        *decimal.Decimal
	TargetIBU        *int
	SRM              *int
	Ingredients      []string
	Instructions     []string
	FermentationTemp *string
	FermentationTime *string
	Description      *string
	ImageURL         *string
}

type InsertBrewingSchedule struct {
	Title       string
	Description *string
	RecipeID    *int
	EquipmentID *int
	StartDate   time.Time
	EndDate     time.Time
	Status      *string
	BatchSize   *decimal.Decimal
	Notes       *string
}

type UpdateBrewingSchedule struct {
	Title       *string
	Description *string
	RecipeID    *int
	EquipmentID *int
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
	BatchSize   *decimal.Decimal
	Notes       *string
}

type InsertIngredientSource struct {
	Name      string
	Type      string
	Supplier  string
	Location  string
	Contact   *string
	Rating    *int
	Notes     *string
	Latitude  *decimal.Decimal
	Longitude *decimal.Decimal
}

type UpdateIngredientSource struct {
	Name      *string
	Type      *string
	Supplier  *string
	Location  *string
	Contact   *string
	Rating    *int
	Notes     *string
	Latitude  *decimal.Decimal
	Longitude *decimal.Decimal
}

type InsertPriceHistoryEntry struct {
	IngredientID *int
	Price        decimal.Decimal
	Supplier     *string
	Date         time.Time
	Notes        *string
}

type UpdatePriceHistoryEntry struct {
	IngredientID *int
	Price        *decimal.Decimal
	Supplier     *string
	Date         *time.Time
	Notes        *string
}

func notFound(what string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrNotFound, what+" not found")
}

func conflict(msg string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, msg)
}

func invalid(msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg)
}
