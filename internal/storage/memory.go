package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	pkgerrors "github.com/kolschhq/kolsch-backend/pkg/errors"
)

// MemoryStore keeps every entity in insertion-ordered maps. Each auto-id
// entity type owns an independent counter starting at 1; brewery and user ids
// are opaque GUIDs. A single mutex makes each call atomic under the HTTP
// layer's request concurrency.
type MemoryStore struct {
	mu   sync.Mutex
	opts Options

	users        map[string]models.User
	userOrder    []string
	breweries    map[string]models.Brewery
	breweryOrder []string

	inventory      map[int]models.InventoryItem
	inventoryOrder []int
	equipment      map[int]models.Equipment
	equipmentOrder []int
	recipes        map[int]models.Recipe
	recipeOrder    []int
	schedules      map[int]models.BrewingSchedule
	scheduleOrder  []int
	sources        map[int]models.IngredientSource
	sourceOrder    []int
	prices         map[int]models.PriceHistoryEntry
	priceOrder     []int

	sessions map[string]models.Session

	inventoryID int
	equipmentID int
	recipeID    int
	scheduleID  int
	sourceID    int
	priceID     int
}

var _ Storage = (*MemoryStore)(nil)

// NewMemoryStore builds an empty in-memory backend. Call Seed to load the
// demo fixture.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:        opts,
		users:       make(map[string]models.User),
		breweries:   make(map[string]models.Brewery),
		inventory:   make(map[int]models.InventoryItem),
		equipment:   make(map[int]models.Equipment),
		recipes:     make(map[int]models.Recipe),
		schedules:   make(map[int]models.BrewingSchedule),
		sources:     make(map[int]models.IngredientSource),
		prices:      make(map[int]models.PriceHistoryEntry),
		sessions:    make(map[string]models.Session),
		inventoryID: 1,
		equipmentID: 1,
		recipeID:    1,
		scheduleID:  1,
		sourceID:    1,
		priceID:     1,
	}
}

// Ping always succeeds: there is no backing service to lose.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// ---- users ----

func (m *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &user, nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findUserLocked(func(u models.User) bool { return u.Username == username })
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findUserLocked(func(u models.User) bool { return u.Email == email })
}

func (m *MemoryStore) findUserLocked(match func(models.User) bool) (*models.User, error) {
	for _, id := range m.userOrder {
		if u := m.users[id]; match(u) {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (m *MemoryStore) CreateUser(ctx context.Context, in InsertUser) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createUserLocked(in)
}

func (m *MemoryStore) createUserLocked(in InsertUser) (*models.User, error) {
	for _, id := range m.userOrder {
		existing := m.users[id]
		if existing.Username == in.Username {
			return nil, conflict("username already exists")
		}
		if existing.Email == in.Email {
			return nil, conflict("email already exists")
		}
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	now := time.Now()
	user := models.User{
		ID:              id,
		Username:        in.Username,
		Email:           in.Email,
		Password:        in.Password,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		BreweryID:       in.BreweryID,
		Role:            role,
		ProfileImageURL: in.ProfileImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.users[id] = user
	m.userOrder = append(m.userOrder, id)
	return &user, nil
}

// ---- breweries ----

func (m *MemoryStore) CreateBrewery(ctx context.Context, in InsertBrewery) (*models.Brewery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createBreweryLocked(in)
}

func (m *MemoryStore) createBreweryLocked(in InsertBrewery) (*models.Brewery, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := m.breweries[id]; exists {
		return nil, conflict("brewery id already exists")
	}
	now := time.Now()
	brewery := models.Brewery{
		ID:              id,
		Name:            in.Name,
		Type:            in.Type,
		Location:        in.Location,
		FoundedYear:     in.FoundedYear,
		Website:         in.Website,
		Phone:           in.Phone,
		BrewingCapacity: in.BrewingCapacity,
		Specialties:     in.Specialties,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.breweries[id] = brewery
	m.breweryOrder = append(m.breweryOrder, id)
	return &brewery, nil
}

func (m *MemoryStore) CreateBreweryWithOwner(ctx context.Context, brewery InsertBrewery, owner InsertUser) (*models.Brewery, *models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created, err := m.createBreweryLocked(brewery)
	if err != nil {
		return nil, nil, err
	}

	owner.BreweryID = &created.ID
	if owner.Role == "" {
		owner.Role = models.RoleOwner
	}
	user, err := m.createUserLocked(owner)
	if err != nil {
		// roll the brewery back so a signup failure leaves no orphan tenant
		delete(m.breweries, created.ID)
		m.breweryOrder = m.breweryOrder[:len(m.breweryOrder)-1]
		return nil, nil, err
	}
	return created, user, nil
}

func (m *MemoryStore) GetBrewery(ctx context.Context, id string) (*models.Brewery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	brewery, ok := m.breweries[id]
	if !ok {
		return nil, notFound("brewery")
	}
	return &brewery, nil
}

func (m *MemoryStore) UpdateBrewery(ctx context.Context, id string, in UpdateBrewery) (*models.Brewery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	brewery, ok := m.breweries[id]
	if !ok {
		return nil, notFound("brewery")
	}

	applyString(&brewery.Name, in.Name)
	applyString(&brewery.Type, in.Type)
	applyString(&brewery.Location, in.Location)
	applyPtr(&brewery.FoundedYear, in.FoundedYear)
	applyPtr(&brewery.Website, in.Website)
	applyPtr(&brewery.Phone, in.Phone)
	applyPtr(&brewery.BrewingCapacity, in.BrewingCapacity)
	applyPtr(&brewery.Specialties, in.Specialties)
	brewery.UpdatedAt = time.Now()

	m.breweries[id] = brewery
	return &brewery, nil
}

func (m *MemoryStore) DeleteBrewery(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.breweries[id]; !ok {
		return false, nil
	}

	if !m.opts.CascadeDelete && m.tenantHasChildrenLocked(id) {
		return false, conflict("brewery still owns records")
	}
	if m.opts.CascadeDelete {
		m.deleteTenantChildrenLocked(id)
	}

	delete(m.breweries, id)
	m.breweryOrder = removeString(m.breweryOrder, id)
	return true, nil
}

func (m *MemoryStore) tenantHasChildrenLocked(id string) bool {
	owns := func(ref *string) bool { return ref != nil && *ref == id }
	for _, v := range m.inventory {
		if owns(v.BreweryID) {
			return true
		}
	}
	for _, v := range m.equipment {
		if owns(v.BreweryID) {
			return true
		}
	}
	for _, v := range m.recipes {
		if owns(v.BreweryID) {
			return true
		}
	}
	for _, v := range m.schedules {
		if owns(v.BreweryID) {
			return true
		}
	}
	for _, v := range m.sources {
		if owns(v.BreweryID) {
			return true
		}
	}
	for _, v := range m.prices {
		if owns(v.BreweryID) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) deleteTenantChildrenLocked(id string) {
	owns := func(ref *string) bool { return ref != nil && *ref == id }
	for k, v := range m.prices {
		if owns(v.BreweryID) {
			delete(m.prices, k)
			m.priceOrder = removeInt(m.priceOrder, k)
		}
	}
	for k, v := range m.schedules {
		if owns(v.BreweryID) {
			delete(m.schedules, k)
			m.scheduleOrder = removeInt(m.scheduleOrder, k)
		}
	}
	for k, v := range m.inventory {
		if owns(v.BreweryID) {
			delete(m.inventory, k)
			m.inventoryOrder = removeInt(m.inventoryOrder, k)
		}
	}
	for k, v := range m.equipment {
		if owns(v.BreweryID) {
			delete(m.equipment, k)
			m.equipmentOrder = removeInt(m.equipmentOrder, k)
		}
	}
	for k, v := range m.recipes {
		if owns(v.BreweryID) {
			delete(m.recipes, k)
			m.recipeOrder = removeInt(m.recipeOrder, k)
		}
	}
	for k, v := range m.sources {
		if owns(v.BreweryID) {
			delete(m.sources, k)
			m.sourceOrder = removeInt(m.sourceOrder, k)
		}
	}
	for _, uid := range m.userOrder {
		user := m.users[uid]
		if user.BreweryID != nil && *user.BreweryID == id {
			user.BreweryID = nil
			user.Role = models.RoleMember
			user.UpdatedAt = time.Now()
			m.users[uid] = user
		}
	}
}

func (m *MemoryStore) ListBreweries(ctx context.Context) ([]models.Brewery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Brewery, 0, len(m.breweryOrder))
	for _, id := range m.breweryOrder {
		out = append(out, m.breweries[id])
	}
	return out, nil
}

func (m *MemoryStore) AddUserToBrewery(ctx context.Context, userID, breweryID, role string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("user %s does not exist", userID))
	}
	if _, ok := m.breweries[breweryID]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("brewery %s does not exist", breweryID))
	}

	user.BreweryID = &breweryID
	user.Role = role
	user.UpdatedAt = time.Now()
	m.users[userID] = user
	return &user, nil
}

func (m *MemoryStore) RemoveUserFromBrewery(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("user %s does not exist", userID))
	}

	user.BreweryID = nil
	user.Role = models.RoleMember
	user.UpdatedAt = time.Now()
	m.users[userID] = user
	return &user, nil
}

func (m *MemoryStore) ListBreweryUsers(ctx context.Context, breweryID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, id := range m.userOrder {
		user := m.users[id]
		if user.BreweryID != nil && *user.BreweryID == breweryID {
			out = append(out, user)
		}
	}
	return out, nil
}

// ---- inventory ----

func (m *MemoryStore) ListInventoryItems(ctx context.Context, breweryID string) ([]models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.InventoryItem, 0, len(m.inventoryOrder))
	for _, id := range m.inventoryOrder {
		item := m.inventory[id]
		if breweryID == "" || (item.BreweryID != nil && *item.BreweryID == breweryID) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetInventoryItem(ctx context.Context, id int) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.inventory[id]
	if !ok {
		return nil, notFound("inventory item")
	}
	return &item, nil
}

func (m *MemoryStore) CreateInventoryItem(ctx context.Context, breweryID *string, in InsertInventoryItem) (*models.InventoryItem, error) {
	if err := validateInsertInventoryItem(in); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.inventoryID
	m.inventoryID++
	now := time.Now()
	item := models.InventoryItem{
		ID:              id,
		BreweryID:       breweryID,
		Name:            in.Name,
		Quantity:        in.Quantity,
		CurrentQuantity: in.CurrentQuantity,
		MinimumQuantity: in.MinimumQuantity,
		Unit:            in.Unit,
		Location:        in.Location,
		ExpirationDate:  in.ExpirationDate,
		Cost:            in.Cost,
		Supplier:        in.Supplier,
		Barcode:         in.Barcode,
		Category:        in.Category,
		Notes:           in.Notes,
		ImageURL:        in.ImageURL,
		Status:          valueOr(in.Status, "good"),
		Forecast:        valueOr(in.Forecast, "Sufficient"),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.inventory[id] = item
	m.inventoryOrder = append(m.inventoryOrder, id)
	return &item, nil
}

func (m *MemoryStore) UpdateInventoryItem(ctx context.Context, id int, in UpdateInventoryItem) (*models.InventoryItem, error) {
	if err := validateUpdateInventoryItem(in); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.inventory[id]
	if !ok {
		return nil, notFound("inventory item")
	}

	applyString(&item.Name, in.Name)
	applyInt(&item.Quantity, in.Quantity)
	applyInt(&item.CurrentQuantity, in.CurrentQuantity)
	applyInt(&item.MinimumQuantity, in.MinimumQuantity)
	applyString(&item.Unit, in.Unit)
	applyPtr(&item.Location, in.Location)
	applyPtr(&item.ExpirationDate, in.ExpirationDate)
	applyPtr(&item.Cost, in.Cost)
	applyPtr(&item.Supplier, in.Supplier)
	applyPtr(&item.Barcode, in.Barcode)
	applyPtr(&item.Category, in.Category)
	applyPtr(&item.Notes, in.Notes)
	applyPtr(&item.ImageURL, in.ImageURL)
	applyString(&item.Status, in.Status)
	applyString(&item.Forecast, in.Forecast)
	item.UpdatedAt = time.Now()

	m.inventory[id] = item
	return &item, nil
}

func (m *MemoryStore) DeleteInventoryItem(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inventory[id]; !ok {
		return false, nil
	}
	delete(m.inventory, id)
	m.inventoryOrder = removeInt(m.inventoryOrder, id)
	return true, nil
}

// ---- equipment ----

func (m *MemoryStore) ListEquipment(ctx context.Context, breweryID string) ([]models.Equipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Equipment, 0, len(m.equipmentOrder))
	for _, id := range m.equipmentOrder {
		item := m.equipment[id]
		if breweryID == "" || (item.BreweryID != nil && *item.BreweryID == breweryID) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetEquipment(ctx context.Context, id int) (*models.Equipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.equipment[id]
	if !ok {
		return nil, notFound("equipment")
	}
	return &item, nil
}

func (m *MemoryStore) CreateEquipment(ctx context.Context, breweryID *string, in InsertEquipment) (*models.Equipment, error) {
	if in.Name == "" || in.Type == "" {
		return nil, invalid("name and type are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.equipmentID
	m.equipmentID++
	now := time.Now()
	item := models.Equipment{
		ID:              id,
		BreweryID:       breweryID,
		Name:            in.Name,
		Type:            in.Type,
		Capacity:        in.Capacity,
		Status:          valueOr(in.Status, models.EquipmentAvailable),
		Location:        in.Location,
		PurchaseDate:    in.PurchaseDate,
		LastMaintenance: in.LastMaintenance,
		NextMaintenance: in.NextMaintenance,
		Notes:           in.Notes,
		ImageURL:        in.ImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.equipment[id] = item
	m.equipmentOrder = append(m.equipmentOrder, id)
	return &item, nil
}

func (m *MemoryStore) UpdateEquipment(ctx context.Context, id int, in UpdateEquipment) (*models.Equipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.equipment[id]
	if !ok {
		return nil, notFound("equipment")
	}

	applyString(&item.Name, in.Name)
	applyString(&item.Type, in.Type)
	applyPtr(&item.Capacity, in.Capacity)
	applyString(&item.Status, in.Status)
	applyPtr(&item.Location, in.Location)
	applyPtr(&item.PurchaseDate, in.PurchaseDate)
	applyPtr(&item.LastMaintenance, in.LastMaintenance)
	applyPtr(&item.NextMaintenance, in.NextMaintenance)
	applyPtr(&item.Notes, in.Notes)
	applyPtr(&item.ImageURL, in.ImageURL)
	item.UpdatedAt = time.Now()

	m.equipment[id] = item
	return &item, nil
}

func (m *MemoryStore) DeleteEquipment(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.equipment[id]; !ok {
		return false, nil
	}
	delete(m.equipment, id)
	m.equipmentOrder = removeInt(m.equipmentOrder, id)
	return true, nil
}

// ---- recipes ----

func (m *MemoryStore) ListRecipes(ctx context.Context, breweryID string) ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Recipe, 0, len(m.recipeOrder))
	for _, id := range m.recipeOrder {
		item := m.recipes[id]
		if breweryID == "" || (item.BreweryID != nil && *item.BreweryID == breweryID) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetRecipe(ctx context.Context, id int) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.recipes[id]
	if !ok {
		return nil, notFound("recipe")
	}
	return &item, nil
}

func (m *MemoryStore) CreateRecipe(ctx context.Context, breweryID *string, in InsertRecipe) (*models.Recipe, error) {
	if err := validateInsertRecipe(in); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.recipeID
	m.recipeID++
	now := time.Now()
	item := models.Recipe{
		ID:               id,
		BreweryID:        breweryID,
		Name:             in.Name,
		Style:            in.Style,
		BatchSize:        in.BatchSize,
		TargetABV:        in.TargetABV,
		TargetIBU:        in.TargetIBU,
		SRM:              in.SRM,
		Ingredients:      append([]string(nil), in.Ingredients...),
		Instructions:     append([]string(nil), in.Instructions...),
		FermentationTemp: in.FermentationTemp,
		FermentationTime: in.FermentationTime,
		Description:      in.Description,
		ImageURL:         in.ImageURL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	m.recipes[id] = item
	m.recipeOrder = append(m.recipeOrder, id)
	return &item, nil
}

func (m *MemoryStore) UpdateRecipe(ctx context.Context, id int, in UpdateRecipe) (*models.Recipe, error) {
	if err := validateUpdateRecipe(in); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.recipes[id]
	if !ok {
		return nil, notFound("recipe")
	}

	applyString(&item.Name, in.Name)
	applyPtr(&item.Style, in.Style)
	applyPtr(&item.BatchSize, in.BatchSize)
	applyPtr(&item.TargetABV, in.TargetABV)
	applyPtr(&item.TargetIBU, in.TargetIBU)
	applyPtr(&item.SRM, in.SRM)
	if in.Ingredients != nil {
		item.Ingredients = append([]string(nil), in.Ingredients...)
	}
	if in.Instructions != nil {
		item.Instructions = append([]string(nil), in.Instructions...)
	}
	applyPtr(&item.FermentationTemp, in.FermentationTemp)
	applyPtr(&item.FermentationTime, in.FermentationTime)
	applyPtr(&item.Description, in.Description)
	applyPtr(&item.ImageURL, in.ImageURL)
	item.UpdatedAt = time.Now()

	m.recipes[id] = item
	return &item, nil
}

func (m *MemoryStore) DeleteRecipe(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[id]; !ok {
		return false, nil
	}
	delete(m.recipes, id)
	m.recipeOrder = removeInt(m.recipeOrder, id)
	return true, nil
}

// ---- brewing schedules ----

func (m *MemoryStore) ListBrewingSchedules(ctx context.Context, breweryID string) ([]models.BrewingSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.BrewingSchedule, 0, len(m.scheduleOrder))
	for _, id := range m.scheduleOrder {
		item := m.schedules[id]
		if breweryID == "" || (item.BreweryID != nil && *item.BreweryID == breweryID) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetBrewingSchedule(ctx context.Context, id int) (*models.BrewingSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.schedules[id]
	if !ok {
		return nil, notFound("brewing schedule")
	}
	return &item, nil
}

func (m *MemoryStore) CreateBrewingSchedule(ctx context.Context, breweryID *string, in InsertBrewingSchedule) (*models.BrewingSchedule, error) {
	if in.Title == "" {
		return nil, invalid("title is required")
	}
	if err := validateScheduleWindow(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	status := valueOr(in.Status, models.ScheduleScheduled)
	if err := validateScheduleStatus(status); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkScheduleRefsLocked(breweryID, in.RecipeID, in.EquipmentID); err != nil {
		return nil, err
	}

	id := m.scheduleID
	m.scheduleID++
	now := time.Now()
	item := models.BrewingSchedule{
		ID:          id,
		BreweryID:   breweryID,
		Title:       in.Title,
		Description: in.Description,
		RecipeID:    in.RecipeID,
		EquipmentID: in.EquipmentID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      status,
		BatchSize:   in.BatchSize,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.schedules[id] = item
	m.scheduleOrder = append(m.scheduleOrder, id)
	return &item, nil
}

func (m *MemoryStore) checkScheduleRefsLocked(breweryID *string, recipeID, equipmentID *int) error {
	if recipeID != nil {
		recipe, ok := m.recipes[*recipeID]
		if !ok || !sameTenant(recipe.BreweryID, breweryID) {
			return conflict("recipe does not exist in this brewery")
		}
	}
	if equipmentID != nil {
		equip, ok := m.equipment[*equipmentID]
		if !ok || !sameTenant(equip.BreweryID, breweryID) {
			return conflict("equipment does not exist in this brewery")
		}
	}
	return nil
}

func (m *MemoryStore) UpdateBrewingSchedule(ctx context.Context, id int, in UpdateBrewingSchedule) (*models.BrewingSchedule, error) {
	if in.Status != nil {
		if err := validateScheduleStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.schedules[id]
	if !ok {
		return nil, notFound("brewing schedule")
	}

	if err := m.checkScheduleRefsLocked(item.BreweryID, in.RecipeID, in.EquipmentID); err != nil {
		return nil, err
	}

	start := item.StartDate
	end := item.EndDate
	if in.StartDate != nil {
		start = *in.StartDate
	}
	if in.EndDate != nil {
		end = *in.EndDate
	}
	if err := validateScheduleWindow(start, end); err != nil {
		return nil, err
	}

	applyString(&item.Title, in.Title)
	applyPtr(&item.Description, in.Description)
	applyPtr(&item.RecipeID, in.RecipeID)
	applyPtr(&item.EquipmentID, in.EquipmentID)
	item.StartDate = start
	item.EndDate = end
	applyString(&item.Status, in.Status)
	applyPtr(&item.BatchSize, in.BatchSize)
	applyPtr(&item.Notes, in.Notes)
	item.UpdatedAt = time.Now()

	m.schedules[id] = item
	return &item, nil
}

func (m *MemoryStore) DeleteBrewingSchedule(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return false, nil
	}
	delete(m.schedules, id)
	m.scheduleOrder = removeInt(m.scheduleOrder, id)
	return true, nil
}

// ---- ingredient sources ----

func (m *MemoryStore) ListIngredientSources(ctx context.Context, breweryID string) ([]models.IngredientSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.IngredientSource, 0, len(m.sourceOrder))
	for _, id := range m.sourceOrder {
		item := m.sources[id]
		if breweryID == "" || (item.BreweryID != nil && *item.BreweryID == breweryID) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetIngredientSource(ctx context.Context, id int) (*models.IngredientSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.sources[id]
	if !ok {
		return nil, notFound("ingredient source")
	}
	return &item, nil
}

func (m *MemoryStore) CreateIngredientSource(ctx context.Context, breweryID *string, in InsertIngredientSource) (*models.IngredientSource, error) {
	if in.Name == "" || in.Type == "" || in.Supplier == "" || in.Location == "" {
		return nil, invalid("name, type, supplier and location are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.sourceID
	m.sourceID++
	now := time.Now()
	item := models.IngredientSource{
		ID:        id,
		BreweryID: breweryID,
		Name:      in.Name,
		Type:      in.Type,
		Supplier:  in.Supplier,
		Location:  in.Location,
		Contact:   in.Contact,
		Rating:    in.Rating,
		Notes:     in.Notes,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sources[id] = item
	m.sourceOrder = append(m.sourceOrder, id)
	return &item, nil
}

func (m *MemoryStore) UpdateIngredientSource(ctx context.Context, id int, in UpdateIngredientSource) (*models.IngredientSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.sources[id]
	if !ok {
		return nil, notFound("ingredient source")
	}

	applyString(&item.Name, in.Name)
	applyString(&item.Type, in.Type)
	applyString(&item.Supplier, in.Supplier)
	applyString(&item.Location, in.Location)
	applyPtr(&item.Contact, in.Contact)
	applyPtr(&item.Rating, in.Rating)
	applyPtr(&item.Notes, in.Notes)
	applyPtr(&item.Latitude, in.Latitude)
	applyPtr(&item.Longitude, in.Longitude)
	item.UpdatedAt = time.Now()

	m.sources[id] = item
	return &item, nil
}

func (m *MemoryStore) DeleteIngredientSource(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return false, nil
	}
	delete(m.sources, id)
	m.sourceOrder = removeInt(m.sourceOrder, id)
	return true, nil
}

// ---- price history ----

func (m *MemoryStore) ListPriceHistory(ctx context.Context, breweryID string) ([]models.PriceHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PriceHistoryEntry, 0, len(m.priceOrder))
	for _, id := range m.priceOrder {
		entry := m.prices[id]
		if breweryID == "" || (entry.BreweryID != nil && *entry.BreweryID == breweryID) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *MemoryStore) PriceHistoryForIngredient(ctx context.Context, ingredientID int) ([]models.PriceHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PriceHistoryEntry
	for _, id := range m.priceOrder {
		entry := m.prices[id]
		if entry.IngredientID != nil && *entry.IngredientID == ingredientID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetPriceHistoryEntry(ctx context.Context, id int) (*models.PriceHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.prices[id]
	if !ok {
		return nil, notFound("price history entry")
	}
	return &entry, nil
}

func (m *MemoryStore) CreatePriceHistoryEntry(ctx context.Context, breweryID *string, in InsertPriceHistoryEntry) (*models.PriceHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if in.IngredientID != nil {
		if _, ok := m.inventory[*in.IngredientID]; !ok {
			return nil, conflict("ingredient does not exist")
		}
	}

	id := m.priceID
	m.priceID++
	entry := models.PriceHistoryEntry{
		ID:           id,
		BreweryID:    breweryID,
		IngredientID: in.IngredientID,
		Price:        in.Price,
		Supplier:     in.Supplier,
		Date:         in.Date,
		Notes:        in.Notes,
		CreatedAt:    time.Now(),
	}
	m.prices[id] = entry
	m.priceOrder = append(m.priceOrder, id)
	return &entry, nil
}

func (m *MemoryStore) UpdatePriceHistoryEntry(ctx context.Context, id int, in UpdatePriceHistoryEntry) (*models.PriceHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.prices[id]
	if !ok {
		return nil, notFound("price history entry")
	}

	if in.IngredientID != nil {
		if _, exists := m.inventory[*in.IngredientID]; !exists {
			return nil, conflict("ingredient does not exist")
		}
	}

	applyPtr(&entry.IngredientID, in.IngredientID)
	if in.Price != nil {
		entry.Price = *in.Price
	}
	applyPtr(&entry.Supplier, in.Supplier)
	if in.Date != nil {
		entry.Date = *in.Date
	}
	applyPtr(&entry.Notes, in.Notes)

	m.prices[id] = entry
	return &entry, nil
}

func (m *MemoryStore) DeletePriceHistoryEntry(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prices[id]; !ok {
		return false, nil
	}
	delete(m.prices, id)
	m.priceOrder = removeInt(m.priceOrder, id)
	return true, nil
}

// ---- sessions ----

func (m *MemoryStore) GetSession(ctx context.Context, sid string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sid]
	if !ok {
		return nil, notFound("session")
	}
	return &session, nil
}

func (m *MemoryStore) PutSession(ctx context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SID] = session
	return nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, sid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sid]; !ok {
		return false, nil
	}
	delete(m.sessions, sid)
	return true, nil
}

func (m *MemoryStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for sid, session := range m.sessions {
		if session.Expire.Before(before) {
			delete(m.sessions, sid)
			removed++
		}
	}
	return removed, nil
}

// ---- merge helpers ----

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyPtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func valueOr(src *string, fallback string) string {
	if src != nil && *src != "" {
		return *src
	}
	return fallback
}

func removeInt(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func removeString(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
