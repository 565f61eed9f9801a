package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kolschhq/kolsch-backend/pkg/db"
	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	dbtypes "github.com/kolschhq/kolsch-backend/pkg/db/types"
	pkgerrors "github.com/kolschhq/kolsch-backend/pkg/errors"
)

// GormStore satisfies Storage against the relational schema. Serial ids are
// assigned by the store itself; brewery, user and session ids are opaque
// strings supplied by (or generated for) the caller.
type GormStore struct {
	client *db.Client
	opts   Options
}

var _ Storage = (*GormStore)(nil)

// NewGormStore wraps an open database client.
func NewGormStore(client *db.Client, opts Options) *GormStore {
	return &GormStore{client: client, opts: opts}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.client.DB().WithContext(ctx)
}

func (s *GormStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func translate(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query "+what)
}

// ---- users ----

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, in InsertUser) (*models.User, error) {
	user := newUserModel(in)
	if err := s.conn(ctx).Create(user).Error; err != nil {
		return nil, mapUserWriteError(err)
	}
	return user, nil
}

func newUserModel(in InsertUser) *models.User {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	now := time.Now()
	return &models.User{
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
}

func mapUserWriteError(err error) error {
	switch {
	case pkgerrors.IsUniqueViolation(err, "users_username_key"):
		return conflict("username already exists")
	case pkgerrors.IsUniqueViolation(err, "users_email_key"):
		return conflict("email already exists")
	case pkgerrors.IsUniqueViolation(err, ""), errors.Is(err, gorm.ErrDuplicatedKey):
		return conflict("username or email already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert user")
}

// ---- breweries ----

func (s *GormStore) CreateBrewery(ctx context.Context, in InsertBrewery) (*models.Brewery, error) {
	brewery := newBreweryModel(in)
	if err := s.conn(ctx).Create(brewery).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert brewery")
	}
	return brewery, nil
}

func newBreweryModel(in InsertBrewery) *models.Brewery {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	return &models.Brewery{
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
}

func (s *GormStore) CreateBreweryWithOwner(ctx context.Context, breweryIn InsertBrewery, ownerIn InsertUser) (*models.Brewery, *models.User, error) {
	brewery := newBreweryModel(breweryIn)
	ownerIn.BreweryID = &brewery.ID
	if ownerIn.Role == "" {
		ownerIn.Role = models.RoleOwner
	}
	owner := newUserModel(ownerIn)

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(brewery).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert brewery")
		}
		if err := tx.Create(owner).Error; err != nil {
			return mapUserWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return brewery, owner, nil
}

func (s *GormStore) GetBrewery(ctx context.Context, id string) (*models.Brewery, error) {
	var brewery models.Brewery
	if err := s.conn(ctx).First(&brewery, "id = ?", id).Error; err != nil {
		return nil, translate(err, "brewery")
	}
	return &brewery, nil
}

func (s *GormStore) UpdateBrewery(ctx context.Context, id string, in UpdateBrewery) (*models.Brewery, error) {
	var brewery models.Brewery
	if err := s.conn(ctx).First(&brewery, "id = ?", id).Error; err != nil {
		return nil, translate(err, "brewery")
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

	if err := s.conn(ctx).Save(&brewery).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update brewery")
	}
	return &brewery, nil
}

var tenantOwnedModels = []any{
	&models.PriceHistoryEntry{},
	&models.BrewingSchedule{},
	&models.InventoryItem{},
	&models.Equipment{},
	&models.Recipe{},
	&models.IngredientSource{},
}

func (s *GormStore) DeleteBrewery(ctx context.Context, id string) (bool, error) {
	var exists int64
	if err := s.conn(ctx).Model(&models.Brewery{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query brewery")
	}
	if exists == 0 {
		return false, nil
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		for _, model := range tenantOwnedModels {
			if s.opts.CascadeDelete {
				if err := tx.Where("brewery_id = ?", id).Delete(model).Error; err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cascade delete")
				}
				continue
			}
			var n int64
			if err := tx.Model(model).Where("brewery_id = ?", id).Count(&n).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tenant rows")
			}
			if n > 0 {
				return conflict("brewery still owns records")
			}
		}

		if s.opts.CascadeDelete {
			detach := map[string]any{"brewery_id": nil, "role": models.RoleMember, "updated_at": time.Now()}
			if err := tx.Model(&models.User{}).Where("brewery_id = ?", id).Updates(detach).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach users")
			}
		}

		if err := tx.Where("id = ?", id).Delete(&models.Brewery{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete brewery")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *GormStore) ListBreweries(ctx context.Context) ([]models.Brewery, error) {
	var out []models.Brewery
	if err := s.conn(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list breweries")
	}
	return out, nil
}

func (s *GormStore) AddUserToBrewery(ctx context.Context, userID, breweryID, role string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("user %s does not exist", userID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query user")
	}
	var brewery models.Brewery
	if err := s.conn(ctx).First(&brewery, "id = ?", breweryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("brewery %s does not exist", breweryID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query brewery")
	}

	user.BreweryID = &breweryID
	user.Role = role
	user.UpdatedAt = time.Now()
	if err := s.conn(ctx).Save(&user).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return &user, nil
}

func (s *GormStore) RemoveUserFromBrewery(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("user %s does not exist", userID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query user")
	}

	user.BreweryID = nil
	user.Role = models.RoleMember
	user.UpdatedAt = time.Now()
	updates := map[string]any{"brewery_id": nil, "role": models.RoleMember, "updated_at": user.UpdatedAt}
	if err := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return &user, nil
}

func (s *GormStore) ListBreweryUsers(ctx context.Context, breweryID string) ([]models.User, error) {
	var out []models.User
	if err := s.conn(ctx).Where("brewery_id = ?", breweryID).Order("created_at").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brewery users")
	}
	return out, nil
}

func tenantScope(q *gorm.DB, breweryID string) *gorm.DB {
	if breweryID == "" {
		return q
	}
	return q.Where("brewery_id = ?", breweryID)
}

// ---- inventory ----

func (s *GormStore) ListInventoryItems(ctx context.Context, breweryID string) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	if err := tenantScope(s.conn(ctx), breweryID).Order("id").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory items")
	}
	return out, nil
}

func (s *GormStore) GetInventoryItem(ctx context.Context, id int) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "inventory item")
	}
	return &item, nil
}

func (s *GormStore) CreateInventoryItem(ctx context.Context, breweryID *string, in InsertInventoryItem) (*models.InventoryItem, error) {
	if err := validateInsertInventoryItem(in); err != nil {
		return nil, err
	}

	now := time.Now()
	item := models.InventoryItem{
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
	if err := s.conn(ctx).Create(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert inventory item")
	}
	return &item, nil
}

func (s *GormStore) UpdateInventoryItem(ctx context.Context, id int, in UpdateInventoryItem) (*models.InventoryItem, error) {
	if err := validateUpdateInventoryItem(in); err != nil {
		return nil, err
	}

	var item models.InventoryItem
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "inventory item")
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

	if err := s.conn(ctx).Save(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
	}
	return &item, nil
}

func (s *GormStore) DeleteInventoryItem(ctx context.Context, id int) (bool, error) {
	return s.deleteByID(ctx, &models.InventoryItem{}, id)
}

func (s *GormStore) deleteByID(ctx context.Context, model any, id int) (bool, error) {
	res := s.conn(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete record")
	}
	return res.RowsAffected > 0, nil
}

// ---- equipment ----

func (s *GormStore) ListEquipment(ctx context.Context, breweryID string) ([]models.Equipment, error) {
	var out []models.Equipment
	if err := tenantScope(s.conn(ctx), breweryID).Order("id").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list equipment")
	}
	return out, nil
}

func (s *GormStore) GetEquipment(ctx context.Context, id int) (*models.Equipment, error) {
	var item models.Equipment
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "equipment")
	}
	return &item, nil
}

func (s *GormStore) CreateEquipment(ctx context.Context, breweryID *string, in InsertEquipment) (*models.Equipment, error) {
	if in.Name == "" || in.Type == "" {
		return nil, invalid("name and type are required")
	}

	now := time.Now()
	item := models.Equipment{
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
	if err := s.conn(ctx).Create(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert equipment")
	}
	return &item, nil
}

func (s *GormStore) UpdateEquipment(ctx context.Context, id int, in UpdateEquipment) (*models.Equipment, error) {
	var item models.Equipment
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "equipment")
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

	if err := s.conn(ctx).Save(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update equipment")
	}
	return &item, nil
}

func (s *GormStore) DeleteEquipment(ctx context.Context, id int) (bool, error) {
	return s.deleteByID(ctx, &models.Equipment{}, id)
}

// ---- recipes ----

func (s *GormStore) ListRecipes(ctx context.Context, breweryID string) ([]models.Recipe, error) {
	var out []models.Recipe
	if err := tenantScope(s.conn(ctx), breweryID).Order("id").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recipes")
	}
	return out, nil
}

func (s *GormStore) GetRecipe(ctx context.Context, id int) (*models.Recipe, error) {
	var item models.Recipe
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "recipe")
	}
	return &item, nil
}

func (s *GormStore) CreateRecipe(ctx context.Context, breweryID *string, in InsertRecipe) (*models.Recipe, error) {
	if err := validateInsertRecipe(in); err != nil {
		return nil, err
	}

	now := time.Now()
	item := models.Recipe{
		BreweryID:        breweryID,
		Name:             in.Name,
		Style:            in.Style,
		BatchSize:        in.BatchSize,
		TargetABV:        in.TargetABV,
		TargetIBU:        in.TargetIBU,
		SRM:              in.SRM,
		Ingredients:      dbtypes.StringList(in.Ingredients),
		Instructions:     dbtypes.StringList(in.Instructions),
		FermentationTemp: in.FermentationTemp,
		FermentationTime: in.FermentationTime,
		Description:      in.Description,
		ImageURL:         in.ImageURL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.conn(ctx).Create(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert recipe")
	}
	return &item, nil
}

func (s *GormStore) UpdateRecipe(ctx context.Context, id int, in UpdateRecipe) (*models.Recipe, error) {
	if err := validateUpdateRecipe(in); err != nil {
		return nil, err
	}

	var item models.Recipe
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "recipe")
	}

	applyString(&item.Name, in.Name)
	applyPtr(&item.Style, in.Style)
	applyPtr(&item.BatchSize, in.BatchSize)
	applyPtr(&item.TargetABV, in.TargetABV)
	applyPtr(&item.TargetIBU, in.TargetIBU)
	applyPtr(&item.SRM, in.SRM)
	if in.Ingredients != nil {
		item.Ingredients = dbtypes.StringList(in.Ingredients)
	}
	if in.Instructions != nil {
		item.Instructions = dbtypes.StringList(in.Instructions)
	}
	applyPtr(&item.FermentationTemp, in.FermentationTemp)
	applyPtr(&item.FermentationTime, in.FermentationTime)
	applyPtr(&item.Description, in.Description)
	applyPtr(&item.ImageURL, in.ImageURL)
	item.UpdatedAt = time.Now()

	if err := s.conn(ctx).Save(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update recipe")
	}
	return &item, nil
}

func (s *GormStore) DeleteRecipe(ctx context.Context, id int) (bool, error) {
	return s.deleteByID(ctx, &models.Recipe{}, id)
}

// ---- brewing schedules ----

func (s *GormStore) ListBrewingSchedules(ctx context.Context, breweryID string) ([]models.BrewingSchedule, error) {
	var out []models.BrewingSchedule
	if err := tenantScope(s.conn(ctx), breweryID).Order("id").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brewing schedules")
	}
	return out, nil
}

func (s *GormStore) GetBrewingSchedule(ctx context.Context, id int) (*models.BrewingSchedule, error) {
	var item models.BrewingSchedule
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "brewing schedule")
	}
	return &item, nil
}

func (s *GormStore) checkScheduleRefs(ctx context.Context, breweryID *string, recipeID, equipmentID *int) error {
	if recipeID != nil {
		var recipe models.Recipe
		if err := s.conn(ctx).First(&recipe, "id = ?", *recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return conflict("recipe does not exist in this brewery")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query recipe")
		}
		if !sameTenant(recipe.BreweryID, breweryID) {
			return conflict("recipe does not exist in this brewery")
		}
	}
	if equipmentID != nil {
		var equip models.Equipment
		if err := s.conn(ctx).First(&equip, "id = ?", *equipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return conflict("equipment does not exist in this brewery")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query equipment")
		}
		if !sameTenant(equip.BreweryID, breweryID) {
			return conflict("equipment does not exist in this brewery")
		}
	}
	return nil
}

func (s *GormStore) CreateBrewingSchedule(ctx context.Context, breweryID *string, in InsertBrewingSchedule) (*models.BrewingSchedule, error) {
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
	if err := s.checkScheduleRefs(ctx, breweryID, in.RecipeID, in.EquipmentID); err != nil {
		return nil, err
	}

	now := time.Now()
	item := models.BrewingSchedule{
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
	if err := s.conn(ctx).Create(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert brewing schedule")
	}
	return &item, nil
}

func (s *GormStore) UpdateBrewingSchedule(ctx context.Context, id int, in UpdateBrewingSchedule) (*models.BrewingSchedule, error) {
	if in.Status != nil {
		if err := validateScheduleStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	var item models.BrewingSchedule
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "brewing schedule")
	}

	if err := s.checkScheduleRefs(ctx, item.BreweryID, in.RecipeID, in.EquipmentID); err != nil {
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

	if err := s.conn(ctx).Save(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update brewing schedule")
	}
	return &item, nil
}

func (s *GormStore) DeleteBrewingSchedule(ctx context.Context, id int) (bool, error) {
	return s.deleteByID(ctx, &models.BrewingSchedule{}, id)
}

// ---- ingredient sources ----

func (s *GormStore) ListIngredientSources(ctx context.Context, breweryID string) ([]models.IngredientSource, error) {
	var out []models.IngredientSource
	if err := tenantScope(s.conn(ctx), breweryID).Order("id").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredient sources")
	}
	return out, nil
}

func (s *GormStore) GetIngredientSource(ctx context.Context, id int) (*models.IngredientSource, error) {
	var item models.IngredientSource
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "ingredient source")
	}
	return &item, nil
}

func (s *GormStore) CreateIngredientSource(ctx context.Context, breweryID *string, in InsertIngredientSource) (*models.IngredientSource, error) {
	if in.Name == "" || in.Type == "" || in.Supplier == "" || in.Location == "" {
		return nil, invalid("name, type, supplier and location are required")
	}

	now := time.Now()
	item := models.IngredientSource{
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
	if err := s.conn(ctx).Create(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ingredient source")
	}
	return &item, nil
}

func (s *GormStore) UpdateIngredientSource(ctx context.Context, id int, in UpdateIngredientSource) (*models.IngredientSource, error) {
	var item models.IngredientSource
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "ingredient source")
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

	if err := s.conn(ctx).Save(&item).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ingredient source")
	}
	return &item, nil
}

func (s *GormStore) DeleteIngredientSource(ctx context.Context, id int) (bool, error) {
	return s.deleteByID(ctx, &models.IngredientSource{}, id)
}

// ---- price history ----

func (s *GormStore) ListPriceHistory(ctx context.Context, breweryID string) ([]models.PriceHistoryEntry, error) {
	var out []models.PriceHistoryEntry
	if err := tenantScope(s.conn(ctx), breweryID).Order("id").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price history")
	}
	return out, nil
}

func (s *GormStore) PriceHistoryForIngredient(ctx context.Context, ingredientID int) ([]models.PriceHistoryEntry, error) {
	var out []models.PriceHistoryEntry
	if err := s.conn(ctx).Where("ingredient_id = ?", ingredientID).Order("date").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price history")
	}
	return out, nil
}

func (s *GormStore) GetPriceHistoryEntry(ctx context.Context, id int) (*models.PriceHistoryEntry, error) {
	var entry models.PriceHistoryEntry
	if err := s.conn(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translate(err, "price history entry")
	}
	return &entry, nil
}

func (s *GormStore) ingredientExists(ctx context.Context, id int) error {
	var n int64
	if err := s.conn(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query inventory item")
	}
	if n == 0 {
		return conflict("ingredient does not exist")
	}
	return nil
}

func (s *GormStore) CreatePriceHistoryEntry(ctx context.Context, breweryID *string, in InsertPriceHistoryEntry) (*models.PriceHistoryEntry, error) {
	if in.IngredientID != nil {
		if err := s.ingredientExists(ctx, *in.IngredientID); err != nil {
			return nil, err
		}
	}

	entry := models.PriceHistoryEntry{
		BreweryID:    breweryID,
		IngredientID: in.IngredientID,
		Price:        in.Price,
		Supplier:     in.Supplier,
		Date:         in.Date,
		Notes:        in.Notes,
		CreatedAt:    time.Now(),
	}
	if err := s.conn(ctx).Create(&entry).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert price history entry")
	}
	return &entry, nil
}

func (s *GormStore) UpdatePriceHistoryEntry(ctx context.Context, id int, in UpdatePriceHistoryEntry) (*models.PriceHistoryEntry, error) {
	var entry models.PriceHistoryEntry
	if err := s.conn(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translate(err, "price history entry")
	}

	if in.IngredientID != nil {
		if err := s.ingredientExists(ctx, *in.IngredientID); err != nil {
			return nil, err
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

	if err := s.conn(ctx).Save(&entry).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update price history entry")
	}
	return &entry, nil
}

func (s *GormStore) DeletePriceHistoryEntry(ctx context.Context, id int) (bool, error) {
	return s.deleteByID(ctx, &models.PriceHistoryEntry{}, id)
}

// ---- sessions ----

func (s *GormStore) GetSession(ctx context.Context, sid string) (*models.Session, error) {
	var session models.Session
	if err := s.conn(ctx).First(&session, "sid = ?", sid).Error; err != nil {
		return nil, translate(err, "session")
	}
	return &session, nil
}

func (s *GormStore) PutSession(ctx context.Context, session models.Session) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sid"}},
		UpdateAll: true,
	}).Create(&session).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert session")
	}
	return nil
}

func (s *GormStore) DeleteSession(ctx context.Context, sid string) (bool, error) {
	res := s.conn(ctx).Where("sid = ?", sid).Delete(&models.Session{})
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete session")
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res := s.conn(ctx).Where("expire < ?", before).Delete(&models.Session{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "sweep sessions")
	}
	return res.RowsAffected, nil
}
