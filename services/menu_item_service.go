package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgMenuItemNameUnique = "Menu item with this name already exists."

type MenuItemInput struct {
	Name                     string `json:"name" validate:"required,min=2,max=100,display_name"`
	Description              string `json:"description" validate:"max=200"`
	AvailableAtRestaurantIDs []uint `json:"available_at_restaurant_ids"`
}

type MenuItemFilter struct {
	RestaurantID *uint
	Search       string
}

type MenuItemService struct {
	DB *gorm.DB
}

func NewMenuItemService(db *gorm.DB) *MenuItemService {
	return &MenuItemService{DB: db}
}

func (s *MenuItemService) List(ctx context.Context, f MenuItemFilter, page utils.PageRequest) (utils.Page[models.MenuItem], error) {
	q := s.DB.WithContext(ctx).Model(&models.MenuItem{}).Order("menu_items.name")
	if f.RestaurantID != nil {
		q = q.Joins("JOIN menu_item_restaurants ON menu_item_restaurants.menu_item_id = menu_items.id").
			Where("menu_item_restaurants.restaurant_id = ?", *f.RestaurantID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("menu_items.name LIKE ? OR menu_items.description LIKE ?", like, like)
	}
	return utils.Paginate[models.MenuItem](q, page)
}

func (s *MenuItemService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	var m models.MenuItem
	if err := first(s.DB.WithContext(ctx).Preload("AvailableAtRestaurants"), &m, "menu item", id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MenuItemService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	m := models.MenuItem{Name: in.Name, Description: in.Description}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		restaurants, err := validateMenuItem(tx, &m, in.AvailableAtRestaurantIDs)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
			return err
		}
		return replaceAvailability(tx, &m, restaurants)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Update replaces the name, description and availability set. Removing a
// restaurant does not touch orders already placed there.
func (s *MenuItemService) Update(ctx context.Context, id uint, in MenuItemInput) (*models.MenuItem, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var m models.MenuItem
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &m, "menu item", id); err != nil {
			return err
		}
		m.Name = in.Name
		m.Description = in.Description
		restaurants, err := validateMenuItem(tx, &m, in.AvailableAtRestaurantIDs)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return err
		}
		return replaceAvailability(tx, &m, restaurants)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete is refused while any order references the menu item.
func (s *MenuItemService) Delete(ctx context.Context, id uint) error {
	return inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var m models.MenuItem
		if err := first(tx, &m, "menu item", id); err != nil {
			return err
		}
		ordered, err := exists(tx, &models.Order{}, "menu_item_id = ?", id)
		if err != nil {
			return err
		}
		if ordered {
			return fmt.Errorf("menu item %d: %w", id, utils.ErrProtected)
		}
		if err := tx.Model(&m).Association("AvailableAtRestaurants").Clear(); err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
}

// SetAvailability adds or removes one restaurant from the item's
// availability set.
func (s *MenuItemService) SetAvailability(ctx context.Context, id, restaurantID uint, available bool) (*models.MenuItem, error) {
	var m models.MenuItem
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &m, "menu item", id); err != nil {
			return err
		}
		var r models.Restaurant
		if err := first(tx, &r, "restaurant", restaurantID); err != nil {
			return err
		}
		assoc := tx.Model(&m).Association("AvailableAtRestaurants")
		if available {
			return assoc.Append(&r)
		}
		return assoc.Delete(&r)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func validateMenuItem(tx *gorm.DB, m *models.MenuItem, restaurantIDs []uint) ([]models.Restaurant, error) {
	verr := &utils.ValidationError{}
	taken, err := exists(tx, &models.MenuItem{}, "name = ? AND id <> ?", m.Name, m.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		verr.Add("name", msgMenuItemNameUnique, utils.CodeUnique)
	}

	restaurants := []models.Restaurant{}
	if len(restaurantIDs) > 0 {
		if err := tx.Where("id IN ?", restaurantIDs).Find(&restaurants).Error; err != nil {
			return nil, err
		}
		found := make(map[uint]bool, len(restaurants))
		for _, r := range restaurants {
			found[r.ID] = true
		}
		for _, id := range restaurantIDs {
			if !found[id] {
				referenceError(verr, "available_at_restaurant_ids", id)
				break
			}
		}
	}
	return restaurants, verr.OrNil()
}

func replaceAvailability(tx *gorm.DB, m *models.MenuItem, restaurants []models.Restaurant) error {
	assoc := tx.Model(m).Association("AvailableAtRestaurants")
	var err error
	if len(restaurants) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(restaurants)
	}
	if err != nil {
		return err
	}
	m.AvailableAtRestaurants = restaurants
	return nil
}
