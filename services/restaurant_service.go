package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RestaurantInput struct {
	Name string `json:"name" validate:"required,min=2,max=100,display_name"`
}

type RestaurantFilter struct {
	Search string
}

type RestaurantService struct {
	DB *gorm.DB
}

func NewRestaurantService(db *gorm.DB) *RestaurantService {
	return &RestaurantService{DB: db}
}

func (s *RestaurantService) List(ctx context.Context, f RestaurantFilter, page utils.PageRequest) (utils.Page[models.Restaurant], error) {
	q := s.DB.WithContext(ctx).Model(&models.Restaurant{}).Order("name, id")
	if f.Search != "" {
		q = q.Where("name LIKE ?", "%"+f.Search+"%")
	}
	return utils.Paginate[models.Restaurant](q, page)
}

func (s *RestaurantService) Get(ctx context.Context, id uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := first(s.DB.WithContext(ctx), &r, "restaurant", id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RestaurantService) Create(ctx context.Context, in RestaurantInput) (*models.Restaurant, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	r := models.Restaurant{Name: in.Name}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&r).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Restaurant created: %s (id=%d)", r.Name, r.ID)
	return &r, nil
}

func (s *RestaurantService) Update(ctx context.Context, id uint, in RestaurantInput) (*models.Restaurant, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var r models.Restaurant
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &r, "restaurant", id); err != nil {
			return err
		}
		r.Name = in.Name
		return tx.Omit(clause.Associations).Save(&r).Error
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes the restaurant together with its tables and their seats.
// It is refused while any of those seats is held by a seat booking.
func (s *RestaurantService) Delete(ctx context.Context, id uint) error {
	return inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var r models.Restaurant
		if err := first(tx, &r, "restaurant", id); err != nil {
			return err
		}

		var tableIDs []uint
		if err := tx.Model(&models.Table{}).Where("restaurant_id = ?", id).Pluck("id", &tableIDs).Error; err != nil {
			return err
		}
		if len(tableIDs) > 0 {
			booked, err := exists(tx, &models.SeatBooking{},
				"seat_id IN (?)", tx.Model(&models.Seat{}).Select("id").Where("table_id IN ?", tableIDs))
			if err != nil {
				return err
			}
			if booked {
				return fmt.Errorf("restaurant %d: %w", id, utils.ErrProtected)
			}
			if err := tx.Where("table_id IN ?", tableIDs).Delete(&models.Seat{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Table{}).Where("id IN ?", tableIDs).Update("container_table_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", tableIDs).Delete(&models.Table{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&r).Association("Employees").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&r).Association("MenuItems").Clear(); err != nil {
			return err
		}
		return tx.Delete(&r).Error
	})
}

// Tables lists the restaurant's tables ordered by number.
func (s *RestaurantService) Tables(ctx context.Context, id uint) ([]models.Table, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	tables := []models.Table{}
	err := db.Where("restaurant_id = ?", id).Order("number").Find(&tables).Error
	return tables, err
}
