package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/smartserve/config"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
)

const msgEmployeeNameTaken = "An employee with that first & last name already exists at this restaurant."

// AssignmentResult reports which users were attached to which restaurants.
// Rejected is only filled under the remove-after-add policy.
type AssignmentResult struct {
	Added    []Assignment `json:"added"`
	Rejected []Assignment `json:"rejected"`
}

type Assignment struct {
	RestaurantID uint `json:"restaurant_id"`
	UserID       uint `json:"user_id"`
}

// EmployeeService manages the restaurant employee relation. An employee's
// first and last name must be unique among the employees of each restaurant;
// Policy decides what happens to an assignment that would break this.
type EmployeeService struct {
	DB     *gorm.DB
	Policy string
}

func NewEmployeeService(db *gorm.DB, policy string) *EmployeeService {
	if policy == "" {
		policy = config.EmployeePolicyRejectBeforeAdd
	}
	return &EmployeeService{DB: db, Policy: policy}
}

// Employees lists the users assigned to a restaurant.
func (s *EmployeeService) Employees(ctx context.Context, restaurantID uint) ([]models.User, error) {
	db := s.DB.WithContext(ctx)
	if err := first(db, &models.Restaurant{}, "restaurant", restaurantID); err != nil {
		return nil, err
	}
	users := []models.User{}
	err := db.Joins("JOIN restaurant_employees ON restaurant_employees.user_id = users.id").
		Where("restaurant_employees.restaurant_id = ?", restaurantID).
		Order("users.last_name, users.first_name").
		Find(&users).Error
	return users, err
}

// AddEmployees attaches users to a restaurant. Users are handled in the given
// order, so of two new users sharing a name only the first can be added.
func (s *EmployeeService) AddEmployees(ctx context.Context, restaurantID uint, userIDs []uint) (*AssignmentResult, error) {
	result := &AssignmentResult{Added: []Assignment{}, Rejected: []Assignment{}}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var r models.Restaurant
		if err := first(tx, &r, "restaurant", restaurantID); err != nil {
			return err
		}
		users, err := loadUsers(tx, userIDs, "user_ids")
		if err != nil {
			return err
		}
		for i := range users {
			if err := s.assign(tx, &r, &users[i], result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveEmployee detaches a user from a restaurant.
func (s *EmployeeService) RemoveEmployee(ctx context.Context, restaurantID, userID uint) error {
	return inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var r models.Restaurant
		if err := first(tx, &r, "restaurant", restaurantID); err != nil {
			return err
		}
		var u models.User
		if err := first(tx, &u, "user", userID); err != nil {
			return err
		}
		assigned, err := isEmployee(tx, restaurantID, userID)
		if err != nil {
			return err
		}
		if !assigned {
			return notFound("restaurant employee", userID)
		}
		return tx.Model(&r).Association("Employees").Delete(&u)
	})
}

// SetUserRestaurants makes restaurantIDs the exact set of restaurants the
// user works at. Restaurants the user already works at are kept unchecked.
func (s *EmployeeService) SetUserRestaurants(ctx context.Context, userID uint, restaurantIDs []uint) (*AssignmentResult, error) {
	result := &AssignmentResult{Added: []Assignment{}, Rejected: []Assignment{}}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var u models.User
		if err := first(tx.Preload("Restaurants"), &u, "user", userID); err != nil {
			return err
		}
		restaurants, err := loadRestaurants(tx, restaurantIDs)
		if err != nil {
			return err
		}

		wanted := make(map[uint]bool, len(restaurants))
		for _, r := range restaurants {
			wanted[r.ID] = true
		}
		current := make(map[uint]bool, len(u.Restaurants))
		for i := range u.Restaurants {
			r := u.Restaurants[i]
			current[r.ID] = true
			if wanted[r.ID] {
				continue
			}
			if err := tx.Model(&r).Association("Employees").Delete(&u); err != nil {
				return err
			}
		}
		for i := range restaurants {
			if current[restaurants[i].ID] {
				continue
			}
			if err := s.assign(tx, &restaurants[i], &u, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *EmployeeService) assign(tx *gorm.DB, r *models.Restaurant, u *models.User, result *AssignmentResult) error {
	a := Assignment{RestaurantID: r.ID, UserID: u.ID}
	assigned, err := isEmployee(tx, r.ID, u.ID)
	if err != nil {
		return err
	}
	if assigned {
		return nil
	}

	taken, err := employeeNameTaken(tx, r.ID, u)
	if err != nil {
		return err
	}
	if taken {
		switch s.Policy {
		case config.EmployeePolicyRemoveAfterAdd:
			// The net effect of adding then removing is that the user is skipped.
			utils.InfoLogger.Printf("Employee %s not added to %s: name already used there", u.String(), r.String())
			result.Rejected = append(result.Rejected, a)
			return nil
		case config.EmployeePolicyRaiseOnAdd:
			return fmt.Errorf("employee %s at restaurant %d: %w", u.FullName(), r.ID, utils.ErrIntegrity)
		default:
			verr := &utils.ValidationError{}
			verr.Add("first_name", msgEmployeeNameTaken, utils.CodeUnique)
			verr.Add("last_name", msgEmployeeNameTaken, utils.CodeUnique)
			return verr
		}
	}

	row := map[string]interface{}{"restaurant_id": r.ID, "user_id": u.ID}
	if err := tx.Table("restaurant_employees").Create(row).Error; err != nil {
		return err
	}
	result.Added = append(result.Added, a)
	return nil
}

func isEmployee(tx *gorm.DB, restaurantID, userID uint) (bool, error) {
	var count int64
	err := tx.Table("restaurant_employees").
		Where("restaurant_id = ? AND user_id = ?", restaurantID, userID).
		Count(&count).Error
	return count > 0, err
}

func employeeNameTaken(tx *gorm.DB, restaurantID uint, u *models.User) (bool, error) {
	var count int64
	err := tx.Model(&models.User{}).
		Joins("JOIN restaurant_employees ON restaurant_employees.user_id = users.id").
		Where("restaurant_employees.restaurant_id = ?", restaurantID).
		Where("users.first_name = ? AND users.last_name = ? AND users.id <> ?", u.FirstName, u.LastName, u.ID).
		Count(&count).Error
	return count > 0, err
}

// loadUsers returns the users in ids order and fails on the first unknown id.
func loadUsers(tx *gorm.DB, ids []uint, field string) ([]models.User, error) {
	var found []models.User
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	users := make([]models.User, 0, len(ids))
	seen := map[uint]bool{}
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			verr := &utils.ValidationError{}
			referenceError(verr, field, id)
			return nil, verr
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, u)
	}
	return users, nil
}

func loadRestaurants(tx *gorm.DB, ids []uint) ([]models.Restaurant, error) {
	var found []models.Restaurant
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]models.Restaurant, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	restaurants := make([]models.Restaurant, 0, len(ids))
	seen := map[uint]bool{}
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			verr := &utils.ValidationError{}
			referenceError(verr, "restaurant_ids", id)
			return nil, verr
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		restaurants = append(restaurants, r)
	}
	return restaurants, nil
}
