package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgEmployeeIDUnique  = "A user with that Employee ID already exists."
	msgEmployeeRenamed   = "An employee with that first & last name already exists at one of the restaurants that this employee is assigned to."
	employeeIDLength     = 6
	employeeIDMaxRetries = 10
)

var ErrEmployeeIDExhausted = errors.New("could not generate an unused employee id")

// UserInput holds the editable profile of a user. An empty EmployeeID is
// replaced by a generated one on create and left unchanged on update.
type UserInput struct {
	EmployeeID  string `json:"employee_id" validate:"omitempty,len=6,numeric"`
	FirstName   string `json:"first_name" validate:"required,max=75"`
	LastName    string `json:"last_name" validate:"required,max=75"`
	IsActive    *bool  `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type UserCreateInput struct {
	UserInput
	Password string `json:"password" validate:"required"`
}

type UserFilter struct {
	IsStaff      *bool
	IsActive     *bool
	RestaurantID *uint
	Search       string
}

type UserService struct {
	DB                 *gorm.DB
	PasswordSimilarity float64
}

func NewUserService(db *gorm.DB, passwordSimilarity float64) *UserService {
	return &UserService{DB: db, PasswordSimilarity: passwordSimilarity}
}

func (s *UserService) List(ctx context.Context, f UserFilter, page utils.PageRequest) (utils.Page[models.User], error) {
	q := s.DB.WithContext(ctx).Model(&models.User{}).Order("users.employee_id")
	if f.IsStaff != nil {
		q = q.Where("users.is_staff = ?", *f.IsStaff)
	}
	if f.IsActive != nil {
		q = q.Where("users.is_active = ?", *f.IsActive)
	}
	if f.RestaurantID != nil {
		q = q.Joins("JOIN restaurant_employees ON restaurant_employees.user_id = users.id").
			Where("restaurant_employees.restaurant_id = ?", *f.RestaurantID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("users.employee_id LIKE ? OR users.first_name LIKE ? OR users.last_name LIKE ?", like, like, like)
	}
	return utils.Paginate[models.User](q, page)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := first(s.DB.WithContext(ctx).Preload("Restaurants"), &u, "user", id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmployeeID looks a user up by the identifier used to log in.
func (s *UserService) GetByEmployeeID(ctx context.Context, employeeID string) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).Where("employee_id = ?", employeeID).First(&u).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("user %q: %w", employeeID, gorm.ErrRecordNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Create(ctx context.Context, in UserCreateInput) (*models.User, error) {
	verr := validateStruct(in)
	verr.Merge(utils.ValidatePassword(in.Password, s.PasswordSimilarity, in.EmployeeID, in.FirstName, in.LastName))
	if verr.HasErrors() {
		return nil, verr
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		EmployeeID:  in.EmployeeID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Password:    hash,
		IsActive:    true,
		IsStaff:     in.IsStaff,
		IsSuperuser: in.IsSuperuser,
		DateJoined:  time.Now().UTC(),
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	normaliseUser(&u)

	err = inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if u.EmployeeID == "" {
			id, err := generateEmployeeID(tx)
			if err != nil {
				return err
			}
			u.EmployeeID = id
		}
		if err := validateUser(tx, &u, nil); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&u).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("User created: %s", u.String())
	return &u, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	var u models.User
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := first(tx, &u, "user", id); err != nil {
			return err
		}
		previous := u
		if in.EmployeeID != "" {
			u.EmployeeID = in.EmployeeID
		}
		u.FirstName = in.FirstName
		u.LastName = in.LastName
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
		u.IsStaff = in.IsStaff
		u.IsSuperuser = in.IsSuperuser
		normaliseUser(&u)
		if err := validateUser(tx, &u, &previous); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetPassword validates and stores a new password. Every login token of the
// user is revoked.
func (s *UserService) SetPassword(ctx context.Context, id uint, password string) error {
	return inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var u models.User
		if err := first(tx, &u, "user", id); err != nil {
			return err
		}
		if err := utils.ValidatePassword(password, s.PasswordSimilarity, u.EmployeeID, u.FirstName, u.LastName).OrNil(); err != nil {
			return err
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := tx.Model(&u).Update("password", hash).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&models.AuthToken{}).Error
	})
}

// Delete removes the user, its restaurant assignments and its tokens.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return inTx(ctx, s.DB, func(tx *gorm.DB) error {
		var u models.User
		if err := first(tx, &u, "user", id); err != nil {
			return err
		}
		if err := tx.Model(&u).Association("Restaurants").Clear(); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
}

// EnsureSuperuser creates a superuser with the given employee id unless one
// already exists. It is used to bootstrap a fresh database.
func (s *UserService) EnsureSuperuser(ctx context.Context, employeeID, firstName, lastName, password string) (*models.User, bool, error) {
	existing, err := s.GetByEmployeeID(ctx, employeeID)
	if err == nil {
		return existing, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}
	u, err := s.Create(ctx, UserCreateInput{
		UserInput: UserInput{
			EmployeeID:  employeeID,
			FirstName:   firstName,
			LastName:    lastName,
			IsSuperuser: true,
		},
		Password: password,
	})
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func normaliseUser(u *models.User) {
	if u.IsSuperuser {
		u.IsStaff = true
	}
}

// validateUser checks employee id uniqueness and, when the name changed,
// that no restaurant the user works at already has an employee of that name.
func validateUser(tx *gorm.DB, u *models.User, previous *models.User) error {
	verr := &utils.ValidationError{}
	taken, err := exists(tx, &models.User{}, "employee_id = ? AND id <> ?", u.EmployeeID, u.ID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("employee_id", msgEmployeeIDUnique, utils.CodeUnique)
	}

	renamed := previous != nil && (previous.FirstName != u.FirstName || previous.LastName != u.LastName)
	if renamed {
		var clashes int64
		err := tx.Model(&models.User{}).
			Joins("JOIN restaurant_employees ON restaurant_employees.user_id = users.id").
			Where("restaurant_employees.restaurant_id IN (?)", tx.Table("restaurant_employees").
				Select("restaurant_id").
				Where("user_id = ?", u.ID)).
			Where("users.first_name = ? AND users.last_name = ? AND users.id <> ?", u.FirstName, u.LastName, u.ID).
			Count(&clashes).Error
		if err != nil {
			return err
		}
		if clashes > 0 {
			verr.Add("first_name", msgEmployeeRenamed, utils.CodeUnique)
			verr.Add("last_name", msgEmployeeRenamed, utils.CodeUnique)
		}
	}
	return verr.OrNil()
}

// generateEmployeeID takes the first six decimal digits of a random UUID's
// integer value and retries while the id is already used.
func generateEmployeeID(tx *gorm.DB) (string, error) {
	for i := 0; i < employeeIDMaxRetries; i++ {
		id := NewEmployeeID()
		taken, err := exists(tx, &models.User{}, "employee_id = ?", id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrEmployeeIDExhausted
}

// NewEmployeeID returns a random 6 digit employee id.
func NewEmployeeID() string {
	u := uuid.New()
	digits := new(big.Int).SetBytes(u[:]).String()
	for len(digits) < employeeIDLength {
		digits = "0" + digits
	}
	return digits[:employeeIDLength]
}
