package models

import (
	"fmt"
	"strings"
	"time"
)

// User is a restaurant employee. Users log in with their employee ID; there
// is no username or email field.
type User struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	EmployeeID  string       `gorm:"type:varchar(6);uniqueIndex;not null" json:"employee_id"`
	FirstName   string       `gorm:"type:varchar(75);not null" json:"first_name"`
	LastName    string       `gorm:"type:varchar(75);not null" json:"last_name"`
	Password    string       `gorm:"type:varchar(255);not null" json:"-"`
	IsActive    bool         `gorm:"not null" json:"is_active"`
	IsStaff     bool         `gorm:"not null" json:"is_staff"`
	IsSuperuser bool         `gorm:"not null" json:"is_superuser"`
	DateJoined  time.Time    `gorm:"not null" json:"date_joined"`
	LastLogin   *time.Time   `json:"last_login,omitempty"`
	Restaurants []Restaurant `gorm:"many2many:restaurant_employees;" json:"restaurants,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) ShortName() string {
	return u.FirstName
}

func (u *User) String() string {
	return fmt.Sprintf("%s - %s", u.EmployeeID, u.FullName())
}
