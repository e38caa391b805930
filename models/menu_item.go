package models

import "time"

type MenuItem struct {
	ID                     uint         `gorm:"primaryKey" json:"id"`
	Name                   string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description            string       `gorm:"type:varchar(200);not null;default:''" json:"description"`
	AvailableAtRestaurants []Restaurant `gorm:"many2many:menu_item_restaurants;" json:"available_at_restaurants,omitempty"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}

func (m *MenuItem) String() string {
	return m.Name
}
