package models

import "time"

type Restaurant struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	Employees []User     `gorm:"many2many:restaurant_employees;" json:"employees,omitempty"`
	Tables    []Table    `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"tables,omitempty"`
	MenuItems []MenuItem `gorm:"many2many:menu_item_restaurants;" json:"menu_items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (r *Restaurant) String() string {
	return r.Name
}
