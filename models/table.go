package models

import (
	"fmt"
	"time"
)

// Table belongs to one restaurant and may be grouped under a container table.
// A table with no container is a root table.
type Table struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Number           uint        `gorm:"not null;uniqueIndex:idx_restaurant_table_number" json:"number"`
	RestaurantID     uint        `gorm:"not null;index;uniqueIndex:idx_restaurant_table_number" json:"restaurant_id"`
	Restaurant       *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	ContainerTableID *uint       `gorm:"index" json:"container_table_id"`
	ContainerTable   *Table      `gorm:"foreignKey:ContainerTableID" json:"container_table,omitempty"`
	SubTables        []Table     `gorm:"foreignKey:ContainerTableID;constraint:OnDelete:SET NULL" json:"sub_tables,omitempty"`
	Seats            []Seat      `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE" json:"seats,omitempty"`
	CreatedAt        time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"not null" json:"updated_at"`
}

func (t *Table) IsSubTable() bool {
	return t.ContainerTableID != nil
}

func (t *Table) String() string {
	return fmt.Sprintf("Table %d", t.Number)
}
