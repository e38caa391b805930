package models

import (
	"fmt"
	"time"
)

type Seat struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TableID       uint      `gorm:"not null;uniqueIndex:idx_table_location_index" json:"table_id"`
	Table         *Table    `gorm:"foreignKey:TableID" json:"table,omitempty"`
	LocationIndex uint      `gorm:"not null;uniqueIndex:idx_table_location_index" json:"location_index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *Seat) String() string {
	return fmt.Sprintf("Seat %d of table %d", s.LocationIndex, s.TableID)
}
