package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/yeremiapane/smartserve/models"
	"gorm.io/gorm"
)

var ErrHierarchyCycle = errors.New("container table chain contains a cycle")

// TrueNumber follows the container chain of table up to its root and returns
// the root's number.
func TrueNumber(db *gorm.DB, table *models.Table) (uint, error) {
	current := *table
	visited := map[uint]bool{current.ID: true}
	for current.ContainerTableID != nil {
		parentID := *current.ContainerTableID
		if visited[parentID] {
			return 0, ErrHierarchyCycle
		}
		visited[parentID] = true

		var parent models.Table
		if err := db.Select("id", "number", "container_table_id").First(&parent, parentID).Error; err != nil {
			return 0, fmt.Errorf("load container table %d: %w", parentID, err)
		}
		current = parent
	}
	return current.Number, nil
}

// SubTableIDs returns every table that is transitively contained by tableID.
func SubTableIDs(db *gorm.DB, tableID uint) ([]uint, error) {
	var all []uint
	seen := map[uint]bool{tableID: true}
	frontier := []uint{tableID}
	for len(frontier) > 0 {
		var children []uint
		if err := db.Model(&models.Table{}).
			Where("container_table_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, id := range children {
			if seen[id] {
				continue
			}
			seen[id] = true
			all = append(all, id)
			frontier = append(frontier, id)
		}
	}
	sortIDs(all)
	return all, nil
}

// effectiveTableIDs is the table itself plus, for a root table, all of its
// sub-tables.
func effectiveTableIDs(db *gorm.DB, tableID uint) ([]uint, error) {
	var table models.Table
	if err := db.Select("id", "container_table_id").First(&table, tableID).Error; err != nil {
		return nil, err
	}
	ids := []uint{table.ID}
	if table.IsSubTable() {
		return ids, nil
	}
	subs, err := SubTableIDs(db, table.ID)
	if err != nil {
		return nil, err
	}
	return append(ids, subs...), nil
}

// EffectiveSeatIDs returns the seats that belong to tableID. For a root table
// this includes the seats of every sub-table below it.
func EffectiveSeatIDs(db *gorm.DB, tableID uint) ([]uint, error) {
	tableIDs, err := effectiveTableIDs(db, tableID)
	if err != nil {
		return nil, err
	}
	var seatIDs []uint
	if err := db.Model(&models.Seat{}).
		Where("table_id IN ?", tableIDs).
		Order("id").
		Pluck("id", &seatIDs).Error; err != nil {
		return nil, err
	}
	return seatIDs, nil
}

// EffectiveSeats loads the seats named by EffectiveSeatIDs.
func EffectiveSeats(db *gorm.DB, tableID uint) ([]models.Seat, error) {
	tableIDs, err := effectiveTableIDs(db, tableID)
	if err != nil {
		return nil, err
	}
	seats := []models.Seat{}
	err = db.Where("table_id IN ?", tableIDs).Order("table_id, location_index").Find(&seats).Error
	return seats, err
}

// EffectiveBookingIDs returns the bookings holding any effective seat of tableID.
func EffectiveBookingIDs(db *gorm.DB, tableID uint) ([]uint, error) {
	seatIDs, err := EffectiveSeatIDs(db, tableID)
	if err != nil {
		return nil, err
	}
	if len(seatIDs) == 0 {
		return []uint{}, nil
	}
	var bookingIDs []uint
	if err := db.Model(&models.SeatBooking{}).
		Where("seat_id IN ?", seatIDs).
		Distinct().
		Order("booking_id").
		Pluck("booking_id", &bookingIDs).Error; err != nil {
		return nil, err
	}
	return bookingIDs, nil
}

// BookingTableIDs returns the tables whose seats are attached to bookingID.
func BookingTableIDs(db *gorm.DB, bookingID uint) ([]uint, error) {
	var tableIDs []uint
	err := db.Model(&models.Seat{}).
		Joins("JOIN seat_bookings ON seat_bookings.seat_id = seats.id").
		Where("seat_bookings.booking_id = ?", bookingID).
		Distinct().
		Order("seats.table_id").
		Pluck("seats.table_id", &tableIDs).Error
	return tableIDs, err
}

// BookingRestaurantID returns the restaurant of the booking's tables, or nil
// when the booking has no seats yet.
func BookingRestaurantID(db *gorm.DB, bookingID uint) (*uint, error) {
	var restaurantIDs []uint
	err := db.Model(&models.Table{}).
		Joins("JOIN seats ON seats.table_id = tables.id").
		Joins("JOIN seat_bookings ON seat_bookings.seat_id = seats.id").
		Where("seat_bookings.booking_id = ?", bookingID).
		Order("seat_bookings.id").
		Limit(1).
		Pluck("tables.restaurant_id", &restaurantIDs).Error
	if err != nil || len(restaurantIDs) == 0 {
		return nil, err
	}
	return &restaurantIDs[0], nil
}

// BookingOrderIDs returns the orders placed by any seat of bookingID.
func BookingOrderIDs(db *gorm.DB, bookingID uint) ([]uint, error) {
	var orderIDs []uint
	err := db.Model(&models.Order{}).
		Joins("JOIN seat_bookings ON seat_bookings.id = orders.seat_booking_id").
		Where("seat_bookings.booking_id = ?", bookingID).
		Order("orders.id").
		Pluck("orders.id", &orderIDs).Error
	return orderIDs, err
}

// seatRestaurantID resolves the restaurant of a seat through its table.
func seatRestaurantID(db *gorm.DB, seatID uint) (uint, error) {
	var restaurantIDs []uint
	err := db.Model(&models.Table{}).
		Joins("JOIN seats ON seats.table_id = tables.id").
		Where("seats.id = ?", seatID).
		Pluck("tables.restaurant_id", &restaurantIDs).Error
	if err != nil {
		return 0, err
	}
	if len(restaurantIDs) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return restaurantIDs[0], nil
}

func sortIDs(ids []uint) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
