package models

import "gorm.io/gorm"

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Restaurant{},
		&Table{},
		&Seat{},
		&Face{},
		&Booking{},
		&SeatBooking{},
		&MenuItem{},
		&Order{},
		&AuthToken{},
	)
}
