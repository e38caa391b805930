package models

import (
	"fmt"
	"time"
)

type Course uint8

const (
	CourseAppetiser Course = iota
	CourseStarter
	CourseMainCourse
	CourseDessert
)

var courseNames = map[Course]string{
	CourseAppetiser:  "Appetiser",
	CourseStarter:    "Starter",
	CourseMainCourse: "Main Course",
	CourseDessert:    "Dessert",
}

func (c Course) Valid() bool {
	_, ok := courseNames[c]
	return ok
}

func (c Course) String() string {
	if name, ok := courseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Course(%d)", uint8(c))
}

// Order is one menu item ordered for one seat of a booking.
type Order struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	MenuItemID    uint         `gorm:"not null;index" json:"menu_item_id"`
	MenuItem      *MenuItem    `gorm:"foreignKey:MenuItemID;constraint:OnDelete:RESTRICT" json:"menu_item,omitempty"`
	SeatBookingID uint         `gorm:"not null;index" json:"seat_booking_id"`
	SeatBooking   *SeatBooking `gorm:"foreignKey:SeatBookingID" json:"seat_booking,omitempty"`
	Course        Course       `gorm:"not null" json:"course"`
	Notes         string       `gorm:"type:varchar(200);not null;default:''" json:"notes"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (o *Order) CourseName() string {
	return o.Course.String()
}
