package models

import (
	"fmt"
	"time"
)

// Booking is a reservation window. Seats are attached through SeatBooking.
type Booking struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Start        time.Time     `gorm:"column:starts_at;not null;index" json:"start"`
	End          time.Time     `gorm:"column:ends_at;not null;index;check:starts_at < ends_at" json:"end"`
	SeatBookings []SeatBooking `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"seat_bookings,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Overlaps reports whether the half-open windows [b.Start, b.End) and [start, end) intersect.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

func (b *Booking) String() string {
	return fmt.Sprintf("%s - %s", b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339))
}

// SeatBooking attaches one seat, and optionally one face, to a booking.
type SeatBooking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SeatID    uint      `gorm:"not null;uniqueIndex:idx_seat_booking" json:"seat_id"`
	Seat      *Seat     `gorm:"foreignKey:SeatID;constraint:OnDelete:RESTRICT" json:"seat,omitempty"`
	BookingID uint      `gorm:"not null;uniqueIndex:idx_seat_booking;uniqueIndex:idx_booking_face" json:"booking_id"`
	Booking   *Booking  `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	FaceID    *uint     `gorm:"uniqueIndex:idx_booking_face" json:"face_id"`
	Face      *Face     `gorm:"foreignKey:FaceID;constraint:OnDelete:RESTRICT" json:"face,omitempty"`
	Orders    []Order   `gorm:"foreignKey:SeatBookingID;constraint:OnDelete:CASCADE" json:"orders,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
