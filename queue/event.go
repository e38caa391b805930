// Package queue publishes booking and order events to the message broker.
package queue

import "time"

// Routing keys.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
	OrderCreated   = "order.created"
	OrderUpdated   = "order.updated"
	OrderDeleted   = "order.deleted"
)

// BookingEvent carries enough about a booking for consumers to act without
// reading the primary database.
type BookingEvent struct {
	BookingID    uint      `json:"booking_id"`
	RestaurantID *uint     `json:"restaurant_id"`
	TableIDs     []uint    `json:"table_ids"`
	SeatIDs      []uint    `json:"seat_ids"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type OrderEvent struct {
	OrderID       uint      `json:"order_id"`
	SeatBookingID uint      `json:"seat_booking_id"`
	BookingID     uint      `json:"booking_id"`
	MenuItemID    uint      `json:"menu_item_id"`
	MenuItemName  string    `json:"menu_item_name"`
	Course        string    `json:"course"`
	Notes         string    `json:"notes"`
	OccurredAt    time.Time `json:"occurred_at"`
}
