package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/queue"
	"github.com/yeremiapane/smartserve/utils"
)

type orderFixture struct {
	staff, waiter string
	restaurantID  uint
	bookingID     uint
	seatBookingID uint
	menuItemID    uint
}

func (h *harness) orderFixture() orderFixture {
	h.t.Helper()
	fx := orderFixture{staff: h.staff(), waiter: h.waiter()}
	fx.restaurantID = h.createRestaurant(fx.staff, "Blue Door")
	seat := h.createSeat(fx.staff, h.createTable(fx.staff, fx.restaurantID, 1, nil), 0)
	fx.bookingID = h.createBooking(fx.waiter, ten, time.Hour)
	fx.seatBookingID = h.createSeatBooking(fx.waiter, seat, fx.bookingID)
	fx.menuItemID = h.createMenuItem(fx.staff, "Fish Pie", fx.restaurantID)
	return fx
}

func TestCreateOrder(t *testing.T) {
	h := newHarness(t)
	fx := h.orderFixture()

	w, resp := h.request(http.MethodPost, "/api/orders", fx.waiter, gin.H{
		"menu_item_id": fx.menuItemID, "seat_booking_id": fx.seatBookingID,
		"course": models.CourseMainCourse, "notes": "Extra peas",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Order created", resp.Message)
	orderID := decode[idOnly](t, resp.Data).ID

	w, resp = h.request(http.MethodGet, fmt.Sprintf("/api/bookings/%d/orders", fx.bookingID), fx.waiter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode[[]idOnly](t, resp.Data)
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].ID)

	w, resp = h.request(http.MethodGet, fmt.Sprintf("/api/orders?course=%d", models.CourseDessert), fx.waiter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[page[idOnly]](t, resp.Data).Total)

	var created *queue.OrderEvent
	for _, m := range h.pub.Messages() {
		if m.RoutingKey == queue.OrderCreated {
			ev := m.Event.(queue.OrderEvent)
			created = &ev
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, "Fish Pie", created.MenuItemName)
	assert.Equal(t, "Extra peas", created.Notes)
}

func TestOrderValidationOverHTTP(t *testing.T) {
	h := newHarness(t)
	fx := h.orderFixture()

	w, resp := h.request(http.MethodPost, "/api/orders", fx.waiter, gin.H{
		"menu_item_id": fx.menuItemID, "seat_booking_id": fx.seatBookingID, "course": 9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasCode(resp, "course", utils.CodeInvalid), w.Body.String())

	elsewhere := h.createMenuItem(fx.staff, "Scotch Egg")
	w, resp = h.request(http.MethodPost, "/api/orders", fx.waiter, gin.H{
		"menu_item_id": elsewhere, "seat_booking_id": fx.seatBookingID, "course": models.CourseStarter,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasCode(resp, "menu_item_id", utils.CodeInvalid), w.Body.String())
}

func TestOrderedMenuItemCannotBeDeleted(t *testing.T) {
	h := newHarness(t)
	fx := h.orderFixture()

	w, resp := h.request(http.MethodPost, "/api/orders", fx.waiter, gin.H{
		"menu_item_id": fx.menuItemID, "seat_booking_id": fx.seatBookingID, "course": models.CourseDessert,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := decode[idOnly](t, resp.Data).ID

	w, _ = h.request(http.MethodDelete, fmt.Sprintf("/api/menu-items/%d", fx.menuItemID), fx.staff, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = h.request(http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), fx.waiter, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = h.request(http.MethodDelete, fmt.Sprintf("/api/menu-items/%d", fx.menuItemID), fx.staff, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
