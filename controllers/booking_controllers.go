package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type BookingController struct {
	Bookings *services.BookingService
	PageSize int
}

func NewBookingController(bookings *services.BookingService, pageSize int) *BookingController {
	return &BookingController{Bookings: bookings, PageSize: pageSize}
}

func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s, expected RFC 3339", name))
		return nil, false
	}
	return &t, true
}

func (bc *BookingController) GetAllBookings(c *gin.Context) {
	var f services.BookingFilter
	var ok bool
	if f.RestaurantID, ok = queryUint(c, "restaurant_id"); !ok {
		return
	}
	if f.StartAfter, ok = queryTime(c, "start_after"); !ok {
		return
	}
	if f.EndBefore, ok = queryTime(c, "end_before"); !ok {
		return
	}
	page, err := bc.Bookings.List(c.Request.Context(), f, utils.ParsePageRequest(c, bc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bookings", page)
}

// GetBookingByID includes the derived restaurant and table ids.
func (bc *BookingController) GetBookingByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	var input services.BookingInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := bc.Bookings.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Booking created", booking)
}

func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.BookingInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := bc.Bookings.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking updated", booking)
}

func (bc *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := bc.Bookings.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (bc *BookingController) GetTables(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	tables, err := bc.Bookings.Tables(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables of booking", tables)
}

func (bc *BookingController) GetOrders(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	orders, err := bc.Bookings.Orders(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders of booking", orders)
}

// GetRestaurant answers with null data while no seat is attached.
func (bc *BookingController) GetRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := bc.Bookings.Restaurant(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant of booking", r)
}
