package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type SeatBookingController struct {
	SeatBookings *services.SeatBookingService
	PageSize     int
}

func NewSeatBookingController(seatBookings *services.SeatBookingService, pageSize int) *SeatBookingController {
	return &SeatBookingController{SeatBookings: seatBookings, PageSize: pageSize}
}

func (sbc *SeatBookingController) GetAllSeatBookings(c *gin.Context) {
	var f services.SeatBookingFilter
	var ok bool
	if f.BookingID, ok = queryUint(c, "booking_id"); !ok {
		return
	}
	if f.RestaurantID, ok = queryUint(c, "restaurant_id"); !ok {
		return
	}
	gender, ok := queryUint8(c, "gender_value")
	if !ok {
		return
	}
	skin, ok := queryUint8(c, "skin_colour_value")
	if !ok {
		return
	}
	age, ok := queryUint8(c, "age_category")
	if !ok {
		return
	}
	if gender != nil {
		v := models.GenderValue(*gender)
		f.GenderValue = &v
	}
	if skin != nil {
		v := models.SkinColourValue(*skin)
		f.SkinColourValue = &v
	}
	if age != nil {
		v := models.AgeCategory(*age)
		f.AgeCategory = &v
	}

	page, err := sbc.SeatBookings.List(c.Request.Context(), f, utils.ParsePageRequest(c, sbc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of seat bookings", page)
}

func (sbc *SeatBookingController) GetSeatBookingByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sb, err := sbc.SeatBookings.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Seat booking detail", sb)
}

func (sbc *SeatBookingController) CreateSeatBooking(c *gin.Context) {
	var input services.SeatBookingInput
	if !bindJSON(c, &input) {
		return
	}
	sb, err := sbc.SeatBookings.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Seat booking created", sb)
}

func (sbc *SeatBookingController) UpdateSeatBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.SeatBookingInput
	if !bindJSON(c, &input) {
		return
	}
	sb, err := sbc.SeatBookings.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Seat booking updated", sb)
}

func (sbc *SeatBookingController) DeleteSeatBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := sbc.SeatBookings.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
