package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type SeatController struct {
	Seats    *services.SeatService
	PageSize int
}

func NewSeatController(seats *services.SeatService, pageSize int) *SeatController {
	return &SeatController{Seats: seats, PageSize: pageSize}
}

func (sc *SeatController) GetAllSeats(c *gin.Context) {
	var f services.SeatFilter
	var ok bool
	if f.TableID, ok = queryUint(c, "table_id"); !ok {
		return
	}
	if f.RestaurantID, ok = queryUint(c, "restaurant_id"); !ok {
		return
	}
	page, err := sc.Seats.List(c.Request.Context(), f, utils.ParsePageRequest(c, sc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of seats", page)
}

func (sc *SeatController) GetSeatByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	seat, err := sc.Seats.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Seat detail", seat)
}

func (sc *SeatController) CreateSeat(c *gin.Context) {
	var input services.SeatInput
	if !bindJSON(c, &input) {
		return
	}
	seat, err := sc.Seats.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Seat created", seat)
}

func (sc *SeatController) UpdateSeat(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.SeatInput
	if !bindJSON(c, &input) {
		return
	}
	seat, err := sc.Seats.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Seat updated", seat)
}

func (sc *SeatController) DeleteSeat(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := sc.Seats.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
