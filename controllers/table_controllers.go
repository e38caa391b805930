package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/kds"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type TableController struct {
	Tables   *services.TableService
	PageSize int
}

func NewTableController(tables *services.TableService, pageSize int) *TableController {
	return &TableController{Tables: tables, PageSize: pageSize}
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	var f services.TableFilter
	var ok bool
	if f.RestaurantID, ok = queryUint(c, "restaurant_id"); !ok {
		return
	}
	if f.IsSubTable, ok = queryBool(c, "is_sub_table"); !ok {
		return
	}
	page, err := tc.Tables.List(c.Request.Context(), f, utils.ParsePageRequest(c, tc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", page)
}

// GetTableByID returns the table with its true number.
func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var input services.TableInput
	if !bindJSON(c, &input) {
		return
	}
	table, err := tc.Tables.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastTableCreate(*table)
	utils.InfoLogger.Printf("New table created: %d at restaurant %d", table.Number, table.RestaurantID)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.TableInput
	if !bindJSON(c, &input) {
		return
	}
	table, err := tc.Tables.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastTableUpdate(*table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := tc.Tables.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastTableDelete(id)
	utils.InfoLogger.Printf("Table %d deleted", id)
	c.Status(http.StatusNoContent)
}

// GetSeats returns the effective seats of the table.
func (tc *TableController) GetSeats(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	seats, err := tc.Tables.Seats(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Seats of table", seats)
}

func (tc *TableController) GetBookings(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bookings, err := tc.Tables.Bookings(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bookings of table", bookings)
}

// CreateBooking books every seat of the table for one time window.
func (tc *TableController) CreateBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.BookingInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := tc.Tables.CreateBooking(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Booking created", booking)
}
