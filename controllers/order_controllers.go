package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type OrderController struct {
	Orders   *services.OrderService
	PageSize int
}

func NewOrderController(orders *services.OrderService, pageSize int) *OrderController {
	return &OrderController{Orders: orders, PageSize: pageSize}
}

func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var f services.OrderFilter
	var ok bool
	if f.SeatBookingID, ok = queryUint(c, "seat_booking_id"); !ok {
		return
	}
	if f.BookingID, ok = queryUint(c, "booking_id"); !ok {
		return
	}
	course, ok := queryUint8(c, "course")
	if !ok {
		return
	}
	if course != nil {
		v := models.Course(*course)
		f.Course = &v
	}

	page, err := oc.Orders.List(c.Request.Context(), f, utils.ParsePageRequest(c, oc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", page)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := oc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input services.OrderInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := oc.Orders.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Order %d created for seat booking %d (%s)", order.ID, order.SeatBookingID, order.CourseName())
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.OrderInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := oc.Orders.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := oc.Orders.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
