package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type RestaurantController struct {
	Restaurants *services.RestaurantService
	Employees   *services.EmployeeService
	PageSize    int
}

func NewRestaurantController(restaurants *services.RestaurantService, employees *services.EmployeeService, pageSize int) *RestaurantController {
	return &RestaurantController{Restaurants: restaurants, Employees: employees, PageSize: pageSize}
}

func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	f := services.RestaurantFilter{Search: c.Query("search")}
	page, err := rc.Restaurants.List(c.Request.Context(), f, utils.ParsePageRequest(c, rc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", page)
}

func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := rc.Restaurants.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", r)
}

func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var input services.RestaurantInput
	if !bindJSON(c, &input) {
		return
	}
	r, err := rc.Restaurants.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", r)
}

func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.RestaurantInput
	if !bindJSON(c, &input) {
		return
	}
	r, err := rc.Restaurants.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", r)
}

func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rc.Restaurants.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *RestaurantController) GetTables(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	tables, err := rc.Restaurants.Tables(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables of restaurant", tables)
}

func (rc *RestaurantController) GetEmployees(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	users, err := rc.Employees.Employees(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Employees of restaurant", users)
}

func (rc *RestaurantController) AddEmployees(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		UserIDs []uint `json:"user_ids" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	result, err := rc.Employees.AddEmployees(c.Request.Context(), id, input.UserIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Employees updated", result)
}

func (rc *RestaurantController) RemoveEmployee(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := rc.Employees.RemoveEmployee(c.Request.Context(), id, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
