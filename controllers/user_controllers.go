package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/middlewares"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type UserController struct {
	Users     *services.UserService
	Employees *services.EmployeeService
	PageSize  int
}

func NewUserController(users *services.UserService, employees *services.EmployeeService, pageSize int) *UserController {
	return &UserController{Users: users, Employees: employees, PageSize: pageSize}
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	var f services.UserFilter
	var ok bool
	if f.IsStaff, ok = queryBool(c, "is_staff"); !ok {
		return
	}
	if f.IsActive, ok = queryBool(c, "is_active"); !ok {
		return
	}
	if f.RestaurantID, ok = queryUint(c, "restaurant_id"); !ok {
		return
	}
	f.Search = c.Query("search")

	page, err := uc.Users.List(c.Request.Context(), f, utils.ParsePageRequest(c, uc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", page)
}

func (uc *UserController) GetUserByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := uc.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User detail", user)
}

// CreateUser is staff only. Only a superuser may create another superuser.
func (uc *UserController) CreateUser(c *gin.Context) {
	var input services.UserCreateInput
	if !bindJSON(c, &input) {
		return
	}
	if input.IsSuperuser && !isSuperuser(c) {
		respondServiceError(c, ErrNoPermission)
		return
	}
	user, err := uc.Users.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.UserInput
	if !bindJSON(c, &input) {
		return
	}
	current, err := uc.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if (input.IsSuperuser || current.IsSuperuser) && !isSuperuser(c) {
		respondServiceError(c, ErrNoPermission)
		return
	}
	user, err := uc.Users.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated", user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if me, _ := middlewares.CurrentUser(c); me != nil && me.ID == id {
		respondServiceError(c, ErrNoPermission)
		return
	}
	if err := uc.Users.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPassword may be called by the user themselves or by staff.
func (uc *UserController) SetPassword(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	me, _ := middlewares.CurrentUser(c)
	if me == nil || (me.ID != id && !me.IsStaff) {
		respondServiceError(c, ErrNoPermission)
		return
	}
	var input struct {
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if err := uc.Users.SetPassword(c.Request.Context(), id, input.Password); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password updated", nil)
}

// SetRestaurants replaces the restaurants the user is employed at.
func (uc *UserController) SetRestaurants(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		RestaurantIDs []uint `json:"restaurant_ids"`
	}
	if !bindJSON(c, &input) {
		return
	}
	result, err := uc.Employees.SetUserRestaurants(c.Request.Context(), id, input.RestaurantIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurants updated", result)
}

func isSuperuser(c *gin.Context) bool {
	me, ok := middlewares.CurrentUser(c)
	return ok && me.IsSuperuser
}
