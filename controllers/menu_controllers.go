package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type MenuController struct {
	MenuItems *services.MenuItemService
	PageSize  int
}

func NewMenuController(menuItems *services.MenuItemService, pageSize int) *MenuController {
	return &MenuController{MenuItems: menuItems, PageSize: pageSize}
}

func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	var f services.MenuItemFilter
	var ok bool
	if f.RestaurantID, ok = queryUint(c, "restaurant_id"); !ok {
		return
	}
	f.Search = c.Query("search")

	page, err := mc.MenuItems.List(c.Request.Context(), f, utils.ParsePageRequest(c, mc.PageSize))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", page)
}

func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := mc.MenuItems.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var input services.MenuItemInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := mc.MenuItems.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Menu item created: %s", item.Name)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.MenuItemInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := mc.MenuItems.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := mc.MenuItems.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAvailability adds (PUT) or removes (DELETE) one restaurant from the
// item's availability set.
func (mc *MenuController) SetAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	available := c.Request.Method != http.MethodDelete
	item, err := mc.MenuItems.SetAvailability(c.Request.Context(), id, restaurantID, available)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item availability updated", item)
}
