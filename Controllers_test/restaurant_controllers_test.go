package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

func TestRestaurantNameValidation(t *testing.T) {
	h := newHarness(t)
	staff := h.staff()

	w, resp := h.request(http.MethodPost, "/api/restaurants", staff, gin.H{"name": "Cafe 21"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, resp.Errors["name"])

	id := h.createRestaurant(staff, "Joe's Diner")
	w, resp = h.request(http.MethodPut, fmt.Sprintf("/api/restaurants/%d", id), staff, gin.H{"name": "Joe's Bistro"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Restaurant updated", resp.Message)

	w, resp = h.request(http.MethodGet, "/api/restaurants?search=bistro", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[page[idOnly]](t, resp.Data).Total)
}

func TestRestaurantEmployees(t *testing.T) {
	h := newHarness(t)
	staff := h.staff()
	rID := h.createRestaurant(staff, "Blue Door")
	same := func(in *services.UserCreateInput) { in.FirstName, in.LastName = "Amelia", "Smith" }
	first, err := h.f.User(ctx, same)
	require.NoError(t, err)
	second, err := h.f.User(ctx, same)
	require.NoError(t, err)

	path := fmt.Sprintf("/api/restaurants/%d/employees", rID)
	w, resp := h.request(http.MethodPost, path, staff, gin.H{"user_ids": []uint{first.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[services.AssignmentResult](t, resp.Data)
	assert.Len(t, added.Added, 1)

	w, resp = h.request(http.MethodPost, path, staff, gin.H{"user_ids": []uint{second.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasCode(resp, "first_name", utils.CodeUnique), w.Body.String())

	w, resp = h.request(http.MethodGet, path, staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idOnly](t, resp.Data), 1)

	remove := fmt.Sprintf("%s/%d", path, first.ID)
	w, _ = h.request(http.MethodDelete, remove, staff, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = h.request(http.MethodDelete, remove, staff, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRestaurant(t *testing.T) {
	h := newHarness(t)
	staff := h.staff()
	busy := h.createRestaurant(staff, "Blue Door")
	seat := h.createSeat(staff, h.createTable(staff, busy, 1, nil), 0)
	h.createSeatBooking(staff, seat, h.createBooking(staff, ten, time.Hour))
	quiet := h.createRestaurant(staff, "Red Door")
	table := h.createTable(staff, quiet, 1, nil)

	w, _ := h.request(http.MethodDelete, fmt.Sprintf("/api/restaurants/%d", busy), staff, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = h.request(http.MethodDelete, fmt.Sprintf("/api/restaurants/%d", quiet), staff, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = h.request(http.MethodGet, fmt.Sprintf("/api/tables/%d", table), staff, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
