package Controllers_test

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/factories"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type userBody struct {
	ID         uint   `json:"id"`
	EmployeeID string `json:"employee_id"`
	IsStaff    bool   `json:"is_staff"`
}

func TestCreateUser(t *testing.T) {
	h := newHarness(t)
	staff := h.staff()

	w, resp := h.request(http.MethodPost, "/api/users", staff, gin.H{
		"first_name": "Nora", "last_name": "Quinn", "password": factories.DefaultPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	u := decode[userBody](t, resp.Data)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), u.EmployeeID)
	assert.NotContains(t, w.Body.String(), "password")

	w, resp = h.request(http.MethodPost, "/api/users", staff, gin.H{
		"first_name": "Nora", "last_name": "Quinn", "password": "12345678",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasCode(resp, "password", utils.CodePassword), w.Body.String())

	w, _ = h.request(http.MethodPost, "/api/users", h.waiter(), gin.H{
		"first_name": "Ian", "last_name": "Moss", "password": factories.DefaultPassword,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOnlySuperuserManagesSuperusers(t *testing.T) {
	h := newHarness(t)
	staff := h.staff()
	body := gin.H{"first_name": "Root", "last_name": "User", "password": factories.DefaultPassword, "is_superuser": true}

	w, _ := h.request(http.MethodPost, "/api/users", staff, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, super := h.login(func(in *services.UserCreateInput) { in.IsSuperuser = true })
	w, resp := h.request(http.MethodPost, "/api/users", super, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[userBody](t, resp.Data)
	assert.True(t, created.IsStaff)

	w, _ = h.request(http.MethodPut, fmt.Sprintf("/api/users/%d", created.ID), staff, gin.H{"first_name": "Root", "last_name": "Admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserCannotDeleteThemselves(t *testing.T) {
	h := newHarness(t)
	me, token := h.login(func(in *services.UserCreateInput) { in.IsStaff = true })

	w, _ := h.request(http.MethodDelete, fmt.Sprintf("/api/users/%d", me.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	other, err := h.f.User(ctx)
	require.NoError(t, err)
	w, _ = h.request(http.MethodDelete, fmt.Sprintf("/api/users/%d", other.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSetPassword(t *testing.T) {
	h := newHarness(t)
	me, token := h.login()
	other, err := h.f.User(ctx)
	require.NoError(t, err)

	w, _ := h.request(http.MethodPut, fmt.Sprintf("/api/users/%d/password", other.ID), token, gin.H{"password": "Zq9!vLm#4tRw"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := h.request(http.MethodPut, fmt.Sprintf("/api/users/%d/password", me.ID), token, gin.H{"password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasCode(resp, "password", utils.CodePassword))

	w, _ = h.request(http.MethodPut, fmt.Sprintf("/api/users/%d/password", me.ID), token, gin.H{"password": "Zq9!vLm#4tRw"})
	require.Equal(t, http.StatusOK, w.Code)

	// Changing the password ends every session.
	w, _ = h.request(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = h.request(http.MethodPost, "/api/auth/login", "", gin.H{"employee_id": me.EmployeeID, "password": "Zq9!vLm#4tRw"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetUserRestaurants(t *testing.T) {
	h := newHarness(t)
	staff := h.staff()
	blue := h.createRestaurant(staff, "Blue Door")
	red := h.createRestaurant(staff, "Red Door")
	u, err := h.f.User(ctx)
	require.NoError(t, err)

	path := fmt.Sprintf("/api/users/%d/restaurants", u.ID)
	w, _ := h.request(http.MethodPut, path, staff, gin.H{"restaurant_ids": []uint{blue, red}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp := h.request(http.MethodGet, fmt.Sprintf("/api/users?restaurant_id=%d", red), staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[page[userBody]](t, resp.Data).Total)

	w, _ = h.request(http.MethodPut, path, staff, gin.H{"restaurant_ids": []uint{}})
	require.Equal(t, http.StatusOK, w.Code)
	w, resp = h.request(http.MethodGet, fmt.Sprintf("/api/users?restaurant_id=%d", red), staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[page[userBody]](t, resp.Data).Total)
}
