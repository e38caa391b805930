package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/smartserve/factories"
	"github.com/yeremiapane/smartserve/utils"
)

func TestLoginAndMe(t *testing.T) {
	h := newHarness(t)
	u, token := h.login()

	w, resp := h.request(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		EmployeeID string `json:"employee_id"`
		Password   string `json:"password"`
	}](t, resp.Data)
	assert.Equal(t, u.EmployeeID, me.EmployeeID)
	assert.Empty(t, me.Password)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t)
	u, _ := h.login()

	w, resp := h.request(http.MethodPost, "/api/auth/login", "", gin.H{"employee_id": u.EmployeeID, "password": "wrong-password"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Status)

	w, resp = h.request(http.MethodPost, "/api/auth/login", "", gin.H{"employee_id": u.EmployeeID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, hasCode(resp, utils.NonFieldErrors, utils.CodeInvalid))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t)
	w, _ := h.request(http.MethodGet, "/api/restaurants", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.request(http.MethodGet, "/api/restaurants", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.request(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutRevokesOnlyThatToken(t *testing.T) {
	h := newHarness(t)
	u, first := h.login()
	w, resp := h.request(http.MethodPost, "/api/auth/login", "", gin.H{"employee_id": u.EmployeeID, "password": factories.DefaultPassword})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[struct {
		Token string `json:"token"`
	}](t, resp.Data).Token

	w, _ = h.request(http.MethodPost, "/api/auth/logout", first, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = h.request(http.MethodGet, "/api/auth/me", first, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = h.request(http.MethodGet, "/api/auth/me", second, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.request(http.MethodPost, "/api/auth/logoutall", second, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = h.request(http.MethodGet, "/api/auth/me", second, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
