package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
	"golang.org/x/time/rate"
)

type fakeAuth struct {
	users map[string]*models.User
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (*models.User, *models.AuthToken, error) {
	u, ok := f.users[token]
	if !ok {
		return nil, nil, utils.ErrInvalidToken
	}
	return u, &models.AuthToken{UserID: u.ID}, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/", handlers...)
	return r
}

func get(r http.Handler, header string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("Token abc"))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("abc"))
}

func TestAuthAndRoleChecks(t *testing.T) {
	auth := fakeAuth{users: map[string]*models.User{
		"waiter": {ID: 1},
		"staff":  {ID: 2, IsStaff: true},
		"root":   {ID: 3, IsStaff: true, IsSuperuser: true},
	}}

	staff := newEngine(AuthMiddleware(auth), RequireStaff())
	assert.Equal(t, http.StatusUnauthorized, get(staff, ""))
	assert.Equal(t, http.StatusUnauthorized, get(staff, "Basic staff"))
	assert.Equal(t, http.StatusUnauthorized, get(staff, "Bearer nobody"))
	assert.Equal(t, http.StatusForbidden, get(staff, "Bearer waiter"))
	assert.Equal(t, http.StatusNoContent, get(staff, "Token staff"))

	super := newEngine(AuthMiddleware(auth), RequireSuperuser())
	assert.Equal(t, http.StatusForbidden, get(super, "Bearer staff"))
	assert.Equal(t, http.StatusNoContent, get(super, "Bearer root"))
}

func TestRoleCheckWithoutAuth(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, get(newEngine(RequireStaff()), ""))
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2)
	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))

	r := newEngine(NewRateLimiter(rate.Every(time.Hour), 1).RateLimit())
	assert.Equal(t, http.StatusNoContent, get(r, ""))
	assert.Equal(t, http.StatusTooManyRequests, get(r, ""))
}

func TestCacheWithoutRedisPassesThrough(t *testing.T) {
	r := newEngine(ResponseCache(nil, "menu", time.Minute), InvalidateCache(nil, "menu"))
	assert.Equal(t, http.StatusNoContent, get(r, ""))
}
