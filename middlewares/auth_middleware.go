package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUser      = "user"
	ContextUserID    = "user_id"
	ContextIsStaff   = "is_staff"
	ContextAuthToken = "auth_token"
)

// TokenAuthenticator resolves a bearer token into a user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *models.AuthToken, error)
}

// bearerToken accepts both "Bearer <token>" and "Token <token>".
func bearerToken(header string) string {
	for _, prefix := range []string{"Bearer ", "Token "} {
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	return ""
}

func AuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}
		token := bearerToken(authHeader)
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid authorization header format"))
			c.Abort()
			return
		}
		authenticate(c, auth, token)
	}
}

func authenticate(c *gin.Context, auth TokenAuthenticator, token string) {
	user, record, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, utils.ErrInvalidToken) {
			utils.ErrorLogger.Printf("Authenticate token: %v", err)
		}
		utils.RespondError(c, http.StatusUnauthorized, utils.ErrInvalidToken)
		c.Abort()
		return
	}

	c.Set(ContextUser, user)
	c.Set(ContextUserID, user.ID)
	c.Set(ContextIsStaff, user.IsStaff)
	c.Set(ContextAuthToken, record)
	c.Next()
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// CurrentToken returns the token record stored by AuthMiddleware.
func CurrentToken(c *gin.Context) (*models.AuthToken, bool) {
	v, ok := c.Get(ContextAuthToken)
	if !ok {
		return nil, false
	}
	t, ok := v.(*models.AuthToken)
	return t, ok
}
