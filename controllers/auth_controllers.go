package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/middlewares"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// Login exchanges an employee id and password for a token.
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		EmployeeID string `json:"employee_id" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	result, err := ac.Auth.Login(c.Request.Context(), input.EmployeeID, input.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", result)
}

// Logout revokes the token used for this request.
func (ac *AuthController) Logout(c *gin.Context) {
	token, ok := middlewares.CurrentToken(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	if err := ac.Auth.Logout(c.Request.Context(), token.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogoutAll revokes every token of the current user.
func (ac *AuthController) LogoutAll(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	n, err := ac.Auth.LogoutAll(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("User %s logged out of %d sessions", user.EmployeeID, n)
	c.Status(http.StatusNoContent)
}

func (ac *AuthController) Me(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current user", user)
}
