package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartserve/services"
	"github.com/yeremiapane/smartserve/utils"
)

var (
	ErrNoPermission = errors.New("you do not have permission to perform this action")
	errInternal     = errors.New("internal server error")
)

// respondServiceError maps an error returned by a service onto a response.
func respondServiceError(c *gin.Context, err error) {
	if verr, ok := utils.AsValidationError(err); ok {
		utils.RespondValidationError(c, http.StatusBadRequest, verr)
		return
	}
	switch {
	case services.IsNotFound(err):
		utils.RespondError(c, http.StatusNotFound, errors.New("not found"))
	case errors.Is(err, utils.ErrProtected):
		utils.RespondError(c, http.StatusConflict, utils.ErrProtected)
	case errors.Is(err, utils.ErrIntegrity):
		utils.RespondError(c, http.StatusConflict, utils.ErrIntegrity)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidCredentials)
	case errors.Is(err, ErrNoPermission):
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
	default:
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
	}
}

// bindJSON decodes the request body and answers 400 when it is malformed.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest,
			utils.NewValidationError(utils.NonFieldErrors, "Malformed request body: "+err.Error(), utils.CodeInvalid))
		return false
	}
	return true
}

// paramID reads a positive integer path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// Optional query parameters. A malformed value answers 400 and returns ok=false.

func queryUint(c *gin.Context, name string) (*uint, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return nil, false
	}
	u := uint(v)
	return &u, true
}

func queryUint8(c *gin.Context, name string) (*uint8, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return nil, false
	}
	u := uint8(v)
	return &u, true
}

func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return nil, false
	}
	return &v, true
}
