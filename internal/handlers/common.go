package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/partylinehq/partyline/internal/helpers"
	"github.com/partylinehq/partyline/internal/models"
)

// statusFromError maps the service error taxonomy onto HTTP codes. Conflict
// is distinct from not-found so clients can tell "already joined" from
// "party doesn't exist".
func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), models.ErrorResponse(err.Error()))
}

// currentClaims pulls the middleware-verified identity out of the context.
func currentClaims(c *gin.Context) (*helpers.AuthClaims, bool) {
	v, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, false
	}
	claims, ok := v.(*helpers.AuthClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user claims"))
		return nil, false
	}
	return claims, true
}

// currentUser additionally requires a registered profile, answering 404 the
// way the rest of the API does for a missing user record.
func currentUser(c *gin.Context) (*helpers.AuthClaims, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return nil, false
	}
	if !claims.Registered() {
		c.JSON(http.StatusNotFound, models.ErrorResponse("user not found"))
		return nil, false
	}
	return claims, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+name))
		return 0, false
	}
	return id, true
}
