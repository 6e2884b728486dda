// Package handler wires the REST surface. Each resource handler owns its
// routes and consults a permission.Policy before and after loading the
// target resource; routing itself stays open so anonymous reads work.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/permission"
	"reviewhub/internal/httpapi/service"
)

// respondError maps service errors onto the API's error taxonomy.
func respondError(c *gin.Context, err error) {
	var fieldErr *service.FieldError

	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{fieldErr.Field: []string{fieldErr.Message}})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrAlreadyReviewed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlugTaken):
		c.JSON(http.StatusBadRequest, gin.H{"slug": []string{err.Error()}})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{err.Error()}})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"email": []string{err.Error()}})
	case errors.Is(err, service.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"confirmation_code": []string{err.Error()}})
	case errors.Is(err, service.ErrInvalidRefresh):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// checkAccess runs the coarse pre-load policy check. Anonymous callers get
// 401, authenticated-but-insufficient callers get 403.
func checkAccess(c *gin.Context, policy permission.Policy, action permission.Action) bool {
	id := middleware.IdentityFrom(c)
	if policy.CanAccess(action, id) {
		return true
	}
	denyAccess(c, id)
	return false
}

// checkObjectAccess runs the fine post-load policy check on a loaded resource.
func checkObjectAccess(c *gin.Context, policy permission.Policy, action permission.Action, obj permission.Authored) bool {
	id := middleware.IdentityFrom(c)
	if policy.CanAccessObject(action, id, obj) {
		return true
	}
	denyAccess(c, id)
	return false
}

func denyAccess(c *gin.Context, id *permission.Identity) {
	if id == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// methodNotAllowed backs the PUT registrations on resources where only
// partial update is permitted.
func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "full update is not allowed, use PATCH"})
}
