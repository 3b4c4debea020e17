package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextstock/backend/internal/interfaces/http/dto"
)

// methodToAction maps HTTP methods to the default permission action used by
// RequireResource. Handlers needing a non-CRUD action (void, approve, open)
// use RequirePermission with an explicit code instead.
var methodToAction = map[string]string{
	http.MethodGet:    "read",
	http.MethodHead:   "read",
	http.MethodPost:   "create",
	http.MethodPut:    "update",
	http.MethodPatch:  "update",
	http.MethodDelete: "delete",
}

// RequirePermission ensures the authenticated user holds the given
// permission code (e.g. "sale:void")
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c, "MISSING_TOKEN", "authentication is required")
			return
		}
		if !claims.HasPermission(permission) {
			abortForbidden(c, permission)
			return
		}
		c.Next()
	}
}

// RequireAnyPermission ensures the user holds at least one of the given codes
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c, "MISSING_TOKEN", "authentication is required")
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			abortForbidden(c, permissions...)
			return
		}
		c.Next()
	}
}

// RequireAllPermissions ensures the user holds every one of the given codes
func RequireAllPermissions(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c, "MISSING_TOKEN", "authentication is required")
			return
		}
		if !claims.HasAllPermissions(permissions...) {
			abortForbidden(c, permissions...)
			return
		}
		c.Next()
	}
}

// RequireResource derives the required permission from the resource name and
// the request method, e.g. GET on "product" requires "product:read"
func RequireResource(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c, "MISSING_TOKEN", "authentication is required")
			return
		}
		action, ok := methodToAction[c.Request.Method]
		if !ok {
			action = "read"
		}
		permission := resource + ":" + action
		if !claims.HasPermission(permission) {
			abortForbidden(c, permission)
			return
		}
		c.Next()
	}
}

func abortForbidden(c *gin.Context, missing ...string) {
	resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden,
		"you do not have permission to perform this action", GetRequestID(c))
	if len(missing) > 0 && resp.Error != nil {
		details := make([]dto.ValidationDetail, 0, len(missing))
		for _, m := range missing {
			details = append(details, dto.ValidationDetail{Field: "permission", Message: m})
		}
		resp.Error.Details = details
	}
	c.AbortWithStatusJSON(http.StatusForbidden, resp)
}
