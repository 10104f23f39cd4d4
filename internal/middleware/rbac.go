package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/remui-admin-api/internal/models"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
	"github.com/noah-isme/remui-admin-api/pkg/response"
)

// RBAC allows the request through when the caller's role is one of allowed.
func RBAC(allowed ...string) gin.HandlerFunc {
	roles := make(map[models.UserRole]struct{}, len(allowed))
	for _, a := range allowed {
		roles[models.UserRole(strings.ToUpper(strings.TrimSpace(a)))] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := roles[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
