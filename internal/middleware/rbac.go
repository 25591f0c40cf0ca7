package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// RequireRole admits authenticated requests whose role claim is one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if _, ok := allowed[claims.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireStaff admits staff and admin tokens.
func RequireStaff() echo.MiddlewareFunc {
	return RequireRole(RoleStaff, RoleAdmin)
}
