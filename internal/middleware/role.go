package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// principal has one of the specified roles.  It assumes JWTAuth has
// already stored a model.Role under CtxRole; requests with a missing or
// disallowed role are rejected with 403 Forbidden.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(model.Role)
			if !ok || !role.Valid() || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "No autorizado"})
			}
			return next(c)
		}
	}
}
