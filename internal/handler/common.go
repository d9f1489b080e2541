package handler // handler defines the HTTP handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/booking"
	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/model"
)

// errNoPrincipal is returned when no authenticated user id is present in
// the request context.
var errNoPrincipal = errors.New("no authenticated principal")

// getUserID extracts the authenticated user id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get(middleware.CtxUserID).(uint64); ok && v != 0 {
		return v, nil
	}
	return 0, errNoPrincipal
}

// getRole extracts the authenticated role; zero value when absent.
func getRole(c echo.Context) model.Role {
	r, _ := c.Get(middleware.CtxRole).(model.Role)
	return r
}

// reqCtx bounds database work to five seconds per request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// fieldErrors renders a 422 response keyed by field:
// {"errors": {"campo": ["mensaje"]}}.
func fieldErrors(c echo.Context, pairs ...string) error {
	errs := make(map[string][]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		errs[pairs[i]] = append(errs[pairs[i]], pairs[i+1])
	}
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
}

// validationJSON maps a booking.ValidationError onto the same 422 shape.
func validationJSON(c echo.Context, verr *booking.ValidationError) error {
	return fieldErrors(c, verr.Field, verr.Message)
}
