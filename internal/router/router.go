// Package router wires the HTTP surface: which handler answers each
// path and which middleware guards it.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/handler"
	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/model"
)

// Handlers bundles everything RegisterRoutes needs.  CacheEspacios is
// optional middleware applied to the espacio listing only; pass nil to
// serve it uncached.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Spaces        *handler.SpaceHandler
	Reservas      *handler.ReservationHandler
	CacheEspacios echo.MiddlewareFunc
}

// RegisterRoutes mounts the full API on e.
//
// Public: health check, login and user registration.  Everything else
// requires a valid access token; espacio mutation additionally requires
// the admin role.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health)
	e.POST("/login", h.Auth.Login)
	e.POST("/refresh", h.Auth.Refresh)
	e.POST("/users", h.Users.Create)

	auth := e.Group("")
	auth.Use(middleware.JWTAuth(jwtSecret))

	// Session management for the logged-in user.
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/login/validate-token", h.Auth.ValidateToken)
	auth.GET("/login/user", h.Auth.CurrentUser)

	// User administration.  Listing is admin-only; fetching, updating and
	// deleting a single account are allowed for that account's owner too,
	// which the handler enforces.
	auth.GET("/users", h.Users.List, middleware.RequireRole(model.RoleAdmin))
	auth.GET("/users/:id", h.Users.Get)
	auth.PUT("/users/:id", h.Users.Update)
	auth.DELETE("/users/:id", h.Users.Delete)

	// Espacio catalog.  Reads for everyone authenticated, writes for
	// admins.  The listing goes through the response cache when enabled.
	if h.CacheEspacios != nil {
		auth.GET("/espacios", h.Spaces.List, h.CacheEspacios)
	} else {
		auth.GET("/espacios", h.Spaces.List)
	}
	auth.GET("/espacios/:id", h.Spaces.Get)
	admin := middleware.RequireRole(model.RoleAdmin)
	auth.POST("/espacios", h.Spaces.Create, admin)
	auth.PUT("/espacios/:id", h.Spaces.Update, admin)
	auth.DELETE("/espacios/:id", h.Spaces.Delete, admin)

	// Reservas.  Every authenticated user may book; edits and deletes are
	// restricted to the owning user inside the handlers.
	auth.GET("/reservas", h.Reservas.List)
	auth.GET("/reservas/:id", h.Reservas.Get)
	auth.POST("/reservas", h.Reservas.Create)
	auth.PUT("/reservas/:id", h.Reservas.Update)
	auth.DELETE("/reservas/:id", h.Reservas.Delete)
}
