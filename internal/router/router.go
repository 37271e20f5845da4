// Package router wires the reservation service endpoints to their
// handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributed-ticket-reservation/internal/handler"
)

// RegisterRoutes mounts every reservation endpoint on the Echo
// instance. catalogCache, when non-nil, is applied to the read-only
// catalog routes; the purchase route is never cached.
func RegisterRoutes(e *echo.Echo, h *handler.ReservationHandler, catalogCache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	if catalogCache != nil {
		e.GET("/v1/films", h.ListFilms, catalogCache)
		e.GET("/v1/films/:id/sessions", h.ListSessions, catalogCache)
	} else {
		e.GET("/v1/films", h.ListFilms)
		e.GET("/v1/films/:id/sessions", h.ListSessions)
	}

	e.POST("/v1/purchases", h.Purchase)
}
