package registry

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributed-ticket-reservation/internal/protocol"
)

// Handler exposes a Registry over HTTP with the same envelope the
// reservation service speaks.
type Handler struct {
	Registry *Registry
}

// NewHandler constructs a Handler. The registry must be non-nil.
func NewHandler(reg *Registry) *Handler {
	if reg == nil {
		panic("nil Registry passed to NewHandler")
	}
	return &Handler{Registry: reg}
}

// Register handles POST /v1/services. The body must name the service
// and its host/port; registering always succeeds and overwrites any
// previous address for the same name.
func (h *Handler) Register(c echo.Context) error {
	var body protocol.RegisterRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, protocol.Error("invalid request body"))
	}
	name := strings.TrimSpace(body.Service)
	host := strings.TrimSpace(body.Host)
	if name == "" || host == "" || body.Port <= 0 {
		return c.JSON(http.StatusBadRequest, protocol.Error("service, host and port are required"))
	}
	h.Registry.Register(name, host, body.Port)
	c.Logger().Infof("service %q registered at %s:%d", name, host, body.Port)
	return c.JSON(http.StatusOK, protocol.Success("service registered", Address{Host: host, Port: body.Port}))
}

// Lookup handles GET /v1/services/:name. An unknown name answers with a
// 404 envelope; that is the expected "service not up yet" outcome, not
// an internal error.
func (h *Handler) Lookup(c echo.Context) error {
	name := c.Param("name")
	addr, ok := h.Registry.Lookup(name)
	if !ok {
		return c.JSON(http.StatusNotFound, protocol.Error("service not found"))
	}
	return c.JSON(http.StatusOK, protocol.Success("service found", addr))
}

// Routes registers the registry endpoints on the given Echo instance.
func (h *Handler) Routes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/v1/services", h.Register)
	e.GET("/v1/services/:name", h.Lookup)
}
