// Package handler implements the remote operations of the reservation
// service. Every operation validates its input before touching storage
// and answers with the uniform {status, message, data} envelope;
// internal failures are logged with full detail but cross the wire only
// as generic messages.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributed-ticket-reservation/internal/protocol"
	"github.com/iliyamo/distributed-ticket-reservation/internal/queue"
	"github.com/iliyamo/distributed-ticket-reservation/internal/repository"
)

// ReservationHandler groups the repositories behind the three remote
// operations: list films, list sessions, purchase.
type ReservationHandler struct {
	FilmRepo     *repository.FilmRepo
	SessionRepo  *repository.SessionRepo
	PurchaseRepo *repository.PurchaseRepo
	Publisher    *queue.Publisher // optional; nil disables purchase events

	// purchaseMu serializes every purchase process-wide, across all
	// sessions. Coarse on purpose: it guarantees the check-then-decrement
	// sequence never interleaves, trading throughput for correctness.
	purchaseMu sync.Mutex
}

// NewReservationHandler constructs a ReservationHandler. All
// repositories must be non-nil; the publisher may be nil.
func NewReservationHandler(films *repository.FilmRepo, sessions *repository.SessionRepo, purchases *repository.PurchaseRepo, pub *queue.Publisher) *ReservationHandler {
	if films == nil || sessions == nil || purchases == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{
		FilmRepo:     films,
		SessionRepo:  sessions,
		PurchaseRepo: purchases,
		Publisher:    pub,
	}
}

// ListFilms handles GET /v1/films. Storage errors are logged and
// reported only as a generic envelope.
func (h *ReservationHandler) ListFilms(c echo.Context) error {
	films, err := h.FilmRepo.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list films: %v", err)
		return c.JSON(http.StatusInternalServerError, protocol.Error("failed to list films"))
	}
	return c.JSON(http.StatusOK, protocol.Success("films listed", films))
}

// ListSessions handles GET /v1/films/:id/sessions. The film id must
// parse as a positive integer before storage is touched; a film without
// sessions answers with an empty list, not an error.
func (h *ReservationHandler) ListSessions(c echo.Context) error {
	filmID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || filmID == 0 {
		return c.JSON(http.StatusBadRequest, protocol.Error("invalid film id"))
	}
	sessions, err := h.SessionRepo.ListByFilm(c.Request().Context(), filmID)
	if err != nil {
		c.Logger().Errorf("list sessions for film %d: %v", filmID, err)
		return c.JSON(http.StatusInternalServerError, protocol.Error("failed to list sessions"))
	}
	return c.JSON(http.StatusOK, protocol.Success("sessions listed", sessions))
}

// Purchase handles POST /v1/purchases. Validation failures
// short-circuit before the lock and the store are involved. Valid
// requests acquire the process-wide purchase lock for the duration of
// the store call, so concurrent purchases are strictly serialized and
// a session can never be oversold.
func (h *ReservationHandler) Purchase(c echo.Context) error {
	var body protocol.PurchaseRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, protocol.Error("invalid request body"))
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, protocol.Error("customer name is required"))
	}
	if strings.TrimSpace(body.Email) == "" {
		return c.JSON(http.StatusBadRequest, protocol.Error("customer email is required"))
	}
	if body.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, protocol.Error("invalid session id"))
	}
	if body.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, protocol.Error("invalid ticket quantity"))
	}

	remaining, err := h.purchase(c.Request().Context(), body)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, protocol.Error("session not found"))
		case errors.Is(err, repository.ErrInsufficientTickets):
			return c.JSON(http.StatusConflict, protocol.Error("insufficient tickets available"))
		}
		c.Logger().Errorf("purchase session=%d quantity=%d: %v", body.SessionID, body.Quantity, err)
		return c.JSON(http.StatusInternalServerError, protocol.Error("failed to process purchase"))
	}

	if h.Publisher != nil {
		ev := queue.TicketPurchasedEvent{
			SessionID:   body.SessionID,
			Email:       strings.ToLower(strings.TrimSpace(body.Email)),
			Quantity:    body.Quantity,
			Remaining:   remaining,
			PurchasedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publisher.Publish(c.Request().Context(), ev); err != nil {
			// Best-effort: the buyer already owns the tickets.
			c.Logger().Warnf("publish purchase event: %v", err)
		}
	}
	return c.JSON(http.StatusOK, protocol.Success("purchase completed", protocol.PurchaseData{Remaining: remaining}))
}

// purchase runs the store call under the purchase lock. The deferred
// unlock releases the lock on every path, panics included.
func (h *ReservationHandler) purchase(ctx context.Context, body protocol.PurchaseRequest) (uint32, error) {
	h.purchaseMu.Lock()
	defer h.purchaseMu.Unlock()
	return h.PurchaseRepo.Purchase(ctx, body.Name, body.Email, body.SessionID, body.Quantity)
}
