// Package repository contains the data access layer of the reservation
// system. It defines sentinel errors that are reused across
// repositories so higher layers such as handlers can distinguish
// failure scenarios with errors.Is instead of parsing driver messages.
package repository

import "errors"

// ErrSessionNotFound is returned when a purchase or query names a
// session id that does not exist. Handlers translate this into an
// HTTP 404 envelope.
var ErrSessionNotFound = errors.New("session not found")

// ErrInsufficientTickets is returned when a session has fewer tickets
// available than the requested quantity. Callers must not assume a
// retry will succeed. Handlers translate this into an HTTP 409
// envelope.
var ErrInsufficientTickets = errors.New("insufficient tickets")
