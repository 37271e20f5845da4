// Package protocol defines the wire types shared by the reservation
// service, the name registry and their clients. Every remote operation
// answers with the same envelope so callers branch on a single shape
// instead of per-endpoint error formats.
package protocol

import "encoding/json"

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform response returned by every remote operation.
// Status is "success" or "error", Message is human readable and Data
// carries the operation-specific payload (null on errors).
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Success builds a success envelope carrying data.
func Success(message string, data any) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

// Error builds an error envelope with a null data field.
func Error(message string) Envelope {
	return Envelope{Status: StatusError, Message: message}
}

// Result is the client-side view of an envelope. Data stays raw until
// the caller knows which payload type to decode it into.
type Result struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OK reports whether the result carries a success status.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// PurchaseRequest is the body of POST /v1/purchases on the reservation
// service.
type PurchaseRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	SessionID uint64 `json:"session_id"`
	Quantity  uint32 `json:"quantity"`
}

// PurchaseData is the data payload of a successful purchase.
type PurchaseData struct {
	Remaining uint32 `json:"remaining"`
}

// RegisterRequest is the body of POST /v1/services on the name
// registry.
type RegisterRequest struct {
	Service string `json:"service"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}
