// Package queue publishes and consumes purchase events over RabbitMQ.
// Events are informational: a purchase is final the moment the database
// transaction commits, whether or not the broker is reachable.
package queue

// TicketPurchasedEvent is emitted after every committed purchase.
type TicketPurchasedEvent struct {
	SessionID   uint64 `json:"session_id"`
	Email       string `json:"email"`
	Quantity    uint32 `json:"quantity"`
	Remaining   uint32 `json:"remaining"`
	PurchasedAt string `json:"purchased_at"`
}
