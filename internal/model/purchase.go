package model

import "time"

// Purchase is one committed ledger entry: a customer bought Quantity
// tickets for a session. Rows are append-only, never updated or
// deleted, so for every session the sum of purchased quantities plus
// the session's available count always equals its total capacity.
type Purchase struct {
	ID         uint64    `json:"id"`          // purchases.id
	CustomerID uint64    `json:"customer_id"` // purchases.customer_id
	SessionID  uint64    `json:"session_id"`  // purchases.session_id
	Quantity   uint32    `json:"quantity"`    // purchases.quantity
	CreatedAt  time.Time `json:"created_at"`  // purchases.created_at
}
