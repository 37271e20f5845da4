package model

// Customer identifies a buyer. The email is the lookup-or-create key
// (unique in the store); a customer row is created lazily on the first
// purchase with a given email and the first registered name wins.
type Customer struct {
	ID    uint64 `json:"id"`    // customers.id
	Name  string `json:"name"`  // customers.name
	Email string `json:"email"` // customers.email
}
