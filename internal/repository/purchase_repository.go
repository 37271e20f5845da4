package repository

import (
	"context"
	"database/sql"
	"errors"
)

// PurchaseRepo performs the transactional inventory update at the heart
// of the system and reads the resulting ledger.
type PurchaseRepo struct {
	db        *sql.DB
	customers *CustomerRepo
}

// NewPurchaseRepo constructs a PurchaseRepo. customers must be non-nil;
// the customer lookup happens inside the purchase transaction.
func NewPurchaseRepo(db *sql.DB, customers *CustomerRepo) *PurchaseRepo {
	if customers == nil {
		panic("nil CustomerRepo passed to NewPurchaseRepo")
	}
	return &PurchaseRepo{db: db, customers: customers}
}

// Purchase buys quantity tickets for a session as a single transaction:
//
//  1. read the session's available count (absent -> ErrSessionNotFound)
//  2. reject when fewer than quantity remain (ErrInsufficientTickets)
//  3. look up or create the customer by email
//  4. decrement the available count and append the purchase row
//
// Either all effects commit or none do; any failure rolls the
// transaction back. On success the new available count is returned.
func (r *PurchaseRepo) Purchase(ctx context.Context, name, email string, sessionID uint64, quantity uint32) (uint32, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var available uint32
	err = tx.QueryRowContext(ctx,
		`SELECT available_count FROM sessions WHERE id = ?`, sessionID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	if available < quantity {
		return 0, ErrInsufficientTickets
	}

	customerID, err := r.customers.GetOrCreateTx(ctx, tx, name, email)
	if err != nil {
		return 0, err
	}

	// The WHERE clause re-checks availability so the capacity invariant
	// holds even for callers that bypass the service-level lock.
	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET available_count = available_count - ? WHERE id = ? AND available_count >= ?`,
		quantity, sessionID, quantity)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrInsufficientTickets
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (customer_id, session_id, quantity) VALUES (?, ?, ?)`,
		customerID, sessionID, quantity); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return available - quantity, nil
}

// SoldForSession sums the quantities of all committed purchases for a
// session. Together with the session's available count it must always
// equal the total capacity.
func (r *PurchaseRepo) SoldForSession(ctx context.Context, sessionID uint64) (uint64, error) {
	var sold uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM purchases WHERE session_id = ?`, sessionID).Scan(&sold)
	return sold, err
}

// CountForSession returns the number of ledger rows for a session.
func (r *PurchaseRepo) CountForSession(ctx context.Context, sessionID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM purchases WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
