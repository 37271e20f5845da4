package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/distributed-ticket-reservation/internal/model"
)

// CustomerRepo manages customer rows. Customers are never created
// through a dedicated endpoint; they come into existence on their
// first purchase.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo constructs a CustomerRepo with the given DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// GetOrCreateTx looks a customer up by normalized email within the
// given transaction and inserts a new row when absent. The first
// registered name wins: a later purchase with the same email and a
// different name still resolves to the original customer.
func (r *CustomerRepo) GetOrCreateTx(ctx context.Context, tx *sql.Tx, name, email string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var id uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM customers WHERE email = ? LIMIT 1`, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO customers (name, email) VALUES (?, ?)`,
		strings.TrimSpace(name), email)
	if err != nil {
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var c model.Customer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email FROM customers WHERE email = ? LIMIT 1`, email).
		Scan(&c.ID, &c.Name, &c.Email)
	return c, err
}

// Count returns the number of customer rows.
func (r *CustomerRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n)
	return n, err
}
