package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/iliyamo/distributed-ticket-reservation/internal/database"
)

// newTestDB opens an in-memory database with the full schema and one
// film with one session of the given capacity. It returns the db and
// the session id.
func newTestDB(t *testing.T, capacity uint32) (*sql.DB, uint64) {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db, "sqlite"); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO films (title, category, duration_minutes) VALUES (?, ?, ?)`,
		"Test Film", "Drama", 120)
	if err != nil {
		t.Fatalf("insert film: %v", err)
	}
	filmID, _ := res.LastInsertId()
	res, err = db.ExecContext(ctx,
		`INSERT INTO sessions (film_id, starts_at, total_capacity, available_count) VALUES (?, ?, ?, ?)`,
		filmID, "2024-03-01 19:00", capacity, capacity)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	sessionID, _ := res.LastInsertId()
	return db, uint64(sessionID)
}

func TestPurchaseDecrementsAvailability(t *testing.T) {
	db, sessionID := newTestDB(t, 5)
	repo := NewPurchaseRepo(db, NewCustomerRepo(db))
	ctx := context.Background()

	remaining, err := repo.Purchase(ctx, "Ana", "ana@example.com", sessionID, 3)
	if err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if remaining != 2 {
		t.Fatalf("remaining = %d, want 2", remaining)
	}

	remaining, err = repo.Purchase(ctx, "Bob", "bob@example.com", sessionID, 2)
	if err != nil {
		t.Fatalf("second purchase: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
}

func TestPurchaseInsufficientTickets(t *testing.T) {
	db, sessionID := newTestDB(t, 5)
	repo := NewPurchaseRepo(db, NewCustomerRepo(db))
	ctx := context.Background()

	if _, err := repo.Purchase(ctx, "Ana", "ana@example.com", sessionID, 3); err != nil {
		t.Fatalf("setup purchase: %v", err)
	}
	_, err := repo.Purchase(ctx, "Bob", "bob@example.com", sessionID, 3)
	if !errors.Is(err, ErrInsufficientTickets) {
		t.Fatalf("err = %v, want ErrInsufficientTickets", err)
	}

	// The rejected purchase must leave no trace: availability unchanged
	// and only Ana's row in the ledger.
	sessions := NewSessionRepo(db)
	s, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s.Available != 2 {
		t.Fatalf("available = %d, want 2", s.Available)
	}
	n, err := repo.CountForSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("count purchases: %v", err)
	}
	if n != 1 {
		t.Fatalf("purchase rows = %d, want 1", n)
	}
}

func TestPurchaseSessionNotFound(t *testing.T) {
	db, _ := newTestDB(t, 5)
	repo := NewPurchaseRepo(db, NewCustomerRepo(db))

	_, err := repo.Purchase(context.Background(), "Ana", "ana@example.com", 9999, 1)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestPurchaseLedgerMatchesCapacity(t *testing.T) {
	db, sessionID := newTestDB(t, 10)
	repo := NewPurchaseRepo(db, NewCustomerRepo(db))
	ctx := context.Background()

	buyers := []struct {
		name, email string
		quantity    uint32
	}{
		{"Ana", "ana@example.com", 4},
		{"Bob", "bob@example.com", 3},
		{"Cleo", "cleo@example.com", 2},
	}
	for _, b := range buyers {
		if _, err := repo.Purchase(ctx, b.name, b.email, sessionID, b.quantity); err != nil {
			t.Fatalf("purchase for %s: %v", b.name, err)
		}
	}

	sold, err := repo.SoldForSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("sold for session: %v", err)
	}
	s, err := NewSessionRepo(db).GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sold+uint64(s.Available) != uint64(s.Total) {
		t.Fatalf("sold %d + available %d != capacity %d", sold, s.Available, s.Total)
	}
}

func TestCustomerReusedByEmail(t *testing.T) {
	db, sessionID := newTestDB(t, 10)
	customers := NewCustomerRepo(db)
	repo := NewPurchaseRepo(db, customers)
	ctx := context.Background()

	if _, err := repo.Purchase(ctx, "Ana Silva", "Ana@Example.com", sessionID, 1); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if _, err := repo.Purchase(ctx, "A. Silva", "ana@example.com ", sessionID, 1); err != nil {
		t.Fatalf("second purchase: %v", err)
	}

	n, err := customers.Count(ctx)
	if err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if n != 1 {
		t.Fatalf("customers = %d, want 1 (same email must reuse the row)", n)
	}
	c, err := customers.GetByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if c.Name != "Ana Silva" {
		t.Fatalf("name = %q, want the first registered name", c.Name)
	}
}
