package database

import (
	"context"
	"testing"
)

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", "whatever"); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestEnsureSchemaAndSeedIdempotent(t *testing.T) {
	db, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	// Running schema + seed twice must not fail or duplicate rows.
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, db, "sqlite"); err != nil {
			t.Fatalf("ensure schema (run %d): %v", i+1, err)
		}
		if err := Seed(ctx, db); err != nil {
			t.Fatalf("seed (run %d): %v", i+1, err)
		}
	}

	var films, sessions int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM films`).Scan(&films); err != nil {
		t.Fatalf("count films: %v", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if films != len(seedFilms) {
		t.Fatalf("films = %d, want %d", films, len(seedFilms))
	}
	if sessions != len(seedFilms) {
		t.Fatalf("sessions = %d, want %d", sessions, len(seedFilms))
	}

	var available int
	if err := db.QueryRowContext(ctx, `SELECT available_count FROM sessions LIMIT 1`).Scan(&available); err != nil {
		t.Fatalf("read session: %v", err)
	}
	if available != seedCapacity {
		t.Fatalf("available = %d, want %d", available, seedCapacity)
	}
}

func TestSQLiteDirExtraction(t *testing.T) {
	cases := []struct {
		dsn  string
		want string
	}{
		{":memory:", ""},
		{"cinema.db", ""},
		{"data/cinema.db?_pragma=busy_timeout=5000", "data"},
		{"file:test.db?mode=memory", ""},
	}
	for _, c := range cases {
		if got := sqliteDir(c.dsn); got != c.want {
			t.Errorf("sqliteDir(%q) = %q, want %q", c.dsn, got, c.want)
		}
	}
}
