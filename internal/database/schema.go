package database

import (
	"context"
	"database/sql"
	"fmt"
)

// seedFilm pairs a catalog entry with its single seeded session
// schedule. Every seeded session opens with the same capacity.
type seedFilm struct {
	title    string
	category string
	duration uint32
	startsAt string
}

const seedCapacity = 100

var seedFilms = []seedFilm{
	{"The Godfather", "Crime/Drama", 175, "2024-03-01 19:00"},
	{"Inception", "Sci-Fi/Thriller", 148, "2024-03-01 21:00"},
	{"Forrest Gump", "Drama/Romance", 142, "2024-03-02 18:00"},
	{"The Matrix", "Sci-Fi/Action", 136, "2024-03-02 20:00"},
	{"Gladiator", "Action/Drama", 155, "2024-03-03 19:00"},
	{"Pulp Fiction", "Crime/Thriller", 154, "2024-03-03 21:00"},
	{"Spirited Away", "Animation/Fantasy", 125, "2024-03-04 18:00"},
	{"Interstellar", "Sci-Fi/Drama", 169, "2024-03-04 20:00"},
	{"Parasite", "Thriller/Drama", 132, "2024-03-05 19:00"},
	{"Toy Story", "Animation/Adventure", 81, "2024-03-05 21:00"},
}

// EnsureSchema creates the four tables when they do not exist yet:
// films, sessions (FK film, cascade), customers (unique email) and
// purchases (FK customer + session, cascade). Only the auto-increment
// and column type spellings differ between drivers.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ref := "INTEGER"
	str := "TEXT"
	ts := "DATETIME DEFAULT CURRENT_TIMESTAMP"
	if driver == "mysql" {
		pk = "BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY"
		ref = "BIGINT UNSIGNED"
		str = "VARCHAR(255)"
		ts = "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS films (
			id %s,
			title %s NOT NULL,
			category %s,
			duration_minutes INTEGER
		)`, pk, str, str),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sessions (
			id %s,
			film_id %s NOT NULL,
			starts_at %s,
			total_capacity INTEGER NOT NULL,
			available_count INTEGER NOT NULL,
			FOREIGN KEY (film_id) REFERENCES films(id) ON DELETE CASCADE
		)`, pk, ref, str),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS customers (
			id %s,
			name %s NOT NULL,
			email %s NOT NULL UNIQUE
		)`, pk, str, str),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS purchases (
			id %s,
			customer_id %s NOT NULL,
			session_id %s NOT NULL,
			quantity INTEGER NOT NULL,
			created_at %s,
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`, pk, ref, ref, ts),
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Seed inserts the initial film catalog and one session per film, but
// only when the tables are empty, so restarting the service never
// duplicates rows.
func Seed(ctx context.Context, db *sql.DB) error {
	var films int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM films`).Scan(&films); err != nil {
		return fmt.Errorf("seed: count films: %w", err)
	}
	if films == 0 {
		for _, f := range seedFilms {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO films (title, category, duration_minutes) VALUES (?, ?, ?)`,
				f.title, f.category, f.duration); err != nil {
				return fmt.Errorf("seed: insert film: %w", err)
			}
		}
	}

	var sessions int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
		return fmt.Errorf("seed: count sessions: %w", err)
	}
	if sessions == 0 {
		rows, err := db.QueryContext(ctx, `SELECT id FROM films ORDER BY id`)
		if err != nil {
			return fmt.Errorf("seed: list films: %w", err)
		}
		defer rows.Close()
		var filmIDs []uint64
		for rows.Next() {
			var id uint64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			filmIDs = append(filmIDs, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		for i, id := range filmIDs {
			if i >= len(seedFilms) {
				break
			}
			if _, err := db.ExecContext(ctx,
				`INSERT INTO sessions (film_id, starts_at, total_capacity, available_count) VALUES (?, ?, ?, ?)`,
				id, seedFilms[i].startsAt, seedCapacity, seedCapacity); err != nil {
				return fmt.Errorf("seed: insert session: %w", err)
			}
		}
	}
	return nil
}
