package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/distributed-ticket-reservation/internal/model"
)

// FilmRepo provides read access to the film catalog. The catalog is
// seeded at bootstrap and immutable afterwards, so there are no write
// methods.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo constructs a FilmRepo with the given DB handle.
func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{db: db} }

// List returns every film ordered by id. An empty catalog yields an
// empty slice, not an error.
func (r *FilmRepo) List(ctx context.Context) ([]model.Film, error) {
	const q = `SELECT id, title, category, duration_minutes FROM films ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	films := make([]model.Film, 0)
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Category, &f.Duration); err != nil {
			return nil, err
		}
		films = append(films, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return films, nil
}
