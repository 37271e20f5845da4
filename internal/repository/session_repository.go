package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/distributed-ticket-reservation/internal/model"
)

// SessionRepo manages read access to sessions. The available count is
// mutated exclusively by PurchaseRepo inside its transaction.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// ListByFilm returns all sessions of a film ordered by id. A film with
// no sessions (or an unknown film id) yields an empty slice, not an
// error.
func (r *SessionRepo) ListByFilm(ctx context.Context, filmID uint64) ([]model.Session, error) {
	const q = `SELECT id, film_id, starts_at, total_capacity, available_count
	           FROM sessions
	           WHERE film_id = ?
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.FilmID, &s.StartsAt, &s.Total, &s.Available); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByID retrieves a single session. It returns ErrSessionNotFound
// when no matching row exists.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT id, film_id, starts_at, total_capacity, available_count FROM sessions WHERE id = ?`
	var s model.Session
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.FilmID, &s.StartsAt, &s.Total, &s.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}
