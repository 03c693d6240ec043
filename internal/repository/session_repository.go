package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/mercado-storefront/internal/database"
	"github.com/iliyamo/mercado-storefront/internal/model"
)

// SessionRepo persists login sessions keyed by their opaque id.
type SessionRepo struct {
	DB      *sql.DB
	Dialect database.Dialect
}

func NewSessionRepo(db *sql.DB, d database.Dialect) *SessionRepo {
	return &SessionRepo{DB: db, Dialect: d}
}

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	var exp sql.NullTime
	if s.ExpiresAt != nil {
		exp = sql.NullTime{Time: s.ExpiresAt.UTC(), Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		r.Dialect.Rebind("INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?,?,?,?)"),
		s.ID, s.UserID, s.CreatedAt.UTC(), exp)
	return err
}

// FindByID returns the session row as stored. Expiry is not checked here;
// callers decide validity against their own clock.
func (r *SessionRepo) FindByID(ctx context.Context, id string) (model.Session, error) {
	var (
		s   model.Session
		exp sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		r.Dialect.Rebind("SELECT id, user_id, created_at, expires_at FROM sessions WHERE id=? LIMIT 1"),
		id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &exp)
	if err != nil {
		return model.Session{}, notFound(err)
	}
	if exp.Valid {
		t := exp.Time.UTC()
		s.ExpiresAt = &t
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind("DELETE FROM sessions WHERE id=?"), id)
	return err
}

// DeleteExpired removes every session whose expiry is at or before now and
// reports how many rows went away.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		r.Dialect.Rebind("DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= ?"),
		now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
