package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/mercado-storefront/internal/database"
	"github.com/iliyamo/mercado-storefront/internal/model"
)

// UserRepo stores registered users.
type UserRepo struct {
	DB      *sql.DB
	Dialect database.Dialect
}

func NewUserRepo(db *sql.DB, d database.Dialect) *UserRepo { return &UserRepo{DB: db, Dialect: d} }

// NormalizeEmail lower-cases and trims an address so lookups are case
// insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Insert creates a user with an already hashed password and returns the
// stored row. ErrEmailExists is returned when the email is taken.
func (r *UserRepo) Insert(ctx context.Context, name, email, passwordHash string) (model.User, error) {
	email = NormalizeEmail(email)
	now := time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		r.Dialect.Rebind("INSERT INTO users (name, email, password_hash, created_at) VALUES (?,?,?,?)"),
		name, email, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	// lib/pq has no LastInsertId, so re-read by the unique key instead.
	return r.FindByEmail(ctx, email)
}

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		r.Dialect.Rebind("SELECT id,name,email,password_hash,created_at FROM users WHERE email=? LIMIT 1"),
		NormalizeEmail(email)).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, notFound(err)
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		r.Dialect.Rebind("SELECT id,name,email,password_hash,created_at FROM users WHERE id=? LIMIT 1"),
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, notFound(err)
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,password_hash,created_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
