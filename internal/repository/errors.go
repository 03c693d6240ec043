// Package repository holds the SQL-backed stores for users, sessions and
// orders. Every repo carries the Dialect of its *sql.DB so the same queries
// run on MySQL, SQLite and Postgres. Sentinel errors below let the service
// layer classify failures without looking at driver types.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by UserRepo.Insert when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// isUniqueViolation reports whether err is a unique-key violation from any
// of the supported drivers.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
