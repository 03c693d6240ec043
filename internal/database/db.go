package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names the SQL flavour behind a *sql.DB. Its value doubles as the
// database/sql driver name.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// ParseDialect maps a DB_DRIVER value to a Dialect. Empty means SQLite.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported DB_DRIVER %q", s)
}

// Rebind rewrites `?` placeholders into the form the dialect expects.
// Queries in this module never contain a literal question mark.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DayExpr returns an expression yielding the YYYY-MM-DD part of a
// timestamp column.
func (d Dialect) DayExpr(col string) string {
	switch d {
	case MySQL:
		return "DATE_FORMAT(" + col + ", '%Y-%m-%d')"
	case Postgres:
		return "to_char(" + col + ", 'YYYY-MM-DD')"
	default:
		// go-sqlite3 stores time.Time as "2006-01-02 15:04:05..." text
		return "substr(" + col + ", 1, 10)"
	}
}

// Options describes how to reach the database. Path is only used by SQLite;
// the network fields are used by MySQL and Postgres.
type Options struct {
	Driver Dialect
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	Path   string
}

// DSN builds the driver-specific data source name.
func (o Options) DSN() string {
	switch o.Driver {
	case MySQL:
		auth := o.User
		if o.Pass != "" {
			auth = fmt.Sprintf("%s:%s", o.User, o.Pass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, o.Host, o.Port, o.Name)
	case Postgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			o.Host, o.Port, o.User, o.Pass, o.Name)
	default:
		path := o.Path
		if path == "" {
			path = ":memory:"
		}
		return path + "?_foreign_keys=on&_busy_timeout=5000"
	}
}

// Open connects to the configured database and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	if o.Driver == "" {
		o.Driver = SQLite
	}
	if o.Driver == SQLite && o.Path != "" && o.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(o.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open(string(o.Driver), o.DSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	if o.Driver == SQLite && (o.Path == "" || o.Path == ":memory:") {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
