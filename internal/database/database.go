// Package database opens the backing SQL database. Two drivers are
// supported: "postgres" (pgx stdlib) and "mysql". Queries in the store
// packages are written with ? placeholders and rebound per driver.
package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	// Database drivers — register with database/sql
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps *sql.DB with the driver name so stores can rebind placeholders.
type DB struct {
	*sql.DB
	driver string
}

// Open connects to the configured database.
// For mysql DSNs, parseTime=true is required so timestamps scan into time.Time.
func Open(driver, dsn string) (*DB, error) {
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: db, driver: driver}, nil
}

// Driver returns the configured driver name ("postgres" or "mysql").
func (db *DB) Driver() string { return db.driver }

// Rebind rewrites ? placeholders to $1..$n for postgres. MySQL queries
// pass through unchanged.
func (db *DB) Rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	return rebindDollar(query)
}

func driverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q (want postgres or mysql)", driver)
	}
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
