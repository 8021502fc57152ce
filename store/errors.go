package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

type (
	DuplicateUser struct {
		Username string
	}

	UnsupportedDriver struct {
		Driver string
	}

	InvalidItem struct {
		Reason string
	}
)

const (
	pgUniqueViolation = "23505"
)

func (d DuplicateUser) Error() string {
	return fmt.Sprintf("user %v already exists", d.Username)
}

// Conflict reports that the failure was caused by a uniqueness constraint
func (d DuplicateUser) Conflict() bool {
	return true
}

func (u UnsupportedDriver) Error() string {
	return fmt.Sprintf("database driver %v is not supported, use %v or %v", u.Driver, DriverSQLite, DriverPostgres)
}

func (i InvalidItem) Error() string {
	return fmt.Sprintf("invalid item, %v", i.Reason)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
