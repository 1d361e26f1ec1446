package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned by mutations whose target row does not exist.
	// Plain lookups return (nil, nil) instead.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects the write.
	ErrConflict = errors.New("conflict")
	// ErrOrderClosed is returned when an order is no longer pending or bidding.
	ErrOrderClosed = errors.New("order is closed")
	// ErrBidClosed is returned when a bid has already been decided.
	ErrBidClosed = errors.New("bid already decided")
)

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
