package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Sentinel errors returned by repositories so callers can map them to HTTP
// statuses without inspecting driver errors.
var (
	ErrBusNotFound        = errors.New("bus not found")
	ErrRouteNotFound      = errors.New("route not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDuplicateRouteCode = errors.New("a bus with this route code already exists")
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	// sqlmock and wrapped errors don't carry pq codes
	return strings.Contains(err.Error(), "duplicate key value")
}
