// Package repository implements all database queries for the platform.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrWorkshopFull is returned when a workshop has no remaining capacity.
var ErrWorkshopFull = errors.New("workshop is fully booked")

// ErrWorkshopNotOpen is returned when a workshop is not open for registration.
var ErrWorkshopNotOpen = errors.New("workshop is not open for registration")

// ErrAlreadyRegistered is returned when the same email registers twice for
// one workshop.
var ErrAlreadyRegistered = errors.New("email already registered for this workshop")

// ErrDuplicateEmail is returned when a user account already exists.
var ErrDuplicateEmail = errors.New("account with this email already exists")

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
// Used as a backstop behind the in-transaction duplicate checks.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
