package postgres

import (
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Helper functions for PostgreSQL error checking

// uniqueViolationField reports whether err is a unique-constraint violation
// and, when possible, which account field the violated index covers. The
// driver error carries the constraint name (e.g. idx_accounts_email), so the
// conflicting field survives the race between pre-check and insert.
func uniqueViolationField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fieldFromConstraint(pgErr.ConstraintName), true
	}

	// GORM's translated duplicate-key error loses the constraint name.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	return "", false
}

func fieldFromConstraint(constraintName string) string {
	name := strings.ToLower(constraintName)
	switch {
	case strings.Contains(name, "email"):
		return "email"
	case strings.Contains(name, "username"):
		return "username"
	default:
		return ""
	}
}

func isNotNullConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.NotNullViolation {
		return true
	}

	// Fallback for errors that arrive without the driver error attached.
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "null value") ||
		strings.Contains(errMsg, "not null") ||
		strings.Contains(errMsg, pgerrcode.NotNullViolation)
}
