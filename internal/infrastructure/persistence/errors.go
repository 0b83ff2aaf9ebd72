package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wastebill/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations
const pgUniqueViolation = "23505"

// translateError maps driver-level errors to domain errors. Unique constraint
// violations become shared.ErrAlreadyExists so repositories report duplicates
// uniformly across postgres and the sqlite test driver.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// isUniqueViolation reports whether err is a unique constraint violation
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// sqlite reports constraint failures as plain errors
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
