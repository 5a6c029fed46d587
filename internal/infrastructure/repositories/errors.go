package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	domainerrors "hmr-builders.backend/internal/domain/errors"
)

// defaultCardIndex allows one active default card per user.
const defaultCardIndex = "uniq_payment_methods_default"

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// sqlState extracts the SQLSTATE from pgx or lib/pq errors.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// constraintName names the constraint or index a pgx or lib/pq error reports.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// isDefaultCardViolation reports a second active default card for one user.
func isDefaultCardViolation(err error) bool {
	if constraintName(err) == defaultCardIndex {
		return true
	}
	// SQLite reports the indexed columns, not the index name
	return strings.HasSuffix(err.Error(), "UNIQUE constraint failed: payment_methods.user_id")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || sqlState(err) == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) || sqlState(err) == pgCheckViolation {
		return true
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// translateError maps lock and constraint failures onto domain sentinels and
// leaves everything else untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch sqlState(err) {
	case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
		return fmt.Errorf("%w: %v", domainerrors.ErrLockTimeout, err)
	}
	if strings.Contains(err.Error(), "database is locked") {
		return fmt.Errorf("%w: %v", domainerrors.ErrLockTimeout, err)
	}
	if isUniqueViolation(err) && !errors.Is(err, domainerrors.ErrAlreadyExists) {
		return fmt.Errorf("%w: %v", domainerrors.ErrAlreadyExists, err)
	}
	return err
}
