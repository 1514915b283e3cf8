package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jaldrishti/jaldrishti"
)

// isUndefinedTable checks if an error is a PostgreSQL undefined_table error,
// which means migrations have not been applied.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01" // undefined_table
	}
	return false
}

// isCheckViolation checks if an error is a PostgreSQL check constraint violation.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514" // check_violation
	}
	return false
}

// internal wraps a query failure, pointing at migrations when the schema is missing.
func internal(message string, err error) error {
	if isUndefinedTable(err) {
		return jaldrishti.Internal(message+": schema missing, run migrations", err)
	}
	return jaldrishti.Internal(message, err)
}
