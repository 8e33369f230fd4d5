package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"studioflow/internal/domain"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return false
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgInvalidTextError checks for malformed input such as a non-UUID id.
// Treated as "not found" since no row can match it.
func IsPgInvalidTextError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 22P02 = invalid_text_representation
		return pgErr.Code == "22P02"
	}
	return false
}

// notFoundOr maps missing rows to domain.ErrNotFound and wraps everything else
func notFoundOr(err error, resource, id, op string) error {
	if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
		return &domain.NotFoundError{Message: fmt.Sprintf("%s %s not found", resource, id)}
	}
	return fmt.Errorf("%s: %w", op, err)
}
