package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-carservice-api/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify maps driver errors onto domain sentinels. A foreign-key violation
// on insert or update means a referenced row is missing.
func classify(err error) error {
	return classifyAs(err, domain.ErrNotFound)
}

// classifyDelete treats a foreign-key violation as a conflict: other rows still
// reference the one being deleted.
func classifyDelete(err error) error {
	return classifyAs(err, domain.ErrConflict)
}

func classifyAs(err error, onForeignKey error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", onForeignKey, pgErr.ConstraintName)
		}
		return fmt.Errorf("db error: %w", err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("db error: %w: %w", domain.ErrDependencyUnavailable, err)
	}
	return fmt.Errorf("db error: %w", err)
}
