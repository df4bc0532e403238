// Package persistence provides database adapters implementing the domain repositories.
package persistence

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"wisechat_server/core/domain"
)

// Common persistence errors
var (
	ErrNotFound  = domain.ErrNotFound
	ErrDuplicate = domain.ErrDuplicate
)

const uniqueViolation = "23505"

// translate maps driver errors onto the repository errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
