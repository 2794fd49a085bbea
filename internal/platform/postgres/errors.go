package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskdesk/internal/store"
)

// SQLSTATE classes raised by the schema's constraints.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// constraintErrors names the store error for constraints whose violation
// means something specific to callers. Other violations map by SQLSTATE.
var constraintErrors = map[string]error{
	"users_email_lower_idx": store.ErrEmailExists,
	"comments_task_id_fkey": store.ErrTaskNotFound,
}

// MapError translates a driver error into a store error. Known constraints
// map to their entity error as is; anything unrecognized is returned
// unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return mapped
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
	case codeForeignKeyViolation, codeCheckViolation:
		return fmt.Errorf("%w: %s violates %s", store.ErrInvalidEntity, pgErr.TableName, pgErr.ConstraintName)
	case codeNotNullViolation:
		return fmt.Errorf("%w: %s.%s is required", store.ErrInvalidEntity, pgErr.TableName, pgErr.ColumnName)
	}
	return err
}

// expectRows returns notFound when res reports no affected rows.
func expectRows(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
