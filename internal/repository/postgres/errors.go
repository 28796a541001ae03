package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

// Postgres error codes worth distinguishing for callers.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// classify maps a driver error to the application taxonomy. Unique and
// foreign key violations become conflicts; everything else is wrapped
// as a database error with the operation name.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			msg := "duplicate value violates a unique constraint"
			if pqErr.Constraint != "" {
				msg = fmt.Sprintf("duplicate value for %s", pqErr.Constraint)
			}
			return apperrors.Conflict(msg, err)
		case pqForeignKeyViolation:
			return apperrors.Conflict("referenced record does not exist", err)
		}
	}

	return apperrors.Database(operation, err)
}
