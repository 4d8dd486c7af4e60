package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidTextRepr     = "22P02"
)

// unavailableClasses are the postgres error classes reported as core.KindStorageUnavailable:
// connection exception, insufficient resources, operator intervention.
var unavailableClasses = map[pq.ErrorClass]bool{"08": true, "53": true, "57": true}

// mapError translates driver failures into domain errors. notFound is returned on sql.ErrNoRows,
// on an invalid identifier and on a dangling foreign key.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return core.ErrStorageUnavailable.WithCause(err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return core.ErrConflict.WithCause(err)
		case pqInvalidTextRepr, pqForeignKeyViolation:
			return notFound
		}
		if unavailableClasses[pqErr.Code.Class()] {
			return core.ErrStorageUnavailable.WithCause(err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return core.ErrStorageUnavailable.WithCause(err)
	}
	return err
}
