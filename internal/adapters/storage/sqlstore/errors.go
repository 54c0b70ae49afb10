package sqlstore

import (
	"context"
	"database/sql"

	"github.com/juju/errors"
)

// ErrStorage matchea cualquier StorageError vía errors.Is.
const ErrStorage = errors.ConstError("storage error")

// StorageError envuelve una falla del motor que no es NotFound ni duplicado.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage error: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// classify deja pasar los errores ya tipados y convierte el resto.
func (db *DB) classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errors.NotFound),
		errors.Is(err, errors.AlreadyExists),
		errors.Is(err, errors.NotValid):
		return err
	case db.dialect.isDuplicate(err):
		return errors.NewAlreadyExists(err, op)
	default:
		return &StorageError{Op: op, Err: err}
	}
}

// errorKind es la etiqueta de métricas.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errors.NotFound):
		return "not_found"
	case errors.Is(err, errors.AlreadyExists):
		return "conflict"
	case errors.Is(err, errors.NotValid):
		return "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "storage"
	}
}

func notFoundIfNoRows(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundf(format, args...)
	}
	return err
}
