package sqlstore

import (
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect identifica el motor; las sentencias se escriben una sola vez con "?".
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func ParseDialect(s string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, true
	case "sqlite", "sqlite3":
		return SQLite, true
	default:
		return "", false
	}
}

// driverName es el nombre registrado en database/sql.
func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// placeholders devuelve el formato de parámetros del motor.
func (d Dialect) placeholders() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// builder es el punto de partida de las sentencias dinámicas.
func (d Dialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholders())
}

// rebind traduce las sentencias estáticas escritas con "?" al formato del motor.
func (d Dialect) rebind(query string) string {
	out, err := d.placeholders().ReplacePlaceholders(query)
	if err != nil {
		panic("sqlstore: rebind: " + err.Error())
	}
	return out
}

// isDuplicate usa el código estructurado del driver, nunca el mensaje.
func (d Dialect) isDuplicate(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}

	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
