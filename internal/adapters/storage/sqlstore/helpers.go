package sqlstore

import (
	"context"
	"database/sql"
	"strings"
)

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// execAffected corre una sentencia y devuelve filas afectadas; 0 no es error.
func execAffected(ctx context.Context, db *DB, op, query string, args ...any) (int64, error) {
	var n int64
	err := db.run(ctx, op, func(ctx context.Context) error {
		res, err := db.sql.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err = rowsAffected(res)
		return err
	})
	return n, err
}

// likePattern envuelve el término para LIKE; el término siempre va como parámetro.
// Escapa los comodines para que "%" o "_" del usuario sean literales.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(term))) + "%"
}

// offsetPage devuelve limit y offset saneados.
func offsetPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
