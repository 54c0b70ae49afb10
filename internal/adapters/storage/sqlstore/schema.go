package sqlstore

import (
	"context"
	"embed"
	"strings"

	"github.com/juju/errors"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// InitSchema crea las tablas que falten. Idempotente.
func (db *DB) InitSchema(ctx context.Context) error {
	raw, err := schemaFS.ReadFile("schema/" + string(db.dialect) + ".sql")
	if err != nil {
		return errors.Annotatef(err, "schema for %s", db.dialect)
	}

	stmts := splitStatements(string(raw))
	for i, stmt := range stmts {
		err := db.run(ctx, "schema.init", func(ctx context.Context) error {
			_, err := db.sql.ExecContext(ctx, stmt)
			return err
		})
		if err != nil {
			return errors.Annotatef(err, "schema statement %d", i+1)
		}
	}

	db.log.Info("schema ready", map[string]any{"statements": len(stmts)})
	return nil
}

func splitStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
