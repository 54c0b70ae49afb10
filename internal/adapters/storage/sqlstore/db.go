// Package sqlstore implementa los repositorios sobre database/sql.
// Las mismas sentencias corren en postgres (pgx) y sqlite (modernc).
package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/metrics"

	"github.com/juju/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	Driver string
	DSN    string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Timeout por operación (o por transacción completa).
	QueryTimeout time.Duration

	Logger  logger.Logger
	Metrics *metrics.Collector
}

// DB es el storage handle compartido por todos los repos.
type DB struct {
	sql     *sql.DB
	dialect Dialect
	timeout time.Duration
	log     logger.Logger
	metrics *metrics.Collector
}

// Open abre el pool y verifica conectividad con un ping de 3s.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	d, ok := ParseDialect(cfg.Driver)
	if !ok {
		return nil, errors.NotValidf("database driver %q", cfg.Driver)
	}

	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.NotValidf("empty dsn")
	}
	if d == SQLite {
		dsn = withForeignKeys(dsn)
	}

	sdb, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, errors.Annotate(err, "opening database")
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 5
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	idle := cfg.ConnMaxIdleTime
	if idle <= 0 {
		idle = 5 * time.Minute
	}

	sdb.SetMaxOpenConns(maxOpen)
	sdb.SetMaxIdleConns(maxIdle)
	sdb.SetConnMaxIdleTime(idle)
	sdb.SetConnMaxLifetime(lifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := sdb.PingContext(pingCtx); err != nil {
		_ = sdb.Close()
		return nil, errors.Annotate(err, "pinging database")
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &DB{
		sql:     sdb,
		dialect: d,
		timeout: timeout,
		log:     log.With(map[string]any{"component": "sqlstore", "dialect": string(d)}),
		metrics: cfg.Metrics,
	}, nil
}

// sqlite aplica foreign keys por conexión; sin el pragma no se validan.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func (db *DB) Dialect() Dialect { return db.dialect }

func (db *DB) Close() error { return db.sql.Close() }

// Ping respalda el health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.run(ctx, "ping", func(ctx context.Context) error {
		return db.sql.PingContext(ctx)
	})
}

// run aplica timeout, clasifica el error y registra la métrica de la operación.
func (db *DB) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	start := time.Now()
	err := db.classify(op, fn(ctx))
	db.metrics.ObserveStore(op, time.Since(start), errorKind(err))

	if err != nil && errorKind(err) == "storage" {
		db.log.Debug("store operation failed", map[string]any{"op": op, "error": err})
	}
	return err
}

// inTx: begin, fn, commit. Cualquier error hace rollback.
func (db *DB) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return errors.Annotate(err, "begin")
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.log.Warn("rollback failed", map[string]any{"op": op, "error": rbErr})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Annotate(err, "commit")
	}
	return nil
}

// queryer lo cumplen *sql.DB y *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Annotate(err, "rows affected")
	}
	return n, nil
}
