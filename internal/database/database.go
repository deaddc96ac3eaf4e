// Package database opens the catalog store and owns its schema.
package database

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"github.com/fekuna/catalog-service/config"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	//go:embed schema_postgres.sql
	postgresSchema string

	//go:embed schema_sqlite.sql
	sqliteSchema string
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

func init() {
	// sqlx only knows "sqlite3" as a question-mark driver.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to the configured engine and applies pool settings.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.Database.Driver {
	case DriverPostgres:
		db, err := sqlx.ConnectContext(ctx, DriverPostgres, cfg.PostgresDSN())
		if err != nil {
			return nil, errors.Wrap(err, "connect postgres")
		}
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
		db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)
		return db, nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLite.Path)
	default:
		return nil, errors.Errorf("unsupported driver %q", cfg.Database.Driver)
	}
}

// OpenSQLite opens a SQLite database with foreign keys enforced. A single
// connection is used so that ":memory:" databases survive between calls.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:"
	} else if !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

	db, err := sqlx.ConnectContext(ctx, DriverSQLite, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect sqlite")
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates the catalog tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := postgresSchema
	if db.DriverName() == DriverSQLite {
		schema = sqliteSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migrate: %s", firstLine(stmt))
		}
	}
	return nil
}

// RunInTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

// InTx runs fn on ext when it is already a transaction, and otherwise in a
// new transaction on db.
func InTx(ctx context.Context, db *sqlx.DB, ext sqlx.ExtContext, fn func(tx sqlx.ExtContext) error) error {
	if _, ok := ext.(*sqlx.Tx); ok {
		return fn(ext)
	}
	return RunInTx(ctx, db, func(tx *sqlx.Tx) error { return fn(tx) })
}

// IsUniqueViolation reports whether err comes from a unique index, for
// either engine.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// UniqueViolationTarget returns the index or column named by a unique
// violation, or "" when the engine does not say.
func UniqueViolationTarget(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// "UNIQUE constraint failed: products.sku"
		msg := liteErr.Error()
		if i := strings.LastIndex(msg, ": "); i >= 0 {
			return strings.TrimRight(msg[i+2:], ")")
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
