package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // goqu dialect
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var ErrNotSQLite = errors.New("operation requires the sqlite3 driver")

// sqliteDriverName is go-sqlite3 with a Unicode-aware go_lower() function.
// The built-in LOWER() only folds ASCII.
const sqliteDriverName = "sqlite3_shareit"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("go_lower", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(sqliteDriverName, sqlx.QUESTION)
}

// DB is the sqlx/goqu backed store. A DB returned by InTx shares the
// connection pool and routes every statement through the open transaction.
type DB struct {
	conn    *sqlx.DB
	q       sqlx.ExtContext
	dialect goqu.DialectWrapper
	driver  string
	path    string
	logger  *zerolog.Logger
}

var _ domain.Repository = (*DB)(nil)

// NewDB opens (or creates) a SQLite database at path and applies the schema.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	return Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, logger)
}

// Open connects to the configured datastore and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	var (
		conn *sqlx.DB
		err  error
	)

	switch cfg.Driver {
	case config.DriverSQLite, "":
		conn, err = openSQLite(cfg.Path)
	case config.DriverPostgres:
		conn, err = openPostgres(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	db := &DB{
		conn:    conn,
		q:       conn,
		dialect: goqu.Dialect(driver),
		driver:  driver,
		path:    cfg.Path,
		logger:  logger,
	}

	if err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("Database connected")
	return db, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open(sqliteDriverName, path+"?_foreign_keys=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one writer at a time; also keeps every query on the same :memory: database
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

func openPostgres(cfg config.PostgresConfig) (*sqlx.DB, error) {
	conn, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConnections > 0 {
		conn.SetMaxOpenConns(cfg.MaxConnections)
		conn.SetMaxIdleConns(cfg.MaxConnections)
	}
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Driver() string {
	return db.driver
}

// InTx runs fn in a single transaction. Nested calls reuse the outer one.
func (db *DB) InTx(ctx context.Context, fn func(repo domain.Repository) error) (err error) {
	if _, ok := db.q.(*sqlx.Tx); ok {
		return fn(db)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txDB := *db
	txDB.q = tx

	if err := fn(&txDB); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) from(table string) *goqu.SelectDataset {
	return db.dialect.From(table).Prepared(true)
}

func (db *DB) get(ctx context.Context, dest interface{}, ds *goqu.SelectDataset) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return sqlx.GetContext(ctx, db.q, dest, query, args...)
}

func (db *DB) selectAll(ctx context.Context, dest interface{}, ds *goqu.SelectDataset) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return sqlx.SelectContext(ctx, db.q, dest, query, args...)
}

// insert executes ds and returns the generated id. The sqlite3 dialect has no
// RETURNING support, so it relies on LastInsertId instead.
func (db *DB) insert(ctx context.Context, ds *goqu.InsertDataset) (int64, error) {
	ds = ds.Prepared(true)

	if db.driver == config.DriverPostgres {
		query, args, err := ds.Returning("id").ToSQL()
		if err != nil {
			return 0, fmt.Errorf("failed to build query: %w", err)
		}
		var id int64
		if err := db.q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	result, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

type toSQLer interface {
	ToSQL() (string, []interface{}, error)
}

func (db *DB) exec(ctx context.Context, ds toSQLer) (int64, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	result, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (db *DB) exists(ctx context.Context, table string, id int64) (bool, error) {
	var found int64
	err := db.get(ctx, &found, db.from(table).Select(goqu.L("1")).Where(goqu.C("id").Eq(id)).Limit(1))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// utc normalises timestamps before they reach the driver so that stored
// values compare correctly as text on SQLite.
func utc(t time.Time) time.Time {
	return t.UTC()
}
