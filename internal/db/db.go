package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// Open connects to the database named by dsn. Both PostgreSQL and SQLite
// DSNs are accepted; the dialect is sniffed from the DSN shape.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	dialect, errDetect := detectDialectFromDSN(trimmed)
	if errDetect != nil {
		return nil, errDetect
	}
	if dialect == DialectPostgres {
		return openPostgres(trimmed)
	}
	return openSQLite(trimmed)
}

// detectDialectFromDSN infers the dialect from the DSN shape. URL schemes
// and key=value pairs mean Postgres; bare paths and file: URIs mean SQLite.
func detectDialectFromDSN(dsn string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(lower, scheme) {
			return DialectPostgres, nil
		}
	}
	for _, kv := range []string{"host=", "user=", "dbname=", "sslmode="} {
		if strings.Contains(lower, kv) {
			return DialectPostgres, nil
		}
	}
	if strings.HasPrefix(lower, "file:") ||
		strings.HasPrefix(lower, "sqlite://") ||
		strings.HasPrefix(lower, "sqlite3://") ||
		!strings.Contains(lower, "://") {
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("db: unrecognized dsn: %s", dsn)
}

// gormConfig routes GORM output through logrus at warn level so slow
// queries and errors land in the same stream as the rest of the app.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	pgCfg, errParse := pgx.ParseConfig(dsn)
	if errParse != nil {
		return nil, fmt.Errorf("db: parse postgres dsn: %w", errParse)
	}
	sqlDB := stdlib.OpenDB(*pgCfg)
	tunePool(sqlDB, 25)

	if errPing := ping(sqlDB); errPing != nil {
		_ = sqlDB.Close()
		return nil, errPing
	}

	conn, errOpen := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if errOpen != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: open postgres: %w", errOpen)
	}
	return conn, nil
}

func openSQLite(dsn string) (*gorm.DB, error) {
	normalized := withSQLitePragmas(normalizeSQLiteDSN(dsn))
	if errEnsure := ensureSQLiteDir(normalized); errEnsure != nil {
		return nil, errEnsure
	}

	conn, errOpen := gorm.Open(sqlite.Open(normalized), gormConfig())
	if errOpen != nil {
		return nil, fmt.Errorf("db: open sqlite: %w", errOpen)
	}
	sqlDB, errSQL := conn.DB()
	if errSQL != nil {
		return nil, fmt.Errorf("db: sqlite pool: %w", errSQL)
	}
	tunePool(sqlDB, 10)

	if errPing := ping(sqlDB); errPing != nil {
		_ = sqlDB.Close()
		return nil, errPing
	}
	return conn, nil
}

func tunePool(sqlDB *sql.DB, maxConns int) {
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

func ping(sqlDB *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if errPing := sqlDB.PingContext(ctx); errPing != nil {
		return fmt.Errorf("db: ping: %w", errPing)
	}
	return nil
}

// normalizeSQLiteDSN rewrites sqlite:// and sqlite3:// URLs as file: DSNs,
// which is the form the driver expects.
func normalizeSQLiteDSN(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "sqlite://") || strings.HasPrefix(lower, "sqlite3://") {
		if _, rest, found := strings.Cut(trimmed, "://"); found {
			return "file:" + rest
		}
	}
	return trimmed
}

// withSQLitePragmas appends connection pragmas to the DSN unless the
// caller already set any. WAL keeps readers unblocked during writes and
// busy_timeout covers short write contention.
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	pragmas := "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmas
	}
	return dsn + "?" + pragmas
}

// sqliteFilePath extracts the on-disk path from a SQLite DSN, or returns
// "" for in-memory databases.
func sqliteFilePath(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" || trimmed == ":memory:" {
		return ""
	}

	if strings.HasPrefix(strings.ToLower(trimmed), "file:") {
		path := trimmed[len("file:"):]
		if before, _, found := strings.Cut(path, "?"); found {
			path = before
		}
		path = strings.TrimPrefix(path, "//")
		if path == "" || path == ":memory:" {
			return ""
		}
		return path
	}
	if strings.Contains(trimmed, "://") {
		return ""
	}
	if before, _, found := strings.Cut(trimmed, "?"); found {
		return before
	}
	return trimmed
}

func ensureSQLiteDir(dsn string) error {
	path := sqliteFilePath(dsn)
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
		return fmt.Errorf("db: create sqlite dir %s: %w", dir, errMkdir)
	}
	return nil
}
