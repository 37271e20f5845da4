package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Open connects to the configured SQL backend and verifies the
// connection. driver is "mysql" for shared deployments or "sqlite" for
// single-process runs and tests; both speak the same schema and
// placeholder syntax, so the repositories above never branch on the
// driver.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "mysql":
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, err
		}
		// Pool settings
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
		return ping(db)
	case "sqlite":
		if dir := sqliteDir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// Single writer: sqlite serializes writes anyway and a lone
		// connection keeps in-memory databases coherent.
		db.SetMaxOpenConns(1)
		return ping(db)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// ping verifies the connection with a timeout, closing the handle on
// failure.
func ping(db *sql.DB) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// sqliteDir extracts the directory to create for a file-backed sqlite
// DSN. In-memory and URI forms need no directory.
func sqliteDir(dsn string) string {
	path, _, _ := strings.Cut(dsn, "?")
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return ""
	}
	if dir := filepath.Dir(path); dir != "." {
		return dir
	}
	return ""
}

// MySQLDSN builds the MySQL connection string.
// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
func MySQLDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}

// SQLiteDSN builds the sqlite connection string with a busy timeout,
// WAL journaling and foreign keys enabled.
func SQLiteDSN(path string) string {
	return path + "?_pragma=busy_timeout=5000&_pragma=journal_mode=WAL&_pragma=foreign_keys=1"
}
