package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"diarioweb/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB is a connection pool plus the SQL dialect spoken by its driver.
// Repositories write queries with ? placeholders and pass them through
// Rebind.
type DB struct {
	*sql.DB
	Dialect Dialect
}

var (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Connect opens the store for one of the supported drivers:
//
//	sqlite   - embedded file database (modernc.org/sqlite), dsn is a path
//	postgres - pooled remote server (lib/pq)
//	pgx      - serverless SQL proxy (pgx stdlib, simple protocol)
func Connect(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	switch driver {
	case "sqlite":
		dialect = DialectSQLite
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			// Writers serialize on the file lock anyway, and :memory: is per connection.
			db.SetMaxOpenConns(1)
		}
	case "postgres":
		dialect = DialectPostgres
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxIdleTime(5 * time.Minute)
		}
	case "pgx":
		dialect = DialectPostgres
		db, err = sql.Open("pgx", proxyDSN(dsn))
		if err == nil {
			db.SetMaxOpenConns(5)
			db.SetConnMaxIdleTime(time.Minute)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	for i := 0; i < connectAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			logger.Sugar.Infof("Successfully connected to the %s database", driver)
			return &DB{DB: db, Dialect: dialect}, nil
		}
		if i == connectAttempts-1 {
			break
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", retryDelay, err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, err)
}

// Rebind rewrites ? placeholders into the form the dialect expects.
func (d *DB) Rebind(query string) string {
	if d.Dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

func sqliteDSN(path string) string {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logger.Sugar.Warnf("Could not create database directory %s: %v", dir, err)
			}
		}
	}
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// proxyDSN switches pgx to the simple protocol; transaction-mode poolers in
// front of serverless databases do not keep prepared statements.
func proxyDSN(dsn string) string {
	if strings.Contains(dsn, "default_query_exec_mode") {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return dsn + " default_query_exec_mode=simple_protocol"
	}
	q := u.Query()
	q.Set("default_query_exec_mode", "simple_protocol")
	u.RawQuery = q.Encode()
	return u.String()
}
