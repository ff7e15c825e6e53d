package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Driver names registered by the blank imports in cmd/server.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Options struct {
	Driver          string
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	PingTimeout     time.Duration
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithMaxIdleConns(count int) Option {
	return func(o *Options) { o.MaxIdleConns = count }
}

func WithConnMaxLifetime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = duration }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

func WithPingTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.PingTimeout = timeout }
}

// New opens a pool for the template store and verifies it with a ping,
// retrying with a linearly growing delay.
func New(opts ...Option) (*sql.DB, error) {
	options := &Options{
		Driver:          DriverSQLite,
		DataSource:      ":memory:",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		PingTimeout:     2 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	switch {
	case options.Driver == "":
		return nil, fmt.Errorf("database driver cannot be empty")
	case options.DataSource == "":
		return nil, fmt.Errorf("database data source cannot be empty")
	case options.RetryAttempts < 1:
		options.RetryAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= options.RetryAttempts; attempt++ {
		db, err := open(options)
		if err == nil {
			return db, nil
		}
		lastErr = err

		if attempt < options.RetryAttempts {
			time.Sleep(time.Duration(attempt) * options.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", options.Driver, options.RetryAttempts, lastErr)
}

func open(o *Options) (*sql.DB, error) {
	db, err := sql.Open(o.Driver, o.DataSource)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)
	db.SetConnMaxIdleTime(o.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), o.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Rebind rewrites "?" placeholders into the bind style the driver expects.
// Queries are written once with "?" and rebound for Postgres.
func Rebind(driver, query string) string {
	return sqlx.Rebind(sqlx.BindType(driver), query)
}
