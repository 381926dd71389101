package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DB wraps a database/sql handle together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect

	stop     chan struct{}
	stopOnce sync.Once
}

// Options configures Open.
type Options struct {
	Driver       string // "postgres" or "sqlite"
	DSN          string
	MaxOpenConns int
}

// Open connects to the database, verifies it with a ping and bootstraps the schema.
func Open(ctx context.Context, opts Options) (*DB, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}
	dsn := opts.DSN
	if dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}
	sqlDB, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", opts.Driver, err)
	}
	if dialect == SQLite {
		// one writer at a time; concurrent writers would hit SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	d := &DB{DB: sqlDB, Dialect: dialect, stop: make(chan struct{})}
	if err := d.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "oxiforms.db"
	}
	var params []string
	if !strings.Contains(dsn, "_pragma=") {
		params = append(params, "_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_time_format=") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Rebind rewrites ? placeholders for the active dialect.
func (d *DB) Rebind(query string) string {
	return d.Dialect.Rebind(query)
}

// Keepalive pings the database every interval and logs state changes
// until Close is called.
func (d *DB) Keepalive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	healthy := true
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := d.PingContext(ctx)
			cancel()
			switch {
			case err != nil && healthy:
				log.WithError(err).Warn("db: ping failed")
				healthy = false
			case err == nil && !healthy:
				log.Info("db: connection recovered")
				healthy = true
			}
		}
	}
}

// Close stops the keepalive loop and closes the pool.
func (d *DB) Close() error {
	d.stopOnce.Do(func() { close(d.stop) })
	return d.DB.Close()
}
