package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/andrebq/packbox/internal/logutil"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

type (
	// Store is the relational backend holding users and items
	Store struct {
		db      *sql.DB
		driver  string
		boxes   *boxCache
		boxLock sync.RWMutex
	}

	Options struct {
		// Driver is either DriverSQLite or DriverPostgres
		Driver string
		// DSN is a file path for sqlite and a connection string for postgres
		DSN string
		// CacheTTL controls how long a box listing stays cached
		CacheTTL time.Duration
	}

	gooseLogger struct {
		log zerolog.Logger
	}
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"

	DefaultCacheTTL = time.Minute
)

var (
	//go:embed migrations
	migrations embed.FS

	// goose keeps its settings in package level variables
	migrateLock sync.Mutex
)

// Open connects to the database described by opts and brings its schema
// up to date.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	conn, err := openDatabase(ctx, opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	s := &Store{db: conn, driver: opts.Driver}
	err = s.migrate(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to migrate %v database, cause %w", opts.Driver, err)
	}
	s.boxes, err = newBoxCache(opts.CacheTTL)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func openDatabase(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	var connstr string
	switch driver {
	case DriverSQLite:
		if len(dsn) == 0 {
			return nil, fmt.Errorf("missing path to sqlite database")
		}
		connstr = dsn
		if !strings.HasPrefix(dsn, "file:") {
			err := os.MkdirAll(filepath.Dir(dsn), 0755)
			if err != nil {
				return nil, fmt.Errorf("unable to create directory to store %v, cause %w", dsn, err)
			}
			connstr = fmt.Sprintf("file:%v?_journal=wal&_busy_timeout=5000&_fk=1&mode=rwc", dsn)
		}
	case DriverPostgres:
		if len(dsn) == 0 {
			return nil, fmt.Errorf("missing postgres connection string")
		}
		connstr = dsn
	default:
		return nil, UnsupportedDriver{Driver: driver}
	}
	conn, err := sql.Open(driver, connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v database, cause %w", driver, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping %v database, cause %w", driver, err)
	}
	return conn, nil
}

func (s *Store) migrate(ctx context.Context) error {
	dialect := "sqlite3"
	if s.driver == DriverPostgres {
		dialect = "postgres"
	}
	migrateLock.Lock()
	defer migrateLock.Unlock()
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: logutil.GetOrDefault(ctx).With().Str("component", "migrations").Logger()})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, path.Join("migrations", dialect))
}

// Ping checks if the database is still reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the name of the sql driver in use
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Close() error {
	s.boxes.close()
	return s.db.Close()
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal().Msgf(strings.TrimSpace(format), v...)
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Debug().Msgf(strings.TrimSpace(format), v...)
}
