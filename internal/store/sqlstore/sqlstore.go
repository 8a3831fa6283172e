// Package sqlstore keeps items and lists in a relational database through
// gorm. PostgreSQL and SQLite are supported.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Aidin1998/todolist/common/dbutil"
	"github.com/Aidin1998/todolist/internal/todo"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config configures the database connection
type Config struct {
	Dialect         string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

// Store is a gorm-backed todo.Store
type Store struct {
	db      *gorm.DB
	dialect string
	logger  *zap.Logger
}

var _ todo.Store = (*Store)(nil)

// Open connects to the database, configures the pool and migrates the schema.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Dialect {
	case DialectPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DialectSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(gormWriter{log.Named("gorm").Sugar()}, logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	// SQLite allows a single writer; serializing connections avoids "database is locked".
	if cfg.Dialect == DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&itemRecord{}, &listRecord{}, &listItemRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info("sql store ready", zap.String("dialect", cfg.Dialect))
	return &Store{db: db, dialect: cfg.Dialect, logger: log}, nil
}

func (s *Store) Items() todo.ItemRepository { return &itemRepository{db: s.db} }
func (s *Store) Lists() todo.ListRepository { return &listRepository{db: s.db} }
func (s *Store) Backend() string            { return s.dialect }

// DB exposes the gorm handle, used for pool metrics
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormWriter routes gorm's logger output to zap
type gormWriter struct {
	log *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

func wrap(err error) error {
	return dbutil.WrapError(err)
}
