// Package store opens the todo.Store named by a store URI.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aidin1998/todolist/internal/config"
	"github.com/Aidin1998/todolist/internal/store/badgerstore"
	"github.com/Aidin1998/todolist/internal/store/memory"
	"github.com/Aidin1998/todolist/internal/store/redisstore"
	"github.com/Aidin1998/todolist/internal/store/sqlstore"
	"github.com/Aidin1998/todolist/internal/todo"
	"go.uber.org/zap"
)

// Target is a parsed store URI
type Target struct {
	Backend string
	// DSN is what the backend driver is opened with: a file path, a
	// directory or a connection URL depending on the backend.
	DSN string
}

// Parse maps a store URI to a backend. Supported forms:
//
//	memory://
//	sqlite://<path>, file:<path>
//	postgres://..., postgresql://...
//	badger://<dir>    (empty dir keeps data in memory)
//	redis://..., rediss://...
func Parse(uri string) (Target, error) {
	uri = strings.TrimSpace(uri)
	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		if strings.HasPrefix(uri, "file:") {
			return Target{Backend: sqlstore.DialectSQLite, DSN: uri}, nil
		}
		return Target{}, fmt.Errorf("store uri %q has no scheme", uri)
	}

	switch strings.ToLower(scheme) {
	case "memory":
		return Target{Backend: "memory"}, nil
	case "sqlite", "sqlite3":
		if rest == "" {
			return Target{}, fmt.Errorf("sqlite store uri needs a path")
		}
		return Target{Backend: sqlstore.DialectSQLite, DSN: rest}, nil
	case "postgres", "postgresql":
		return Target{Backend: sqlstore.DialectPostgres, DSN: uri}, nil
	case "badger":
		return Target{Backend: "badger", DSN: rest}, nil
	case "redis", "rediss":
		return Target{Backend: "redis", DSN: uri}, nil
	case "mongodb", "mongodb+srv":
		return Target{}, fmt.Errorf("mongodb is not supported; use a sqlite, postgres, badger or redis store uri")
	default:
		return Target{}, fmt.Errorf("unsupported store scheme %q", scheme)
	}
}

// Open connects to the store described by cfg.
func Open(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (todo.Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	target, err := Parse(cfg.URI)
	if err != nil {
		return nil, err
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	log = log.Named("store")

	switch target.Backend {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	case sqlstore.DialectSQLite, sqlstore.DialectPostgres:
		return sqlstore.Open(ctx, sqlstore.Config{
			Dialect:         target.Backend,
			DSN:             target.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, log)
	case "badger":
		return badgerstore.Open(target.DSN, log)
	case "redis":
		return redisstore.Open(ctx, target.DSN, cfg.KeyPrefix, log)
	}
	return nil, fmt.Errorf("unsupported store backend %q", target.Backend)
}

// OpenOrUnavailable opens the store and, when that fails, logs the error and
// returns a store that fails every call. Startup never aborts on a store
// connection error.
func OpenOrUnavailable(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) todo.Store {
	if log == nil {
		log = zap.NewNop()
	}
	st, err := Open(ctx, cfg, log)
	if err == nil {
		return st
	}

	backend := "unknown"
	if target, perr := Parse(cfg.URI); perr == nil {
		backend = target.Backend
	}
	log.Error("store connection failed, requests will fail until restart",
		zap.String("backend", backend),
		zap.Error(err))
	return Unavailable(backend, err)
}
