package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/config"
	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParse(t *testing.T) {
	tests := []struct {
		uri     string
		backend string
		dsn     string
		wantErr string
	}{
		{uri: "memory://", backend: "memory"},
		{uri: "sqlite://todolist.db", backend: "sqlite", dsn: "todolist.db"},
		{uri: "sqlite:///var/lib/todolist.db", backend: "sqlite", dsn: "/var/lib/todolist.db"},
		{uri: "file:todolist.db?cache=shared", backend: "sqlite", dsn: "file:todolist.db?cache=shared"},
		{uri: "postgres://user:pw@db:5432/todo", backend: "postgres", dsn: "postgres://user:pw@db:5432/todo"},
		{uri: "postgresql://db/todo", backend: "postgres", dsn: "postgresql://db/todo"},
		{uri: "badger://./data", backend: "badger", dsn: "./data"},
		{uri: "badger://", backend: "badger", dsn: ""},
		{uri: "redis://localhost:6379/0", backend: "redis", dsn: "redis://localhost:6379/0"},
		{uri: " rediss://cache:6380 ", backend: "redis", dsn: "rediss://cache:6380"},
		{uri: "sqlite://", wantErr: "needs a path"},
		{uri: "mongodb+srv://cluster0.example.net/todo", wantErr: "mongodb is not supported"},
		{uri: "ftp://host", wantErr: "unsupported store scheme"},
		{uri: "todolist.db", wantErr: "has no scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			target, err := Parse(tt.uri)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.backend, target.Backend)
			assert.Equal(t, tt.dsn, target.DSN)
		})
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	uris := map[string]string{
		"memory": "memory://",
		"sqlite": "sqlite://" + filepath.Join(t.TempDir(), "todo.db"),
		"badger": "badger://",
	}

	for backend, uri := range uris {
		t.Run(backend, func(t *testing.T) {
			st, err := Open(ctx, config.StoreConfig{URI: uri}, zaptest.NewLogger(t))
			require.NoError(t, err)
			defer st.Close()

			assert.Equal(t, backend, st.Backend())
			assert.NoError(t, st.Ping(ctx))
		})
	}
}

func TestOpenOrUnavailable(t *testing.T) {
	ctx := context.Background()
	st := OpenOrUnavailable(ctx, config.StoreConfig{URI: "mongodb://localhost/todo"}, zaptest.NewLogger(t))

	assert.Equal(t, "unknown", st.Backend())
	err := st.Ping(ctx)
	assert.True(t, errors.Is(err, errors.Unavailable), "got %v", err)

	_, err = st.Items().FindAll(ctx)
	assert.ErrorContains(t, err, "mongodb is not supported")
	assert.Error(t, st.Lists().PushItem(ctx, "Groceries", models.NewItem("Milk")))
	assert.NoError(t, st.Close())
}
