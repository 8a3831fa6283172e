package memory

import (
	"context"
	"testing"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/store/storetest"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) todo.Store {
		return New()
	})
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	_, err := s.Items().FindAll(context.Background())
	assert.True(t, errors.Is(err, errors.Unavailable), "got %v", err)
	assert.Error(t, s.Ping(context.Background()))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Lists().FindByName(ctx, "Any")
	assert.ErrorIs(t, err, context.Canceled)
}
