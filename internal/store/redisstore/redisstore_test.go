package redisstore

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/Aidin1998/todolist/internal/store/storetest"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPrefixSeq atomic.Int64

func TestStore(t *testing.T) {
	url := os.Getenv("TODOLIST_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TODOLIST_TEST_REDIS_URL not set")
	}

	storetest.Run(t, func(t *testing.T) todo.Store {
		ctx := context.Background()
		prefix := fmt.Sprintf("todolist-test:%d:%d:", os.Getpid(), testPrefixSeq.Add(1))
		s, err := Open(ctx, url, prefix, nil)
		require.NoError(t, err)
		t.Cleanup(func() {
			iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
			for iter.Next(ctx) {
				s.client.Del(ctx, iter.Val())
			}
			_ = s.Close()
		})
		return s
	})
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), "not-a-redis-url", "", nil)
	assert.ErrorContains(t, err, "failed to parse redis url")
}

func TestKeyLayout(t *testing.T) {
	s := New(nil, "")
	assert.Equal(t, "todolist:items", s.itemsKey())
	assert.Equal(t, "todolist:items:order", s.itemsOrderKey())
	assert.Equal(t, "todolist:list:Groceries", s.listKey("Groceries"))
}
