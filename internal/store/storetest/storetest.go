// Package storetest holds the behaviour every todo.Store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) todo.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(context.Background()))
	})
	t.Run("ItemsKeepInsertionOrder", func(t *testing.T) { testItemsOrder(t, newStore(t)) })
	t.Run("ItemsDelete", func(t *testing.T) { testItemsDelete(t, newStore(t)) })
	t.Run("ListLifecycle", func(t *testing.T) { testListLifecycle(t, newStore(t)) })
	t.Run("ListPushItem", func(t *testing.T) { testListPush(t, newStore(t)) })
	t.Run("ListPullItem", func(t *testing.T) { testListPull(t, newStore(t)) })
	t.Run("CollectionsAreIndependent", func(t *testing.T) { testCollectionsIndependent(t, newStore(t)) })
	t.Run("ReturnedValuesAreCopies", func(t *testing.T) { testCopies(t, newStore(t)) })
	t.Run("ConcurrentListWrites", func(t *testing.T) { testConcurrentListWrites(t, newStore(t)) })
}

func names(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func testItemsOrder(t *testing.T, store todo.Store) {
	ctx := context.Background()

	items, err := store.Items().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	seed := []models.Item{models.NewItem("first"), models.NewItem("second"), models.NewItem("third")}
	require.NoError(t, store.Items().InsertMany(ctx, seed))
	extra := models.NewItem("fourth")
	require.NoError(t, store.Items().Insert(ctx, extra))

	items, err = store.Items().FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, names(items))
	assert.Equal(t, seed[0].ID, items[0].ID)
	assert.Equal(t, extra.ID, items[3].ID)
}

func testItemsDelete(t *testing.T, store todo.Store) {
	ctx := context.Background()
	seed := []models.Item{models.NewItem("a"), models.NewItem("b"), models.NewItem("c")}
	require.NoError(t, store.Items().InsertMany(ctx, seed))

	require.NoError(t, store.Items().Delete(ctx, seed[1].ID))
	require.NoError(t, store.Items().Delete(ctx, uuid.New()), "unknown id is not an error")

	items, err := store.Items().FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names(items))
}

func testListLifecycle(t *testing.T, store todo.Store) {
	ctx := context.Background()

	_, err := store.Lists().FindByName(ctx, "Groceries")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotFound), "got %v", err)

	list := &models.List{ID: uuid.New(), Name: "Groceries", Items: []models.Item{models.NewItem("Eggs"), models.NewItem("Flour")}}
	require.NoError(t, store.Lists().Create(ctx, list))

	found, err := store.Lists().FindByName(ctx, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, list.ID, found.ID)
	assert.Equal(t, "Groceries", found.Name)
	assert.Equal(t, list.Items, found.Items)

	_, err = store.Lists().FindByName(ctx, "groceries")
	assert.True(t, errors.Is(err, errors.NotFound), "names are matched exactly")

	dup := &models.List{ID: uuid.New(), Name: "Groceries"}
	err = store.Lists().Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.Conflict), "got %v", err)
}

func testListPush(t *testing.T, store todo.Store) {
	ctx := context.Background()
	require.NoError(t, store.Lists().Create(ctx, &models.List{
		ID: uuid.New(), Name: "Work", Items: []models.Item{models.NewItem("Email")},
	}))

	milk := models.NewItem("Report")
	require.NoError(t, store.Lists().PushItem(ctx, "Work", milk))
	require.NoError(t, store.Lists().PushItem(ctx, "Work", models.NewItem("Review")))

	list, err := store.Lists().FindByName(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Report", "Review"}, names(list.Items))
	assert.Equal(t, milk.ID, list.Items[1].ID)

	err = store.Lists().PushItem(ctx, "Missing", models.NewItem("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotFound), "got %v", err)
}

func testListPull(t *testing.T, store todo.Store) {
	ctx := context.Background()
	items := []models.Item{models.NewItem("a"), models.NewItem("b"), models.NewItem("c")}
	require.NoError(t, store.Lists().Create(ctx, &models.List{ID: uuid.New(), Name: "Home", Items: items}))

	require.NoError(t, store.Lists().PullItem(ctx, "Home", items[0].ID))
	require.NoError(t, store.Lists().PullItem(ctx, "Home", uuid.New()))
	require.NoError(t, store.Lists().PullItem(ctx, "Missing", items[1].ID))

	list, err := store.Lists().FindByName(ctx, "Home")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, names(list.Items))
}

func testCollectionsIndependent(t *testing.T, store todo.Store) {
	ctx := context.Background()
	shared := models.NewItem("shared")
	require.NoError(t, store.Items().Insert(ctx, shared))
	require.NoError(t, store.Lists().Create(ctx, &models.List{ID: uuid.New(), Name: "Books", Items: []models.Item{shared}}))

	require.NoError(t, store.Lists().PushItem(ctx, "Books", models.NewItem("Dune")))
	require.NoError(t, store.Lists().PullItem(ctx, "Books", shared.ID))

	items, err := store.Items().FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, names(items))

	require.NoError(t, store.Items().Delete(ctx, shared.ID))
	list, err := store.Lists().FindByName(ctx, "Books")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, names(list.Items))
}

func testCopies(t *testing.T, store todo.Store) {
	ctx := context.Background()
	list := &models.List{ID: uuid.New(), Name: "Garden", Items: []models.Item{models.NewItem("Water")}}
	require.NoError(t, store.Lists().Create(ctx, list))
	list.Items[0].Name = "changed after create"

	found, err := store.Lists().FindByName(ctx, "Garden")
	require.NoError(t, err)
	assert.Equal(t, "Water", found.Items[0].Name)

	found.Items[0].Name = "changed after find"
	again, err := store.Lists().FindByName(ctx, "Garden")
	require.NoError(t, err)
	assert.Equal(t, "Water", again.Items[0].Name)
}

// Writers racing on one list document must all land; none may surface a
// conflict to the caller.
func testConcurrentListWrites(t *testing.T, store todo.Store) {
	const pushes = 10
	ctx := context.Background()

	seed := []models.Item{models.NewItem("a"), models.NewItem("b"), models.NewItem("c"), models.NewItem("d"), models.NewItem("e")}
	require.NoError(t, store.Lists().Create(ctx, &models.List{ID: uuid.New(), Name: "Party", Items: seed}))

	var wg sync.WaitGroup
	errs := make(chan error, pushes+len(seed))
	want := make([]string, 0, pushes)

	for i := 0; i < pushes; i++ {
		item := models.NewItem(fmt.Sprintf("guest-%d", i))
		want = append(want, item.Name)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Lists().PushItem(ctx, "Party", item)
		}()
	}
	for _, item := range seed {
		id := item.ID
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Lists().PullItem(ctx, "Party", id)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	list, err := store.Lists().FindByName(ctx, "Party")
	require.NoError(t, err)
	assert.ElementsMatch(t, want, names(list.Items))
}
