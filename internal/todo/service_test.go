package todo_test

import (
	"context"
	"testing"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/store/memory"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*todo.Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return todo.NewService(st, nil), st
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"groceries", "Groceries"},
		{"GROCERIES", "Groceries"},
		{"gRoCeRiEs", "Groceries"},
		{"today", "Today"},
		{"", ""},
		{"élan", "Élan"},
		{"work stuff", "Work stuff"},
		{"1st", "1st"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, todo.Capitalize(tt.in))
		})
	}
}

func TestListPath(t *testing.T) {
	assert.Equal(t, "/", todo.ListPath("Today"))
	assert.Equal(t, "/Groceries", todo.ListPath("Groceries"))
	assert.Equal(t, "/Work%20stuff", todo.ListPath("Work stuff"))
}

func TestDefaultItemsAreFresh(t *testing.T) {
	a := todo.DefaultItems()
	b := todo.DefaultItems()

	require.Len(t, a, 3)
	require.Len(t, b, 3)
	assert.Equal(t, "Welcome to your To-Do List!", a[0].Name)
	assert.Equal(t, "Hit the + button to add a new Item.", a[1].Name)
	assert.Equal(t, "Check off items once you're done!", a[2].Name)
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.NotEqual(t, a[i].ID, b[i].ID)
	}
}

func TestGetToday(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	page, err := svc.GetToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/", page.Redirect)
	assert.Nil(t, page.View)

	page, err = svc.GetToday(ctx)
	require.NoError(t, err)
	require.NotNil(t, page.View)
	assert.Empty(t, page.Redirect)
	assert.Equal(t, "Today", page.View.Title)
	assert.Len(t, page.View.Items, 3)

	items, err := st.Items().FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, page.View.Items)
}

func TestAddItem(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	path, err := svc.AddItem(ctx, "Today", "  Call mom ")
	require.NoError(t, err)
	assert.Equal(t, "/", path)

	items, err := st.Items().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Call mom", items[0].Name)

	_, err = svc.AddItem(ctx, "Groceries", "Milk")
	assert.True(t, errors.Is(err, errors.NotFound))
	assert.Contains(t, err.Error(), "List not found.")

	_, err = svc.GetOrCreateList(ctx, "groceries")
	require.NoError(t, err)

	path, err = svc.AddItem(ctx, "Groceries", "Milk")
	require.NoError(t, err)
	assert.Equal(t, "/Groceries", path)

	list, err := st.Lists().FindByName(ctx, "Groceries")
	require.NoError(t, err)
	require.Len(t, list.Items, 4)
	assert.Equal(t, "Milk", list.Items[3].Name)
}

func TestAddItemSanitizesMarkup(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "Today", `<b>Fish</b> & <i>chips</i>`)
	require.NoError(t, err)

	items, err := st.Items().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fish & chips", items[0].Name)
}

func TestAddItemKeepsLiteralEntities(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	for _, name := range []string{"a &lt; b", "Tom &amp; Jerry", "R&D", "5 < 6"} {
		_, err := svc.AddItem(ctx, "Today", name)
		require.NoError(t, err)
	}

	items, err := st.Items().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "a &lt; b", items[0].Name)
	assert.Equal(t, "Tom &amp; Jerry", items[1].Name)
	assert.Equal(t, "R&D", items[2].Name)
	assert.Equal(t, "5 < 6", items[3].Name)
}

func TestDeleteItem(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, err := svc.GetToday(ctx)
	require.NoError(t, err)
	items, err := st.Items().FindAll(ctx)
	require.NoError(t, err)

	path, err := svc.DeleteItem(ctx, "Today", items[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "/", path)

	left, err := st.Items().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 2)

	_, err = svc.DeleteItem(ctx, "Today", "nope")
	assert.True(t, errors.Is(err, errors.Invalid))

	_, err = svc.GetOrCreateList(ctx, "work")
	require.NoError(t, err)
	list, err := st.Lists().FindByName(ctx, "Work")
	require.NoError(t, err)

	path, err = svc.DeleteItem(ctx, "Work", list.Items[2].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "/Work", path)

	list, err = st.Lists().FindByName(ctx, "Work")
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)

	// a missing list is not an error
	path, err = svc.DeleteItem(ctx, "Nowhere", list.Items[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "/Nowhere", path)
}

func TestGetOrCreateList(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	page, err := svc.GetOrCreateList(ctx, "gROCERIES")
	require.NoError(t, err)
	assert.Equal(t, "/Groceries", page.Redirect)

	page, err = svc.GetOrCreateList(ctx, "groceries")
	require.NoError(t, err)
	require.NotNil(t, page.View)
	assert.Equal(t, "Groceries", page.View.Title)
	assert.Len(t, page.View.Items, 3)

	page, err = svc.GetOrCreateList(ctx, "today")
	require.NoError(t, err)
	assert.Equal(t, "/", page.Redirect)

	_, err = st.Lists().FindByName(ctx, "Today")
	assert.True(t, errors.Is(err, errors.NotFound))

	items, err := st.Items().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClosedStore(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	require.NoError(t, st.Close())

	_, err := svc.GetToday(ctx)
	assert.True(t, errors.Is(err, errors.Unavailable))

	_, err = svc.GetOrCreateList(ctx, "groceries")
	assert.True(t, errors.Is(err, errors.Unavailable))

	_, err = svc.AddItem(ctx, "Today", "Milk")
	assert.True(t, errors.Is(err, errors.Unavailable))

	_, err = svc.DeleteItem(ctx, "Today", "7b2f3f1e-6c1c-4d6e-9d3e-2f1b0a0c9a11")
	assert.True(t, errors.Is(err, errors.Unavailable))
}
