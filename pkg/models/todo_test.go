package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemAssignsUniqueIDs(t *testing.T) {
	a := NewItem("Milk")
	b := NewItem("Milk")

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Milk", a.Name)
}

func TestListCloneIsIndependent(t *testing.T) {
	list := &List{ID: uuid.New(), Name: "Groceries", Items: []Item{NewItem("Eggs")}}

	clone := list.Clone()
	require.NotNil(t, clone)
	clone.Items[0].Name = "Bread"
	clone.Items = append(clone.Items, NewItem("Milk"))

	assert.Equal(t, "Eggs", list.Items[0].Name)
	assert.Len(t, list.Items, 1)
	assert.Nil(t, (*List)(nil).Clone())
}
