package models

import (
	"github.com/google/uuid"
)

// Item is a single to-do entry, either in the Today collection or embedded in a List
type Item struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewItem creates an item with a fresh random ID
func NewItem(name string) Item {
	return Item{ID: uuid.New(), Name: name}
}

// List is a named collection of items addressed at /<Name>
type List struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Items []Item    `json:"items"`
}

// Clone returns a copy of the list that shares no item storage with l
func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	out := &List{ID: l.ID, Name: l.Name, Items: make([]Item, len(l.Items))}
	copy(out.Items, l.Items)
	return out
}
