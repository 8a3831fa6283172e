package todo

import (
	"context"

	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/google/uuid"
)

// ItemRepository is the flat Items collection backing the Today list.
type ItemRepository interface {
	// FindAll returns every item in insertion order.
	FindAll(ctx context.Context) ([]models.Item, error)
	Insert(ctx context.Context, item models.Item) error
	InsertMany(ctx context.Context, items []models.Item) error
	// Delete removes the item with the given id. Unknown ids are not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListRepository holds the named lists and their embedded items.
type ListRepository interface {
	// FindByName returns errors.NotFound when no list has that exact name.
	FindByName(ctx context.Context, name string) (*models.List, error)
	// Create returns errors.Conflict when a list with the same name exists.
	Create(ctx context.Context, list *models.List) error
	// PushItem appends item to the named list, errors.NotFound if it is missing.
	PushItem(ctx context.Context, name string, item models.Item) error
	// PullItem removes the item with itemID from the named list. A missing
	// list or item is not an error.
	PullItem(ctx context.Context, name string, itemID uuid.UUID) error
}

// Store is the handle to a document store. It is passed explicitly to
// everything that needs persistence.
type Store interface {
	Items() ItemRepository
	Lists() ListRepository
	// Backend names the implementation, e.g. "sqlite" or "badger".
	Backend() string
	Ping(ctx context.Context) error
	Close() error
}
