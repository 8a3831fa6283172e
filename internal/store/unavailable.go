package store

import (
	"context"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/google/uuid"
)

// unavailableStore answers every call with the error that prevented the
// real store from opening. The process keeps serving, and each request fails
// on its own.
type unavailableStore struct {
	backend string
	err     error
}

var _ todo.Store = (*unavailableStore)(nil)

// Unavailable returns a store whose operations all fail with cause.
func Unavailable(backend string, cause error) todo.Store {
	return &unavailableStore{
		backend: backend,
		err:     errors.Unavailable.Explain("%s store is not connected", backend).Wrap(cause),
	}
}

func (s *unavailableStore) Items() todo.ItemRepository { return s }
func (s *unavailableStore) Lists() todo.ListRepository { return s }
func (s *unavailableStore) Backend() string            { return s.backend }
func (s *unavailableStore) Ping(context.Context) error { return s.err }
func (s *unavailableStore) Close() error               { return nil }

func (s *unavailableStore) FindAll(context.Context) ([]models.Item, error)      { return nil, s.err }
func (s *unavailableStore) Insert(context.Context, models.Item) error           { return s.err }
func (s *unavailableStore) InsertMany(context.Context, []models.Item) error     { return s.err }
func (s *unavailableStore) Delete(context.Context, uuid.UUID) error             { return s.err }
func (s *unavailableStore) Create(context.Context, *models.List) error          { return s.err }
func (s *unavailableStore) PushItem(context.Context, string, models.Item) error { return s.err }
func (s *unavailableStore) PullItem(context.Context, string, uuid.UUID) error   { return s.err }

func (s *unavailableStore) FindByName(context.Context, string) (*models.List, error) {
	return nil, s.err
}
