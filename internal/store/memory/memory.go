// Package memory is an in-process document store used for tests and for
// running without a database (store URI "memory://").
package memory

import (
	"context"
	"sync"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/google/uuid"
	"github.com/tidwall/btree"
)

const btreeDegree = 32

// Store keeps items ordered by insertion sequence and lists by name.
type Store struct {
	mu     sync.RWMutex
	seq    uint64
	items  *btree.Map[uint64, models.Item]
	byID   map[uuid.UUID]uint64
	lists  *btree.Map[string, *models.List]
	closed bool
}

var _ todo.Store = (*Store)(nil)

// New creates an empty memory store
func New() *Store {
	return &Store{
		items: btree.NewMap[uint64, models.Item](btreeDegree),
		byID:  make(map[uuid.UUID]uint64),
		lists: btree.NewMap[string, *models.List](btreeDegree),
	}
}

func (s *Store) Items() todo.ItemRepository { return (*itemRepository)(s) }
func (s *Store) Lists() todo.ListRepository { return (*listRepository)(s) }
func (s *Store) Backend() string            { return "memory" }

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// check must be called with mu held
func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return errors.Unavailable.Explain("memory store is closed")
	}
	return nil
}

type itemRepository Store

func (r *itemRepository) FindAll(ctx context.Context) ([]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := (*Store)(r).check(ctx); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, r.items.Len())
	r.items.Scan(func(_ uint64, item models.Item) bool {
		items = append(items, item)
		return true
	})
	return items, nil
}

func (r *itemRepository) Insert(ctx context.Context, item models.Item) error {
	return r.InsertMany(ctx, []models.Item{item})
}

func (r *itemRepository) InsertMany(ctx context.Context, items []models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := (*Store)(r).check(ctx); err != nil {
		return err
	}

	for _, item := range items {
		if _, ok := r.byID[item.ID]; ok {
			return errors.Conflict.Explain("item %s already exists", item.ID)
		}
	}
	for _, item := range items {
		r.seq++
		r.items.Set(r.seq, item)
		r.byID[item.ID] = r.seq
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := (*Store)(r).check(ctx); err != nil {
		return err
	}

	if seq, ok := r.byID[id]; ok {
		r.items.Delete(seq)
		delete(r.byID, id)
	}
	return nil
}

type listRepository Store

func (r *listRepository) FindByName(ctx context.Context, name string) (*models.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := (*Store)(r).check(ctx); err != nil {
		return nil, err
	}

	list, ok := r.lists.Get(name)
	if !ok {
		return nil, errors.NotFound.Explain("list %q not found", name)
	}
	return list.Clone(), nil
}

func (r *listRepository) Create(ctx context.Context, list *models.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := (*Store)(r).check(ctx); err != nil {
		return err
	}

	if _, ok := r.lists.Get(list.Name); ok {
		return errors.Conflict.Explain("list %q already exists", list.Name)
	}
	r.lists.Set(list.Name, list.Clone())
	return nil
}

func (r *listRepository) PushItem(ctx context.Context, name string, item models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := (*Store)(r).check(ctx); err != nil {
		return err
	}

	list, ok := r.lists.Get(name)
	if !ok {
		return errors.NotFound.Explain("list %q not found", name)
	}
	list.Items = append(list.Items, item)
	return nil
}

func (r *listRepository) PullItem(ctx context.Context, name string, itemID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := (*Store)(r).check(ctx); err != nil {
		return err
	}

	list, ok := r.lists.Get(name)
	if !ok {
		return nil
	}
	kept := list.Items[:0]
	for _, item := range list.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	list.Items = kept
	return nil
}
