package todo

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/pkg/metrics"
	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// View is what a list page renders.
type View struct {
	Title string
	Items []models.Item
}

// Page is the outcome of a read operation: either a view to render or a
// path to redirect to.
type Page struct {
	View     *View
	Redirect string
}

// Service implements the to-do operations on top of an injected Store.
type Service struct {
	store     Store
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
}

// NewService creates a new to-do service
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		logger:    logger.Named("todo"),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Store returns the store the service was built with
func (s *Service) Store() Store {
	return s.store
}

// GetToday renders the Today list. An empty collection is seeded with the
// default items and the caller is sent back to "/" to render them.
//
// Two concurrent requests against an empty collection may both seed it.
func (s *Service) GetToday(ctx context.Context) (*Page, error) {
	items, err := s.store.Items().FindAll(ctx)
	s.observe("items.find_all", err)
	if err != nil {
		return nil, fmt.Errorf("finding items: %w", err)
	}

	if len(items) == 0 {
		err := s.store.Items().InsertMany(ctx, DefaultItems())
		s.observe("items.insert_many", err)
		if err != nil {
			return nil, fmt.Errorf("inserting default items: %w", err)
		}
		s.logger.Info("default items inserted")
		return &Page{Redirect: ListPath(TodayListName)}, nil
	}

	return &Page{View: &View{Title: TodayListName, Items: items}}, nil
}

// AddItem adds a new item to the Today collection or to the named list and
// returns the path of the list to redirect to.
func (s *Service) AddItem(ctx context.Context, listName, itemName string) (string, error) {
	item := models.NewItem(s.sanitize(itemName))

	if listName == TodayListName {
		err := s.store.Items().Insert(ctx, item)
		s.observe("items.insert", err)
		if err != nil {
			return "", fmt.Errorf("inserting item: %w", err)
		}
		metrics.ItemsAdded.WithLabelValues("today").Inc()
		return ListPath(TodayListName), nil
	}

	err := s.store.Lists().PushItem(ctx, listName, item)
	s.observe("lists.push_item", err)
	if errors.Is(err, errors.NotFound) {
		return "", errors.NotFound.Explain("List not found.").Wrap(err)
	} else if err != nil {
		return "", fmt.Errorf("adding item to list %q: %w", listName, err)
	}
	metrics.ItemsAdded.WithLabelValues("custom").Inc()
	return ListPath(listName), nil
}

// DeleteItem removes the item with itemID from the Today collection or from
// the named list and returns the path of the list to redirect to.
func (s *Service) DeleteItem(ctx context.Context, listName, itemID string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(itemID))
	if err != nil {
		return "", errors.Invalid.Explain("Invalid item id.").Wrap(err)
	}

	if listName == TodayListName {
		err := s.store.Items().Delete(ctx, id)
		s.observe("items.delete", err)
		if err != nil {
			return "", fmt.Errorf("deleting item %s: %w", id, err)
		}
		return ListPath(TodayListName), nil
	}

	err = s.store.Lists().PullItem(ctx, listName, id)
	s.observe("lists.pull_item", err)
	if err != nil {
		return "", fmt.Errorf("removing item %s from list %q: %w", id, listName, err)
	}
	return ListPath(listName), nil
}

// GetOrCreateList renders the custom list addressed by rawName. The name is
// capitalized first, so addressing is case-insensitive. A list that does not
// exist yet is created with the default items and the caller is redirected
// to it.
func (s *Service) GetOrCreateList(ctx context.Context, rawName string) (*Page, error) {
	name := Capitalize(rawName)
	if name == TodayListName {
		return &Page{Redirect: ListPath(TodayListName)}, nil
	}

	list, err := s.store.Lists().FindByName(ctx, name)
	s.observe("lists.find_by_name", err)
	switch {
	case err == nil:
		return &Page{View: &View{Title: list.Name, Items: list.Items}}, nil
	case !errors.Is(err, errors.NotFound):
		return nil, fmt.Errorf("finding list %q: %w", name, err)
	}

	list = &models.List{ID: uuid.New(), Name: name, Items: DefaultItems()}
	err = s.store.Lists().Create(ctx, list)
	s.observe("lists.create", err)
	switch {
	case err == nil:
		metrics.ListsCreated.Inc()
		s.logger.Info("list created", zap.String("list", name))
	case errors.Is(err, errors.Conflict):
		s.logger.Debug("list created concurrently", zap.String("list", name))
	default:
		return nil, fmt.Errorf("creating list %q: %w", name, err)
	}

	return &Page{Redirect: ListPath(name)}, nil
}

// sanitize strips markup from an item name and returns plain text.
// Ampersands are escaped first so entities the user typed, such as "&lt;",
// survive the HTML round trip literally.
func (s *Service) sanitize(name string) string {
	escaped := strings.ReplaceAll(name, "&", "&amp;")
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(escaped)))
}

func (s *Service) observe(operation string, err error) {
	metrics.ObserveStore(s.store.Backend(), operation, err)
}
