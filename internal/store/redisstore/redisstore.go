// Package redisstore keeps items and lists as JSON documents in Redis.
//
// Keys, relative to the configured prefix:
//
//	items        hash of item id -> JSON item
//	items:order  sorted set of item ids scored by insertion sequence
//	items:seq    insertion sequence counter
//	list:<name>  JSON list document with its embedded items
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultPrefix namespaces every key the store writes
	DefaultPrefix = "todolist:"

	maxTxnAttempts = 10
)

// Store is a redis-backed todo.Store
type Store struct {
	client *redis.Client
	prefix string
}

var _ todo.Store = (*Store)(nil)

// Open parses a redis:// or rediss:// URL and verifies the connection.
func Open(ctx context.Context, url, prefix string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("redis store ready", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return New(client, prefix), nil
}

// New wraps an existing client
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Items() todo.ItemRepository { return (*itemRepository)(s) }
func (s *Store) Lists() todo.ListRepository { return (*listRepository)(s) }
func (s *Store) Backend() string            { return "redis" }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) itemsKey() string      { return s.prefix + "items" }
func (s *Store) itemsOrderKey() string { return s.prefix + "items:order" }
func (s *Store) itemsSeqKey() string   { return s.prefix + "items:seq" }
func (s *Store) listKey(name string) string {
	return s.prefix + "list:" + name
}

type itemRepository Store

func (r *itemRepository) FindAll(ctx context.Context) ([]models.Item, error) {
	s := (*Store)(r)
	ids, err := s.client.ZRange(ctx, s.itemsOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	items := make([]models.Item, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	docs, err := s.client.HMGet(ctx, s.itemsKey(), ids...).Result()
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		str, ok := doc.(string)
		if !ok {
			// deleted between ZRANGE and HMGET
			continue
		}
		var item models.Item
		if err := json.Unmarshal([]byte(str), &item); err != nil {
			return nil, errors.Internal.Explain("decoding item").Wrap(err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *itemRepository) Insert(ctx context.Context, item models.Item) error {
	return r.InsertMany(ctx, []models.Item{item})
}

func (r *itemRepository) InsertMany(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	s := (*Store)(r)

	last, err := s.client.IncrBy(ctx, s.itemsSeqKey(), int64(len(items))).Result()
	if err != nil {
		return err
	}
	first := last - int64(len(items)) + 1

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, item := range items {
			doc, err := json.Marshal(item)
			if err != nil {
				return err
			}
			id := item.ID.String()
			pipe.HSet(ctx, s.itemsKey(), id, doc)
			pipe.ZAdd(ctx, s.itemsOrderKey(), redis.Z{Score: float64(first + int64(i)), Member: id})
		}
		return nil
	})
	return err
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	s := (*Store)(r)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.itemsKey(), id.String())
		pipe.ZRem(ctx, s.itemsOrderKey(), id.String())
		return nil
	})
	return err
}

type listRepository Store

func (r *listRepository) FindByName(ctx context.Context, name string) (*models.List, error) {
	s := (*Store)(r)
	return getList(ctx, s.client, s.listKey(name), name)
}

func (r *listRepository) Create(ctx context.Context, list *models.List) error {
	s := (*Store)(r)
	doc, err := json.Marshal(list)
	if err != nil {
		return err
	}
	created, err := s.client.SetNX(ctx, s.listKey(list.Name), doc, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return errors.Conflict.Explain("list %q already exists", list.Name)
	}
	return nil
}

func (r *listRepository) PushItem(ctx context.Context, name string, item models.Item) error {
	return (*Store)(r).modifyList(ctx, name, func(list *models.List) bool {
		list.Items = append(list.Items, item)
		return true
	})
}

func (r *listRepository) PullItem(ctx context.Context, name string, itemID uuid.UUID) error {
	err := (*Store)(r).modifyList(ctx, name, func(list *models.List) bool {
		kept := list.Items[:0]
		for _, item := range list.Items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		changed := len(kept) != len(list.Items)
		list.Items = kept
		return changed
	})
	if errors.Is(err, errors.NotFound) {
		return nil
	}
	return err
}

// modifyList applies fn to the stored list inside a WATCH transaction. A
// transaction aborted by a concurrent write to the same list is retried up
// to maxTxnAttempts times before errors.Conflict is returned.
func (s *Store) modifyList(ctx context.Context, name string, fn func(list *models.List) bool) error {
	key := s.listKey(name)
	txf := func(tx *redis.Tx) error {
		list, err := getList(ctx, tx, key, name)
		if err != nil {
			return err
		}
		if !fn(list) {
			return nil
		}
		doc, err := json.Marshal(list)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		if attempt > 0 {
			if werr := backoff(ctx, attempt); werr != nil {
				return werr
			}
		}
		err = s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return errors.Conflict.Explain("list %q modified concurrently", name).Wrap(err)
}

// backoff sleeps a random duration that grows with attempt.
func backoff(ctx context.Context, attempt int) error {
	d := time.Duration(rand.Int63n(int64(attempt) * int64(time.Millisecond)))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getList(ctx context.Context, c getter, key, name string) (*models.List, error) {
	doc, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.NotFound.Explain("list %q not found", name)
	} else if err != nil {
		return nil, err
	}

	var list models.List
	if err := json.Unmarshal(doc, &list); err != nil {
		return nil, errors.Internal.Explain("decoding list %q", name).Wrap(err)
	}
	if list.Items == nil {
		list.Items = []models.Item{}
	}
	return &list, nil
}
