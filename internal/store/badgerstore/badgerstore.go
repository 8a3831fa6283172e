// Package badgerstore is an embedded document store on top of BadgerDB.
//
// Key layout:
//
//	item/pos/<seq>   JSON item, seq is a big-endian uint64 so keys sort by insertion
//	item/id/<uuid>   the item/pos key of that item
//	list/<name>      JSON list document with its embedded items
package badgerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	itemPosPrefix = []byte("item/pos/")
	itemIDPrefix  = []byte("item/id/")
	listPrefix    = []byte("list/")
	itemSeqKey    = []byte("seq/items")
)

const (
	seqBandwidth = 100

	// maxTxnAttempts bounds the retries of a transaction that lost a write
	// conflict to a concurrent one.
	maxTxnAttempts = 10
)

// Store is a badger-backed todo.Store
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

var _ todo.Store = (*Store)(nil)

// Open opens the database in dir. An empty dir keeps everything in memory.
func Open(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = badgerLogger{log.Named("badger").Sugar()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	seq, err := db.GetSequence(itemSeqKey, seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to lease item sequence: %w", err)
	}

	log.Info("badger store ready", zap.String("dir", dir), zap.Bool("in_memory", dir == ""))
	return &Store{db: db, seq: seq}, nil
}

func (s *Store) Items() todo.ItemRepository { return (*itemRepository)(s) }
func (s *Store) Lists() todo.ListRepository { return (*listRepository)(s) }
func (s *Store) Backend() string            { return "badger" }

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.Unavailable.Explain("badger store is closed")
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		return err
	}
	return s.db.Close()
}

// update runs fn in a read-write transaction. A transaction that loses a
// conflict is rerun from scratch, so fn must not keep state between calls.
// Conflicts that outlast maxTxnAttempts map to errors.Conflict.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		if attempt > 0 {
			if werr := backoff(ctx, attempt); werr != nil {
				return werr
			}
		} else if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return errors.Conflict.Explain("concurrent update").Wrap(err)
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

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

type itemRepository Store

func (r *itemRepository) FindAll(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	err := (*Store)(r).view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = itemPosPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var item models.Item
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &item)
			}); err != nil {
				return errors.Internal.Explain("decoding item %x", it.Item().Key()).Wrap(err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) Insert(ctx context.Context, item models.Item) error {
	return r.InsertMany(ctx, []models.Item{item})
}

func (r *itemRepository) InsertMany(ctx context.Context, items []models.Item) error {
	return (*Store)(r).update(ctx, func(txn *badger.Txn) error {
		for _, item := range items {
			if _, err := txn.Get(itemIDKey(item.ID)); err == nil {
				return errors.Conflict.Explain("item %s already exists", item.ID)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			n, err := r.seq.Next()
			if err != nil {
				return err
			}
			doc, err := json.Marshal(item)
			if err != nil {
				return err
			}
			posKey := itemPosKey(n)
			if err := txn.Set(posKey, doc); err != nil {
				return err
			}
			if err := txn.Set(itemIDKey(item.ID), posKey); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return (*Store)(r).update(ctx, func(txn *badger.Txn) error {
		idKey := itemIDKey(id)
		entry, err := txn.Get(idKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		posKey, err := entry.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Delete(posKey); err != nil {
			return err
		}
		return txn.Delete(idKey)
	})
}

type listRepository Store

func (r *listRepository) FindByName(ctx context.Context, name string) (*models.List, error) {
	var list *models.List
	err := (*Store)(r).view(ctx, func(txn *badger.Txn) error {
		var err error
		list, err = getList(txn, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *listRepository) Create(ctx context.Context, list *models.List) error {
	return (*Store)(r).update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(listKey(list.Name)); err == nil {
			return errors.Conflict.Explain("list %q already exists", list.Name)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return putList(txn, list)
	})
}

func (r *listRepository) PushItem(ctx context.Context, name string, item models.Item) error {
	return (*Store)(r).update(ctx, func(txn *badger.Txn) error {
		list, err := getList(txn, name)
		if err != nil {
			return err
		}
		list.Items = append(list.Items, item)
		return putList(txn, list)
	})
}

func (r *listRepository) PullItem(ctx context.Context, name string, itemID uuid.UUID) error {
	return (*Store)(r).update(ctx, func(txn *badger.Txn) error {
		list, err := getList(txn, name)
		if errors.Is(err, errors.NotFound) {
			return nil
		} else if err != nil {
			return err
		}

		kept := list.Items[:0]
		for _, item := range list.Items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		if len(kept) == len(list.Items) {
			return nil
		}
		list.Items = kept
		return putList(txn, list)
	})
}

func getList(txn *badger.Txn, name string) (*models.List, error) {
	entry, err := txn.Get(listKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.NotFound.Explain("list %q not found", name)
	} else if err != nil {
		return nil, err
	}

	var list models.List
	if err := entry.Value(func(v []byte) error {
		return json.Unmarshal(v, &list)
	}); err != nil {
		return nil, errors.Internal.Explain("decoding list %q", name).Wrap(err)
	}
	if list.Items == nil {
		list.Items = []models.Item{}
	}
	return &list, nil
}

func putList(txn *badger.Txn, list *models.List) error {
	doc, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return txn.Set(listKey(list.Name), doc)
}

func itemPosKey(n uint64) []byte {
	key := make([]byte, len(itemPosPrefix)+8)
	copy(key, itemPosPrefix)
	binary.BigEndian.PutUint64(key[len(itemPosPrefix):], n)
	return key
}

func itemIDKey(id uuid.UUID) []byte {
	return append(append([]byte{}, itemIDPrefix...), id.String()...)
}

func listKey(name string) []byte {
	return append(append([]byte{}, listPrefix...), name...)
}

// badgerLogger adapts zap to badger.Logger
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.log.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.log.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debugf(format, args...) }
