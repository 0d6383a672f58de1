package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/rushteam/moviekit/core"
)

// BadgerStore 是 BadgerDB 实现的 Store，单机持久化结果缓存，重启后仍可命中。
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore 打开数据目录；dir 为空时以内存模式打开。
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: open badger", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreFromDB 包装已打开的数据库，Close 时会关闭它。
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (b *BadgerStore) Name() string { return "badger" }

func (b *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", key, err)
	}
	return out, nil
}

func setEntry(txn *badger.Txn, key string, value []byte, ttl []int) error {
	e := badger.NewEntry([]byte(key), value)
	if s := ttlSeconds(ttl); s > 0 {
		e = e.WithTTL(time.Duration(s) * time.Second)
	}
	return txn.SetEntry(e)
}

func (b *BadgerStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return setEntry(txn, key, value, ttl)
	})
}

func (b *BadgerStore) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (b *BadgerStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, k := range keys {
			item, err := txn.Get([]byte(k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger batch get: %w", err)
	}
	return result, nil
}

func (b *BadgerStore) BatchSet(_ context.Context, kvs map[string][]byte, ttl ...int) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for k, v := range kvs {
		e := badger.NewEntry([]byte(k), v)
		if s := ttlSeconds(ttl); s > 0 {
			e = e.WithTTL(time.Duration(s) * time.Second)
		}
		if err := wb.SetEntry(e); err != nil {
			return fmt.Errorf("badger batch set: %w", err)
		}
	}
	return wb.Flush()
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

var _ core.Store = (*BadgerStore)(nil)
