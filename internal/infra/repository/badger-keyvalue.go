package repository

import (
	"context"
	"errors"
	"time"

	domainrepo "call-sentinel/internal/domain/interfaces/repository"

	"github.com/dgraph-io/badger/v4"
)

// BadgerKeyValue is the single-node KeyValue backend. Expiry uses badger's native TTL.
type BadgerKeyValue struct {
	db *badger.DB
}

func NewBadgerKeyValue(db *badger.DB) *BadgerKeyValue {
	return &BadgerKeyValue{db: db}
}

func (s *BadgerKeyValue) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domainrepo.ErrNotFound
	}
	return value, err
}

func (s *BadgerKeyValue) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(newEntry(key, value, ttl))
	})
}

// Expire rewrites the value with a new TTL inside one transaction.
func (s *BadgerKeyValue) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.SetEntry(newEntry(key, value, ttl))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domainrepo.ErrNotFound
	}
	return err
}

func (s *BadgerKeyValue) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func newEntry(key string, value []byte, ttl time.Duration) *badger.Entry {
	entry := badger.NewEntry([]byte(key), value)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return entry
}
