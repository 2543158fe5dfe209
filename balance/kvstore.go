// Copyright (c) 2025 BVK Chaitanya

package balance

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/bvk/papertrade/gobs"
	"github.com/bvkgo/kv"
)

const keyPrefix = "/balances"

// KVStore keeps balances in a key-value database as gob encoded records.
type KVStore struct {
	db kv.Database
}

func NewKVStore(db kv.Database) *KVStore {
	return &KVStore{db: db}
}

// balanceKey returns the database key for a user. User ids are zero padded
// so that keys sort in the user id order.
func balanceKey(uid int64) string {
	return path.Join(keyPrefix, fmt.Sprintf("%019d", uid))
}

func checkUserID(uid int64) error {
	if uid <= 0 {
		return fmt.Errorf("user id %d is not valid: %w", uid, os.ErrInvalid)
	}
	return nil
}

func get(ctx context.Context, g kv.Getter, key string) (*gobs.Balance, error) {
	value, err := g.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	gv := new(gobs.Balance)
	if err := gob.NewDecoder(value).Decode(gv); err != nil {
		return nil, fmt.Errorf("could not gob-decode balance at key %q: %w", key, err)
	}
	return gv, nil
}

func set(ctx context.Context, s kv.Setter, key string, value *gobs.Balance) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("could not gob-encode balance: %w", err)
	}
	return s.Set(ctx, key, &buf)
}

func (s *KVStore) GetOrCreate(ctx context.Context, uid int64) (*Balance, error) {
	if err := checkUserID(uid); err != nil {
		return nil, err
	}

	var result *Balance
	key := balanceKey(uid)
	getOrCreate := func(ctx context.Context, rw kv.ReadWriter) error {
		gv, err := get(ctx, rw, key)
		if err == nil {
			result = fromGob(gv)
			return nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not read balance for user %d: %w", uid, err)
		}
		b := Default(uid)
		if err := set(ctx, rw, key, toGob(b)); err != nil {
			return fmt.Errorf("could not create balance for user %d: %w", uid, err)
		}
		result = b
		return nil
	}
	if err := kv.WithReadWriter(ctx, s.db, getOrCreate); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *KVStore) Save(ctx context.Context, b *Balance) error {
	if err := checkUserID(b.UserID); err != nil {
		return err
	}
	if err := b.Check(); err != nil {
		return err
	}

	key := balanceKey(b.UserID)
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		if _, err := rw.Get(ctx, key); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("could not check balance for user %d: %w", b.UserID, err)
		}
		return set(ctx, rw, key, toGob(b))
	}
	return kv.WithReadWriter(ctx, s.db, save)
}

func (s *KVStore) List(ctx context.Context) ([]*Balance, error) {
	var balances []*Balance
	begin, end := keyPrefix+"/", keyPrefix+string('/'+1)
	list := func(ctx context.Context, r kv.Reader) error {
		it, err := r.Ascend(ctx, begin, end)
		if err != nil {
			return err
		}
		defer kv.Close(it)

		for k, v, err := it.Fetch(ctx, false); err == nil; k, v, err = it.Fetch(ctx, true) {
			gv := new(gobs.Balance)
			if err := gob.NewDecoder(v).Decode(gv); err != nil {
				return fmt.Errorf("could not decode balance at key %q: %w", k, err)
			}
			balances = append(balances, fromGob(gv))
		}
		if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("could not complete ascend: %w", err)
		}
		return nil
	}
	if err := kv.WithReader(ctx, s.db, list); err != nil {
		return nil, err
	}
	return balances, nil
}
