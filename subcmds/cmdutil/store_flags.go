// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"context"
	"flag"
	"fmt"
	"path"
	"path/filepath"

	"github.com/bvk/papertrade/balance"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
)

type StoreFlags struct {
	DataFlags

	store       string
	databaseURL string
}

func (f *StoreFlags) SetFlags(fset *flag.FlagSet) {
	f.DataFlags.SetFlags(fset)
	fset.StringVar(&f.store, "store", "kv", "balance store backend: kv, sqlite or postgres")
	fset.StringVar(&f.databaseURL, "database-url", "", "sqlite file path or postgres connection url (default <data-dir>/balances.db for sqlite)")
}

func isGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

// OpenStore opens the selected balance store. Returned closer must be called
// to release the database.
func (f *StoreFlags) OpenStore(ctx context.Context) (_ balance.Store, closer func(), status error) {
	dataDir, err := f.DataDir()
	if err != nil {
		return nil, nil, err
	}

	switch f.store {
	case "kv":
		bopts := badger.DefaultOptions(filepath.Join(dataDir, "db"))
		bdb, err := badger.Open(bopts)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open the database: %w", err)
		}
		db := kvbadger.New(bdb, isGoodKey)
		return balance.NewKVStore(db), func() { bdb.Close() }, nil

	case "sqlite":
		dsn := f.databaseURL
		if len(dsn) == 0 {
			dsn = filepath.Join(dataDir, "balances.db")
		}
		s, err := balance.OpenSQLStore(ctx, "sqlite", dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case "postgres":
		if len(f.databaseURL) == 0 {
			return nil, nil, fmt.Errorf("postgres store needs the -database-url flag")
		}
		s, err := balance.OpenSQLStore(ctx, "postgres", f.databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported balance store %q", f.store)
}
