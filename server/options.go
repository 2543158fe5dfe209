// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"fmt"

	"github.com/bvk/papertrade/balance"
	"github.com/bvk/papertrade/price"
	"github.com/bvk/papertrade/session"
	"github.com/bvk/papertrade/trade"
)

type Options struct {
	// Balances is the balance store. Required.
	Balances balance.Store

	// Sessions holds pending trade selections. Defaults to an in-memory store.
	Sessions trade.SessionStore

	// Price holds the price client options.
	Price price.Options
}

func (v *Options) setDefaults() {
	if v.Sessions == nil {
		v.Sessions = session.NewMemStore()
	}
}

func (v *Options) Check() error {
	if v.Balances == nil {
		return fmt.Errorf("balance store is required")
	}
	return nil
}
