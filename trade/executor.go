// Copyright (c) 2025 BVK Chaitanya

// Package trade turns a user's trade selection and amount into a simulated
// balance update at the current spot price.
//
// There is no isolation between reading the price, reading the balance and
// writing it back. Two trades for the same user running at the same time can
// overwrite each other's result; such lost updates are accepted.
package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bvk/papertrade/balance"
	"github.com/bvk/papertrade/price"
	"github.com/google/uuid"
)

type BalanceStore interface {
	GetOrCreate(ctx context.Context, uid int64) (*balance.Balance, error)
	Save(ctx context.Context, b *balance.Balance) error
}

type PriceOracle interface {
	FetchPrices(ctx context.Context) (*price.Prices, error)
}

// SessionStore keeps at most one pending trade selection per user.
type SessionStore interface {
	// Begin records a selection, replacing any pending selection of the user.
	Begin(ctx context.Context, uid int64, s *Session) error

	// Peek returns the pending selection without consuming it. Returns nil
	// when there is none.
	Peek(ctx context.Context, uid int64) (*Session, error)

	// Take returns and removes the pending selection. Returns nil when there
	// is none, so a second Take after a successful one always returns nil.
	Take(ctx context.Context, uid int64) (*Session, error)
}

// Outcome describes an executed (or attempted) trade.
type Outcome struct {
	ID uuid.UUID

	UserID int64

	Action Action
	Asset  Asset

	Amount float64

	// Price is the execution price. Zero when the price couldn't be fetched.
	Price float64

	// Balance holds the balance after a successful trade or the unmodified
	// balance when the trade was rejected.
	Balance *balance.Balance
}

// Total returns the cash value of the trade.
func (v *Outcome) Total() float64 {
	return v.Amount * v.Price
}

type Executor struct {
	balances BalanceStore
	oracle   PriceOracle
	sessions SessionStore
}

func NewExecutor(balances BalanceStore, oracle PriceOracle, sessions SessionStore) *Executor {
	return &Executor{
		balances: balances,
		oracle:   oracle,
		sessions: sessions,
	}
}

// Begin records a trade selection for the user.
func (e *Executor) Begin(ctx context.Context, uid int64, action Action, asset Asset) error {
	s := &Session{Action: action, Asset: asset}
	if err := s.Action.Check(); err != nil {
		return err
	}
	if err := s.Asset.Check(); err != nil {
		return err
	}
	if err := e.sessions.Begin(ctx, uid, s); err != nil {
		return fmt.Errorf("could not record trade selection: %w", err)
	}
	slog.Debug("trade selection recorded", "user", uid, "action", action, "asset", asset)
	return nil
}

// Submit executes the user's pending trade selection with the given amount
// text. Invalid amounts leave the pending selection in place so that the user
// can retry; otherwise the selection is consumed before the trade is run.
func (e *Executor) Submit(ctx context.Context, uid int64, amountText string) (*Outcome, error) {
	pending, err := e.sessions.Peek(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("could not read pending trade selection: %w", err)
	}
	if pending == nil {
		return nil, ErrNoSession
	}

	if _, err := ParseAmount(amountText); err != nil {
		outcome := &Outcome{UserID: uid, Action: pending.Action, Asset: pending.Asset}
		return outcome, err
	}

	s, err := e.sessions.Take(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("could not consume pending trade selection: %w", err)
	}
	if s == nil {
		// Consumed by a concurrent submit.
		return nil, ErrNoSession
	}
	return e.Execute(ctx, uid, s.Action, s.Asset, amountText)
}

// Execute runs a single buy or sell trade for the user. The current price is
// fetched exactly once and the whole balance is written back only when the
// trade succeeds.
func (e *Executor) Execute(ctx context.Context, uid int64, action Action, asset Asset, amountText string) (*Outcome, error) {
	outcome := &Outcome{
		UserID: uid,
		Action: action,
		Asset:  asset,
	}

	if err := action.Check(); err != nil {
		return outcome, err
	}
	if err := asset.Check(); err != nil {
		return outcome, err
	}
	amount, err := ParseAmount(amountText)
	if err != nil {
		return outcome, err
	}
	outcome.Amount = amount

	prices, err := e.oracle.FetchPrices(ctx)
	if err != nil {
		var ferr *price.FeedError
		if !errors.As(err, &ferr) {
			err = &price.FeedError{Err: err}
		}
		slog.Warn("could not fetch price for trade", "user", uid, "action", action, "asset", asset, "err", err)
		return outcome, err
	}
	outcome.Price = priceOf(prices, asset)

	bal, err := e.balances.GetOrCreate(ctx, uid)
	if err != nil {
		return outcome, fmt.Errorf("could not read balance: %w", err)
	}
	outcome.Balance = bal

	next, err := apply(bal, action, asset, amount, outcome.Price)
	if err != nil {
		slog.Info("trade rejected", "user", uid, "action", action, "asset", asset, "amount", amount, "price", outcome.Price, "err", err)
		return outcome, err
	}
	if err := e.balances.Save(ctx, next); err != nil {
		return outcome, fmt.Errorf("could not save balance: %w", err)
	}

	outcome.ID = uuid.New()
	outcome.Balance = next
	slog.Info("trade executed", "id", outcome.ID, "user", uid, "action", action, "asset", asset,
		"amount", amount, "price", outcome.Price, "balance", next)
	return outcome, nil
}

func priceOf(p *price.Prices, asset Asset) float64 {
	if asset == BTC {
		return p.BTC
	}
	return p.ETH
}

func quantity(b *balance.Balance, asset Asset) *float64 {
	if asset == BTC {
		return &b.BTC
	}
	return &b.ETH
}

// apply returns the balance after the trade. Input balance is not modified.
func apply(b *balance.Balance, action Action, asset Asset, amount, price float64) (*balance.Balance, error) {
	next := b.Clone()
	qty := quantity(next, asset)

	switch action {
	case Buy:
		cost := amount * price
		if next.Cash < cost {
			return nil, fmt.Errorf("need %.2f cash to buy %v %s, have %.2f: %w", cost, amount, asset, next.Cash, ErrInsufficientCash)
		}
		next.Cash -= cost
		*qty += amount
	case Sell:
		if *qty < amount {
			return nil, fmt.Errorf("need %v %s to sell, have %v: %w", amount, asset, *qty, ErrInsufficientAsset)
		}
		*qty -= amount
		next.Cash += amount * price
	}
	return next, nil
}
