// Copyright (c) 2025 BVK Chaitanya

package trade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bvk/papertrade/balance"
	"github.com/bvk/papertrade/price"
	"github.com/bvkgo/kv/kvmemdb"
)

type fakeOracle struct {
	prices *price.Prices
	err    error
	calls  int
}

func (f *fakeOracle) FetchPrices(ctx context.Context) (*price.Prices, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p := *f.prices
	return &p, nil
}

type countingStore struct {
	BalanceStore

	reads, writes int
}

func (c *countingStore) GetOrCreate(ctx context.Context, uid int64) (*balance.Balance, error) {
	c.reads++
	return c.BalanceStore.GetOrCreate(ctx, uid)
}

func (c *countingStore) Save(ctx context.Context, b *balance.Balance) error {
	c.writes++
	return c.BalanceStore.Save(ctx, b)
}

type mapSessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

func (s *mapSessions) Begin(_ context.Context, uid int64, v *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[int64]*Session)
	}
	s.m[uid] = v
	return nil
}

func (s *mapSessions) Peek(_ context.Context, uid int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[uid], nil
}

func (s *mapSessions) Take(_ context.Context, uid int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.m[uid]
	delete(s.m, uid)
	return v, nil
}

type testSetup struct {
	store    *countingStore
	oracle   *fakeOracle
	sessions *mapSessions
	executor *Executor
}

func newTestSetup(t *testing.T, btc, eth float64) *testSetup {
	ts := &testSetup{
		store:    &countingStore{BalanceStore: balance.NewKVStore(kvmemdb.New())},
		oracle:   &fakeOracle{prices: &price.Prices{BTC: btc, ETH: eth}},
		sessions: new(mapSessions),
	}
	ts.executor = NewExecutor(ts.store, ts.oracle, ts.sessions)
	return ts
}

func (ts *testSetup) setBalance(t *testing.T, uid int64, cash, btc, eth float64) {
	ctx := context.Background()
	if _, err := ts.store.BalanceStore.GetOrCreate(ctx, uid); err != nil {
		t.Fatal(err)
	}
	b := &balance.Balance{UserID: uid, Cash: cash, BTC: btc, ETH: eth}
	if err := ts.store.BalanceStore.Save(ctx, b); err != nil {
		t.Fatal(err)
	}
}

func (ts *testSetup) balance(t *testing.T, uid int64) *balance.Balance {
	b, err := ts.store.BalanceStore.GetOrCreate(context.Background(), uid)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestParseAmount(t *testing.T) {
	for _, s := range []string{"0", "-5", "abc", "", "  ", "0.0", "NaN", "Inf", "-0.1", "1e99999", "1e-99999", "1,000"} {
		if _, err := ParseAmount(s); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %q: want ErrInvalidAmount, got %v", s, err)
		}
	}
	good := map[string]float64{
		"2":        2,
		" 0.5 ":    0.5,
		"0.000001": 0.000001,
		"1e2":      100,
	}
	for s, want := range good {
		v, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("amount %q: %v", s, err)
		}
		if v != want {
			t.Fatalf("amount %q: want %v, got %v", s, want, v)
		}
	}
}

func TestParseSelection(t *testing.T) {
	s, err := ParseSelection("sell_ETH")
	if err != nil {
		t.Fatal(err)
	}
	if s.Action != Sell || s.Asset != ETH {
		t.Fatalf("unexpected selection %+v", s)
	}
	for _, data := range []string{"", "buy", "buy_DOGE", "hold_BTC", "buy-BTC", "BUY_BTC"} {
		if _, err := ParseSelection(data); err == nil {
			t.Fatalf("selection %q: want error", data)
		}
	}
	for _, action := range Actions {
		for _, asset := range Assets {
			s, err := ParseSelection(SelectionData(action, asset))
			if err != nil {
				t.Fatal(err)
			}
			if s.Action != action || s.Asset != asset {
				t.Fatalf("want %s %s, got %+v", action, asset, s)
			}
		}
	}
}

func TestInvalidAmountHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	ts := newTestSetup(t, 200, 10)

	for _, s := range []string{"0", "-5", "abc", ""} {
		if _, err := ts.executor.Execute(ctx, 1, Buy, BTC, s); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %q: want ErrInvalidAmount, got %v", s, err)
		}
	}
	if ts.oracle.calls != 0 || ts.store.reads != 0 || ts.store.writes != 0 {
		t.Fatalf("invalid amounts must not have side effects: oracle=%d reads=%d writes=%d", ts.oracle.calls, ts.store.reads, ts.store.writes)
	}
}

func TestBuy(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		cash, qty, price, amount float64
	}{
		{1000, 0, 200, 2},
		{1000, 1.5, 200, 5},
		{50, 0, 0.5, 100},
		{123.45, 0.1, 1000, 0.1},
	}
	for i, c := range cases {
		ts := newTestSetup(t, c.price, 1)
		ts.setBalance(t, 10, c.cash, c.qty, 7)

		out, err := ts.executor.Execute(ctx, 10, Buy, BTC, fmt.Sprint(c.amount))
		if err != nil {
			t.Fatalf("%d: %v", i, err)
		}
		b := ts.balance(t, 10)
		if b.Cash != c.cash-c.amount*c.price || b.BTC != c.qty+c.amount || b.ETH != 7 {
			t.Fatalf("%d: unexpected balance after buy: %s", i, b)
		}
		if out.Price != c.price || out.Amount != c.amount || *out.Balance != *b {
			t.Fatalf("%d: unexpected outcome %+v", i, out)
		}
		if ts.oracle.calls != 1 || ts.store.writes != 1 {
			t.Fatalf("%d: want one price fetch and one write, got %d and %d", i, ts.oracle.calls, ts.store.writes)
		}
		if out.Total() != c.amount*c.price {
			t.Fatalf("%d: want trade total %v, got %v", i, c.amount*c.price, out.Total())
		}
	}
}

func TestBuyInsufficientCash(t *testing.T) {
	ctx := context.Background()
	ts := newTestSetup(t, 200, 10)
	ts.setBalance(t, 10, 399.99, 0.5, 0)

	out, err := ts.executor.Execute(ctx, 10, Buy, BTC, "2")
	if !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("want ErrInsufficientCash, got %v", err)
	}
	if out.Price != 200 {
		t.Fatalf("outcome must carry the price, got %v", out.Price)
	}
	if b := ts.balance(t, 10); b.Cash != 399.99 || b.BTC != 0.5 {
		t.Fatalf("balance must be unchanged, got %s", b)
	}
	if ts.store.writes != 0 {
		t.Fatalf("rejected trade must not write the balance")
	}
}

func TestSell(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		cash, qty, price, amount float64
	}{
		{0, 2, 200, 2},
		{1000, 3, 200, 1},
		{10, 0.5, 3000, 0.25},
	}
	for i, c := range cases {
		ts := newTestSetup(t, 1, c.price)
		ts.setBalance(t, 10, c.cash, 9, c.qty)

		if _, err := ts.executor.Execute(ctx, 10, Sell, ETH, fmt.Sprint(c.amount)); err != nil {
			t.Fatalf("%d: %v", i, err)
		}
		b := ts.balance(t, 10)
		if b.Cash != c.cash+c.amount*c.price || b.ETH != c.qty-c.amount || b.BTC != 9 {
			t.Fatalf("%d: unexpected balance after sell: %s", i, b)
		}
	}
}

func TestSellInsufficientAsset(t *testing.T) {
	ctx := context.Background()
	ts := newTestSetup(t, 200, 10)
	ts.setBalance(t, 10, 1000, 1, 0)

	if _, err := ts.executor.Execute(ctx, 10, Sell, BTC, "2"); !errors.Is(err, ErrInsufficientAsset) {
		t.Fatalf("want ErrInsufficientAsset, got %v", err)
	}
	if b := ts.balance(t, 10); b.Cash != 1000 || b.BTC != 1 {
		t.Fatalf("balance must be unchanged, got %s", b)
	}
}

func TestPriceFeedError(t *testing.T) {
	ctx := context.Background()
	ts := newTestSetup(t, 200, 10)
	ts.oracle.err = errors.New("connection refused")

	_, err := ts.executor.Execute(ctx, 10, Buy, BTC, "1")
	var ferr *price.FeedError
	if !errors.As(err, &ferr) {
		t.Fatalf("want FeedError, got %v", err)
	}
	if ts.store.reads != 0 || ts.store.writes != 0 {
		t.Fatalf("balance must not be touched on price feed errors")
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	ts := newTestSetup(t, 200, 10)

	if _, err := ts.executor.Submit(ctx, 5, "1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}

	if err := ts.executor.Begin(ctx, 5, Buy, BTC); err != nil {
		t.Fatal(err)
	}

	// Invalid amounts keep the selection for a retry.
	if _, err := ts.executor.Submit(ctx, 5, "abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
	if s, _ := ts.sessions.Peek(ctx, 5); s == nil {
		t.Fatalf("selection must survive an invalid amount")
	}

	out, err := ts.executor.Submit(ctx, 5, "2")
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != Buy || out.Asset != BTC || out.Balance.Cash != 600 || out.Balance.BTC != 2 {
		t.Fatalf("unexpected outcome %+v %s", out, out.Balance)
	}
	if s, _ := ts.sessions.Peek(ctx, 5); s != nil {
		t.Fatalf("selection must be consumed after the trade")
	}
	if _, err := ts.executor.Submit(ctx, 5, "2"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("want ErrNoSession after consumption, got %v", err)
	}
}

func TestSubmitConsumesSessionOnFailure(t *testing.T) {
	ctx := context.Background()
	ts := newTestSetup(t, 200, 10)
	ts.setBalance(t, 5, 1000, 1, 0)

	if err := ts.executor.Begin(ctx, 5, Sell, BTC); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.executor.Submit(ctx, 5, "2"); !errors.Is(err, ErrInsufficientAsset) {
		t.Fatalf("want ErrInsufficientAsset, got %v", err)
	}
	if s, _ := ts.sessions.Peek(ctx, 5); s != nil {
		t.Fatalf("selection must be consumed by a rejected trade")
	}

	ts.oracle.err = &price.FeedError{Err: errors.New("down")}
	if err := ts.executor.Begin(ctx, 5, Buy, ETH); err != nil {
		t.Fatal(err)
	}
	var ferr *price.FeedError
	if _, err := ts.executor.Submit(ctx, 5, "1"); !errors.As(err, &ferr) {
		t.Fatalf("want FeedError, got %v", err)
	}
	if s, _ := ts.sessions.Peek(ctx, 5); s != nil {
		t.Fatalf("selection must be consumed by a failed price fetch")
	}
}

func TestBeginOverwrites(t *testing.T) {
	ctx := context.Background()
	ts := newTestSetup(t, 200, 10)

	if err := ts.executor.Begin(ctx, 5, Buy, BTC); err != nil {
		t.Fatal(err)
	}
	if err := ts.executor.Begin(ctx, 5, Sell, ETH); err != nil {
		t.Fatal(err)
	}
	s, err := ts.sessions.Peek(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if s.Action != Sell || s.Asset != ETH {
		t.Fatalf("want latest selection, got %+v", s)
	}
	if err := ts.executor.Begin(ctx, 5, "hold", ETH); err == nil {
		t.Fatalf("want error for invalid action")
	}
}
