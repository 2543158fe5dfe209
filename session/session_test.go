// Copyright (c) 2025 BVK Chaitanya

package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bvk/papertrade/trade"
	"github.com/go-redis/redis/v8"
)

func testBeginTake(t *testing.T, s trade.SessionStore) {
	ctx := context.Background()

	if v, err := s.Take(ctx, 1); err != nil || v != nil {
		t.Fatalf("want no session, got %v, %v", v, err)
	}

	if err := s.Begin(ctx, 1, &trade.Session{Action: trade.Buy, Asset: trade.BTC}); err != nil {
		t.Fatal(err)
	}
	if err := s.Begin(ctx, 2, &trade.Session{Action: trade.Sell, Asset: trade.ETH}); err != nil {
		t.Fatal(err)
	}

	v, err := s.Peek(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || v.Action != trade.Buy || v.Asset != trade.BTC {
		t.Fatalf("unexpected peeked session %+v", v)
	}

	v, err = s.Take(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || v.Action != trade.Buy || v.Asset != trade.BTC {
		t.Fatalf("unexpected session %+v", v)
	}
	if v, err := s.Take(ctx, 1); err != nil || v != nil {
		t.Fatalf("second take must return nothing, got %v, %v", v, err)
	}
	if v, err := s.Peek(ctx, 1); err != nil || v != nil {
		t.Fatalf("peek after take must return nothing, got %v, %v", v, err)
	}

	// Other users are not affected.
	if v, err := s.Peek(ctx, 2); err != nil || v == nil || v.Asset != trade.ETH {
		t.Fatalf("unexpected session for other user %+v, %v", v, err)
	}

	// New selection replaces the pending one.
	if err := s.Begin(ctx, 2, &trade.Session{Action: trade.Buy, Asset: trade.BTC}); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Take(ctx, 2); err != nil || v == nil || v.Action != trade.Buy || v.Asset != trade.BTC {
		t.Fatalf("want latest selection, got %+v, %v", v, err)
	}
}

func TestMemStore(t *testing.T) {
	testBeginTake(t, NewMemStore())
}

func TestMemStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	v := &trade.Session{Action: trade.Buy, Asset: trade.BTC}
	if err := s.Begin(ctx, 1, v); err != nil {
		t.Fatal(err)
	}
	v.Asset = trade.ETH
	if x, _ := s.Peek(ctx, 1); x.Asset != trade.BTC {
		t.Fatalf("store must not alias caller's session")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("PAPERTRADE_TEST_REDIS")
	if len(addr) == 0 {
		t.Skip("no redis server")
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	prefix := "papertrade-test:" + time.Now().Format(time.RFC3339Nano) + ":"
	s := NewRedisStore(client, &RedisOptions{KeyPrefix: prefix, TTL: time.Minute})
	testBeginTake(t, s)
}
