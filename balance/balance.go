// Copyright (c) 2025 BVK Chaitanya

// Package balance implements the durable per-user wallet storage. Every user
// owns one row with cash and two asset quantities; rows are created lazily on
// the first read and are never deleted.
package balance

import (
	"context"
	"fmt"
	"math"

	"github.com/bvk/papertrade/gobs"
)

// DefaultCash is the cash balance of a newly seen user.
const DefaultCash = 1000.0

type Balance struct {
	UserID int64

	Cash float64

	BTC float64
	ETH float64
}

// Store is implemented by all balance backends.
type Store interface {
	// GetOrCreate returns the balance for the user, inserting a default
	// balance first if the user has none.
	GetOrCreate(ctx context.Context, uid int64) (*Balance, error)

	// Save overwrites all fields of an existing balance. It is a no-op when
	// the user has no balance row.
	Save(ctx context.Context, b *Balance) error

	// List returns all balances ordered by the user id.
	List(ctx context.Context) ([]*Balance, error)
}

// Default returns the initial balance for a user.
func Default(uid int64) *Balance {
	return &Balance{
		UserID: uid,
		Cash:   DefaultCash,
	}
}

func (b *Balance) Clone() *Balance {
	v := *b
	return &v
}

// Check verifies that all quantities are finite and non-negative.
func (b *Balance) Check() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"cash", b.Cash},
		{"btc", b.BTC},
		{"eth", b.ETH},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s value %v is not a finite number", f.name, f.value)
		}
		if f.value < 0 {
			return fmt.Errorf("%s value %v cannot be negative", f.name, f.value)
		}
	}
	return nil
}

func (b *Balance) String() string {
	return fmt.Sprintf("user=%d cash=%.2f btc=%.6f eth=%.6f", b.UserID, b.Cash, b.BTC, b.ETH)
}

func toGob(b *Balance) *gobs.Balance {
	return &gobs.Balance{
		UserID: b.UserID,
		Cash:   b.Cash,
		BTC:    b.BTC,
		ETH:    b.ETH,
	}
}

func fromGob(v *gobs.Balance) *Balance {
	return &Balance{
		UserID: v.UserID,
		Cash:   v.Cash,
		BTC:    v.BTC,
		ETH:    v.ETH,
	}
}
