// Copyright (c) 2025 BVK Chaitanya

package gobs

// Balance is the database record for a user's simulated wallet.
type Balance struct {
	UserID int64

	Cash float64

	BTC float64
	ETH float64
}
