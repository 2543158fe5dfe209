// Copyright (c) 2025 BVK Chaitanya

package trade

import "errors"

var (
	// ErrInvalidAmount is returned when the amount is not a number or is not
	// greater than zero.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	ErrInsufficientCash  = errors.New("insufficient cash balance")
	ErrInsufficientAsset = errors.New("insufficient asset balance")

	// ErrNoSession is returned when an amount is submitted without a pending
	// trade selection.
	ErrNoSession = errors.New("no pending trade selection")
)
