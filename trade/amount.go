// Copyright (c) 2025 BVK Chaitanya

package trade

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses user entered trade amount. Amount must be a finite
// number strictly greater than zero.
func ParseAmount(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return 0, fmt.Errorf("empty amount: %w", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a number: %w", text, ErrInvalidAmount)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount %q is not positive: %w", text, ErrInvalidAmount)
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("amount %q is out of range: %w", text, ErrInvalidAmount)
	}
	return v, nil
}
