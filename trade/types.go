// Copyright (c) 2025 BVK Chaitanya

package trade

import (
	"fmt"
	"os"
	"strings"
)

type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

type Asset string

const (
	BTC Asset = "BTC"
	ETH Asset = "ETH"
)

var (
	Actions = []Action{Buy, Sell}
	Assets  = []Asset{BTC, ETH}
)

func (a Action) Check() error {
	if a != Buy && a != Sell {
		return fmt.Errorf("trade action %q is not supported: %w", string(a), os.ErrInvalid)
	}
	return nil
}

func (a Asset) Check() error {
	if a != BTC && a != ETH {
		return fmt.Errorf("asset %q is not supported: %w", string(a), os.ErrInvalid)
	}
	return nil
}

// Session is a pending trade selection waiting for the user to enter an
// amount.
type Session struct {
	Action Action `json:"action"`
	Asset  Asset  `json:"asset"`
}

// SelectionData returns the "<action>_<asset>" string identifying a trade
// selection, ex: "buy_BTC".
func SelectionData(action Action, asset Asset) string {
	return string(action) + "_" + string(asset)
}

// ParseSelection parses a "<action>_<asset>" selection string.
func ParseSelection(data string) (*Session, error) {
	action, asset, ok := strings.Cut(data, "_")
	if !ok {
		return nil, fmt.Errorf("selection %q has no separator: %w", data, os.ErrInvalid)
	}
	s := &Session{
		Action: Action(action),
		Asset:  Asset(asset),
	}
	if err := s.Action.Check(); err != nil {
		return nil, err
	}
	if err := s.Asset.Check(); err != nil {
		return nil, err
	}
	return s, nil
}
