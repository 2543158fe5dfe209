// Copyright (c) 2025 BVK Chaitanya

// Package frontend renders the chat conversation for the paper trading bot.
// It is independent of the messaging transport: every operation takes the
// sender's user id and returns the reply text.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bvk/papertrade/price"
	"github.com/bvk/papertrade/trade"
	"github.com/dustin/go-humanize"
)

// Quote is the display name of the quote currency.
const Quote = "USDT"

// Choice is an interactive button presented to the user.
type Choice struct {
	Label string
	Data  string
}

type Frontend struct {
	balances trade.BalanceStore
	oracle   trade.PriceOracle
	executor *trade.Executor
}

func New(balances trade.BalanceStore, oracle trade.PriceOracle, sessions trade.SessionStore) *Frontend {
	return &Frontend{
		balances: balances,
		oracle:   oracle,
		executor: trade.NewExecutor(balances, oracle, sessions),
	}
}

// Start returns the welcome message.
func (f *Frontend) Start() string {
	return strings.Join([]string{
		"👋 Welcome to the mini exchange!",
		"/wallet – your balances",
		"/price – live prices",
		"/trade – buy or sell",
	}, "\n")
}

// Wallet returns the user's balances.
func (f *Frontend) Wallet(ctx context.Context, uid int64) (string, error) {
	b, err := f.balances.GetOrCreate(ctx, uid)
	if err != nil {
		slog.Error("could not read user balance", "user", uid, "err", err)
		return "", err
	}
	return fmt.Sprintf("💰 Your balances:\n%s: %.2f\nBTC : %.6f\nETH : %.6f", Quote, b.Cash, b.BTC, b.ETH), nil
}

// Prices returns the current prices for all assets.
func (f *Frontend) Prices(ctx context.Context) (string, error) {
	p, err := f.oracle.FetchPrices(ctx)
	if err != nil {
		slog.Warn("could not fetch prices", "err", err)
		return "", err
	}
	return fmt.Sprintf("📈 Live prices:\nBTC: %s %s\nETH: %s %s", FormatPrice(p.BTC), Quote, FormatPrice(p.ETH), Quote), nil
}

// TradeMenu returns the prompt and a 2x2 grid of trade choices.
func (f *Frontend) TradeMenu() (string, [][]Choice) {
	var rows [][]Choice
	for _, asset := range trade.Assets {
		var row []Choice
		for _, action := range trade.Actions {
			row = append(row, Choice{
				Label: actionTitle(action) + " " + string(asset),
				Data:  trade.SelectionData(action, asset),
			})
		}
		rows = append(rows, row)
	}
	return "Please choose a trade:", rows
}

// Select begins a trade selection from a choice's data and returns the amount
// prompt.
func (f *Frontend) Select(ctx context.Context, uid int64, data string) (string, error) {
	s, err := trade.ParseSelection(data)
	if err != nil {
		slog.Warn("received invalid trade selection (ignored)", "user", uid, "data", data, "err", err)
		return "⚠️ Unknown trade choice, please use /trade again.", nil
	}
	if err := f.executor.Begin(ctx, uid, s.Action, s.Asset); err != nil {
		return "", err
	}
	verb := "buy"
	if s.Action == trade.Sell {
		verb = "sell"
	}
	return fmt.Sprintf("How much %s do you want to %s?\nPlease enter a number only:", s.Asset, verb), nil
}

// Amount handles free text from the user. Returns false when the user has no
// pending trade selection and the text should be ignored.
func (f *Frontend) Amount(ctx context.Context, uid int64, text string) (string, bool, error) {
	out, err := f.executor.Submit(ctx, uid, text)
	if err == nil {
		verb := "Bought"
		if out.Action == trade.Sell {
			verb = "Sold"
		}
		return fmt.Sprintf("✅ %s %.6f %s at %s %s (total %s %s).", verb, out.Amount, out.Asset, FormatPrice(out.Price), Quote, FormatPrice(out.Total()), Quote), true, nil
	}

	if errors.Is(err, trade.ErrNoSession) {
		return "", false, nil
	}
	if errors.Is(err, trade.ErrInvalidAmount) {
		return "⚠️ Please enter a positive number.", true, nil
	}
	if errors.Is(err, trade.ErrInsufficientCash) {
		return fmt.Sprintf("❌ Not enough %s balance.", Quote), true, nil
	}
	if errors.Is(err, trade.ErrInsufficientAsset) {
		return fmt.Sprintf("❌ Not enough %s balance.", out.Asset), true, nil
	}
	var ferr *price.FeedError
	if errors.As(err, &ferr) {
		return "❌ Could not fetch the current price, please try again later.", true, nil
	}
	slog.Error("could not execute trade", "user", uid, "err", err)
	return "", true, err
}

// FormatPrice formats a price with thousands separators and two decimals.
func FormatPrice(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func actionTitle(a trade.Action) string {
	if a == trade.Sell {
		return "Sell"
	}
	return "Buy"
}

// ErrorText returns the reply for errors returned by the frontend operations.
func ErrorText(err error) string {
	var ferr *price.FeedError
	if errors.As(err, &ferr) {
		return "❌ Could not fetch prices, please try again later."
	}
	return "❌ Something went wrong, please try again later."
}
