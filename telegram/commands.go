// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"context"
	"fmt"

	"github.com/bvk/papertrade/frontend"
	"github.com/visvasity/cli"

	"github.com/go-telegram/bot/models"
)

func (c *Client) addCommands() {
	c.commandMap.Store("start", &Command{
		Purpose: "Shows the welcome message",
		Handler: c.start,
	})
	c.commandMap.Store("wallet", &Command{
		Purpose: "Shows your balances",
		Handler: c.wallet,
	})
	c.commandMap.Store("price", &Command{
		Purpose: "Shows live BTC and ETH prices",
		Handler: c.price,
	})
	c.commandMap.Store("trade", &Command{
		Purpose:  "Buys or sells BTC and ETH",
		Handler:  c.trade,
		Keyboard: c.tradeKeyboard,
	})
}

func (c *Client) start(ctx context.Context, _ []string) error {
	fmt.Fprint(cli.Stdout(ctx), c.frontend.Start())
	return nil
}

func (c *Client) wallet(ctx context.Context, _ []string) error {
	text, err := c.frontend.Wallet(ctx, Sender(ctx))
	if err != nil {
		return err
	}
	fmt.Fprint(cli.Stdout(ctx), text)
	return nil
}

func (c *Client) price(ctx context.Context, _ []string) error {
	text, err := c.frontend.Prices(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(cli.Stdout(ctx), text)
	return nil
}

func (c *Client) trade(ctx context.Context, _ []string) error {
	text, _ := c.frontend.TradeMenu()
	fmt.Fprint(cli.Stdout(ctx), text)
	return nil
}

func (c *Client) tradeKeyboard() *models.InlineKeyboardMarkup {
	_, rows := c.frontend.TradeMenu()
	return Keyboard(rows)
}

// Keyboard converts frontend choices into an inline keyboard.
func Keyboard(rows [][]frontend.Choice) *models.InlineKeyboardMarkup {
	var keyboard [][]models.InlineKeyboardButton
	for _, row := range rows {
		var buttons []models.InlineKeyboardButton
		for _, choice := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         choice.Label,
				CallbackData: choice.Data,
			})
		}
		keyboard = append(keyboard, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
