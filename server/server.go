// Copyright (c) 2023 BVK Chaitanya

// Package server wires the price client, the stores and the Telegram bot
// into a running paper trading service.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bvk/papertrade/frontend"
	"github.com/bvk/papertrade/price"
	"github.com/bvk/papertrade/telegram"
)

type Server struct {
	frontend *frontend.Frontend

	telegramClient *telegram.Client
}

// New creates the paper trading service and starts the Telegram bot.
func New(ctx context.Context, secrets *Secrets, opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	oracle, err := price.New(&opts.Price)
	if err != nil {
		return nil, fmt.Errorf("could not create price client: %w", err)
	}

	s := &Server{
		frontend: frontend.New(opts.Balances, oracle, opts.Sessions),
	}

	client, err := telegram.New(ctx, secrets.Telegram, s.frontend)
	if err != nil {
		return nil, fmt.Errorf("could not create telegram client: %w", err)
	}
	s.telegramClient = client

	slog.Info("paper trading service is ready", "bot", client.BotUserName())
	return s, nil
}

func (s *Server) Close() error {
	if s.telegramClient != nil {
		if err := s.telegramClient.Close(); err != nil {
			slog.Error("could not close telegram client (ignored)", "err", err)
		}
	}
	return nil
}
