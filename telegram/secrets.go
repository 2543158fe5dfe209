// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"fmt"
	"os"
)

// TokenEnv names the environment variable that overrides the bot token from
// the secrets file.
const TokenEnv = "PAPERTRADE_TELEGRAM_TOKEN"

type Secrets struct {
	BotToken string `json:"token"`
}

func (v *Secrets) Check() error {
	if len(v.BotToken) == 0 {
		return fmt.Errorf("bot token cannot be empty")
	}
	return nil
}

func (v *Secrets) Clone() *Secrets {
	return &Secrets{
		BotToken: v.BotToken,
	}
}

// ApplyEnv replaces the bot token with the environment variable value when
// it is set.
func (v *Secrets) ApplyEnv() {
	if token := os.Getenv(TokenEnv); len(token) != 0 {
		v.BotToken = token
	}
}
