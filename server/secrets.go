// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bvk/papertrade/telegram"
)

type Secrets struct {
	Telegram *telegram.Secrets `json:"telegram"`
}

func SecretsFromFile(fpath string) (*Secrets, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("could not parse secrets file %q: %w", fpath, err)
	}
	return s, nil
}

// LoadSecrets reads the secrets file, if it exists, and applies the
// environment overrides. Returns an error if the resulting secrets have no
// telegram bot token.
func LoadSecrets(fpath string) (*Secrets, error) {
	s, err := SecretsFromFile(fpath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		s = new(Secrets)
	}
	if s.Telegram == nil {
		s.Telegram = new(telegram.Secrets)
	}
	s.Telegram.ApplyEnv()
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("telegram bot token is not configured in %q or %s: %w", fpath, telegram.TokenEnv, err)
	}
	return s, nil
}

func (v *Secrets) Check() error {
	if v.Telegram == nil {
		return fmt.Errorf("telegram secrets are required")
	}
	if err := v.Telegram.Check(); err != nil {
		return err
	}
	return nil
}
