// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bvk/papertrade/server"
	"github.com/bvk/papertrade/subcmds/cmdutil"
	"github.com/bvk/papertrade/telegram"
	"github.com/visvasity/cli"
	"golang.org/x/term"
)

type Telegram struct {
	cmdutil.DataFlags

	skipTesting bool

	botToken string
}

func (c *Telegram) Purpose() string {
	return "Setup configures the Telegram bot token"
}

func (c *Telegram) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("telegram", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	fset.StringVar(&c.botToken, "bot-token", "", "Telegram bot's authentication token (prompted when empty)")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't verify the token with telegram servers")
	return "telegram", fset, cli.CmdFunc(c.run)
}

func (c *Telegram) Description() string {
	return `

Command "telegram" saves the Telegram bot token in the secrets file under the
data directory. Bot tokens are issued by the @BotFather bot. Token is read
from the terminal without echo when the -bot-token flag is empty:

  $ papertrade setup telegram
  Telegram bot token:

Token is verified with the Telegram servers before it is saved, unless the
-skip-testing flag is given.

`
}

func (c *Telegram) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	dataDir, err := c.DataDir()
	if err != nil {
		return err
	}

	secretsPath := filepath.Join(dataDir, "secrets.json")
	secrets, err := server.SecretsFromFile(secretsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if secrets == nil {
		secrets = &server.Secrets{}
	}

	if len(c.botToken) == 0 {
		fmt.Fprint(cli.Stdout(ctx), "Telegram bot token: ")
		token, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cli.Stdout(ctx))
		if err != nil {
			return fmt.Errorf("could not read bot token: %w", err)
		}
		c.botToken = strings.TrimSpace(string(token))
	}

	secrets.Telegram = &telegram.Secrets{
		BotToken: c.botToken,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		name, err := telegram.CheckToken(ctx, secrets.Telegram)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.Stdout(ctx), "Verified token for bot @%s\n", name)
	}

	js, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(secretsPath, js, os.FileMode(0600)); err != nil {
		return err
	}
	return nil
}
