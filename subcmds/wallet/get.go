// Copyright (c) 2025 BVK Chaitanya

package wallet

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/bvk/papertrade/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Get struct {
	cmdutil.StoreFlags
}

func (c *Get) Purpose() string {
	return "Prints a user's balances, creating the default wallet if necessary"
}

func (c *Get) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.StoreFlags.SetFlags(fset)
	return "get", fset, cli.CmdFunc(c.run)
}

func (c *Get) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (telegram user id) argument")
	}
	uid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("could not parse user id %q: %w", args[0], err)
	}

	store, closer, err := c.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	b, err := store.GetOrCreate(ctx, uid)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "%d cash=%.2f btc=%.6f eth=%.6f\n", b.UserID, b.Cash, b.BTC, b.ETH)
	return nil
}
