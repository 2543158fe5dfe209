// Copyright (c) 2025 BVK Chaitanya

package wallet

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/bvk/papertrade/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type List struct {
	cmdutil.StoreFlags
}

func (c *List) Purpose() string {
	return "Prints balances of all users"
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.StoreFlags.SetFlags(fset)
	return "list", fset, cli.CmdFunc(c.run)
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	store, closer, err := c.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	balances, err := store.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.Stdout(ctx), 2, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "User\tCash\tBTC\tETH\t\n")
	for _, b := range balances {
		fmt.Fprintf(tw, "%d\t%.2f\t%.6f\t%.6f\t\n", b.UserID, b.Cash, b.BTC, b.ETH)
	}
	return tw.Flush()
}
