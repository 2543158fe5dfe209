// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/papertrade/frontend"
	"github.com/bvk/papertrade/price"
	"github.com/visvasity/cli"
)

type Price struct {
	priceURL string
	timeout  time.Duration
}

func (c *Price) Purpose() string {
	return "Prints current BTC and ETH prices"
}

func (c *Price) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("price", flag.ContinueOnError)
	fset.StringVar(&c.priceURL, "price-url", price.CoinGeckoURL.String(), "base url for the coingecko price api")
	fset.DurationVar(&c.timeout, "timeout", 10*time.Second, "timeout for the price request")
	return "price", fset, cli.CmdFunc(c.run)
}

func (c *Price) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	client, err := price.New(&price.Options{
		BaseURL:     c.priceURL,
		HTTPTimeout: c.timeout,
	})
	if err != nil {
		return err
	}

	p, err := client.FetchPrices(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "BTC: %s %s\n", frontend.FormatPrice(p.BTC), frontend.Quote)
	fmt.Fprintf(cli.Stdout(ctx), "ETH: %s %s\n", frontend.FormatPrice(p.ETH), frontend.Quote)
	return nil
}
