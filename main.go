// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/papertrade/subcmds"
	"github.com/bvk/papertrade/subcmds/setup"
	"github.com/bvk/papertrade/subcmds/wallet"
	"github.com/visvasity/cli"
)

func main() {
	setupCmds := []cli.Command{
		new(setup.Telegram),
	}

	walletCmds := []cli.Command{
		new(wallet.Get),
		new(wallet.List),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Price),
		cli.NewGroup("setup", "Configure service parameters", setupCmds...),
		cli.NewGroup("wallet", "View simulated wallets directly from the database", walletCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
