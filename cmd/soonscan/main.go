package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "soonscan",
		Usage: "Explore the SOON Network",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Poll the active network and serve the explorer API",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:   "networks",
				Usage:  "List the networks the explorer can switch to",
				Action: listNetworks,
			},
			{
				Name:      "blocks",
				Usage:     "Print the most recent blocks of a network",
				Flags:     append(lookupFlags(), countFlag()),
				Action:    latestBlocks,
				ArgsUsage: " ",
			},
			{
				Name:      "block",
				Usage:     "Print a single block",
				Flags:     lookupFlags(),
				Action:    getBlock,
				ArgsUsage: "<slot>",
			},
			{
				Name:      "tx",
				Usage:     "Print a single transaction",
				Flags:     lookupFlags(),
				Action:    getTransaction,
				ArgsUsage: "<hash>",
			},
			sdkCommand(),
		},
	}
}
