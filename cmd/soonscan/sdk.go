package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/soon-network/soonscan/pkg/sdk"
)

func sdkCommand() *cli.Command {
	return &cli.Command{
		Name:  "sdk",
		Usage: "Query a SOON node through the client SDK",
		Subcommands: []*cli.Command{
			{
				Name:   "latest-block",
				Usage:  "Print the block at the latest slot",
				Flags:  sdkFlags(),
				Action: sdkLatestBlock,
			},
			{
				Name:  "blocks",
				Usage: "Print a range of blocks in ascending slot order",
				Flags: append(sdkFlags(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Number of slots in the range",
						Value:   sdk.DefaultBlocksLimit,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Slots to skip from the start of the range",
					},
					&cli.Uint64Flag{
						Name:  "from",
						Usage: "First slot of the range (default: latest slot minus limit)",
					},
					&cli.Uint64Flag{
						Name:  "to",
						Usage: "Last slot of the range, inclusive",
					},
					&cli.Int64Flag{
						Name:  "start-time",
						Usage: "Drop blocks older than this unix time",
					},
					&cli.Int64Flag{
						Name:  "end-time",
						Usage: "Drop blocks newer than this unix time",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Render a progress bar on stderr",
						Value: true,
					},
				),
				Action: sdkBlocks,
			},
			{
				Name:      "tx",
				Usage:     "Print a transaction by signature",
				Flags:     sdkFlags(),
				ArgsUsage: "<signature>",
				Action:    sdkTransaction,
			},
			{
				Name:      "account",
				Usage:     "Print the balance and recent transactions of an address",
				Flags:     sdkFlags(),
				ArgsUsage: "<address>",
				Action:    sdkAccount,
			},
			{
				Name:  "archive",
				Usage: "Run a GraphQL query against the archive",
				Flags: append(sdkFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "GraphQL query document",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "variables",
						Usage: "GraphQL variables as a JSON object",
					},
				),
				Action: sdkArchive,
			},
		},
	}
}

// newSDKClient loads the SDK config for --network, applies the URL flag
// overrides and creates a client.
func newSDKClient(c *cli.Context) (*sdk.Client, error) {
	cfg, err := sdk.LoadConfig(c.String("network"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("archive-url") {
		cfg.ArchiveURL = c.String("archive-url")
	}

	sugar, err := newCommandLogger(c.Bool("verbose"))
	if err != nil {
		return nil, err
	}
	client, err := sdk.New(cfg, sdk.WithLogger(sugar.Named("sdk")))
	if err != nil {
		return nil, fmt.Errorf("failed to create sdk client: %w", err)
	}
	return client, nil
}

func sdkLatestBlock(c *cli.Context) error {
	client, err := newSDKClient(c)
	if err != nil {
		return err
	}
	block, err := client.LatestBlock(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, block)
}

func sdkBlocks(c *cli.Context) error {
	client, err := newSDKClient(c)
	if err != nil {
		return err
	}

	opts := blockQueryOptions(c)
	var bar *progressbar.ProgressBar
	if c.Bool("progress") {
		opts.Progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
					progressbar.OptionSetDescription("Fetching blocks..."),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
				)
			}
			bar.Set(done) //nolint:errcheck // progress output only
		}
	}

	blocks, err := client.Blocks(c.Context, opts)
	if bar != nil {
		if ferr := bar.Finish(); ferr != nil {
			return fmt.Errorf("failed to finish progress bar: %w", ferr)
		}
	}
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, blocks)
}

// blockQueryOptions maps the range flags onto sdk.QueryOptions. Only flags
// given on the command line are set.
func blockQueryOptions(c *cli.Context) sdk.QueryOptions {
	opts := sdk.QueryOptions{
		Limit:  c.Int("limit"),
		Offset: c.Int("offset"),
	}
	if c.IsSet("from") {
		v := c.Uint64("from")
		opts.FromBlock = &v
	}
	if c.IsSet("to") {
		v := c.Uint64("to")
		opts.ToBlock = &v
	}
	if c.IsSet("start-time") {
		v := c.Int64("start-time")
		opts.StartTime = &v
	}
	if c.IsSet("end-time") {
		v := c.Int64("end-time")
		opts.EndTime = &v
	}
	return opts
}

func sdkTransaction(c *cli.Context) error {
	client, err := newSDKClient(c)
	if err != nil {
		return err
	}
	tx, err := client.Transaction(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, tx)
}

func sdkAccount(c *cli.Context) error {
	client, err := newSDKClient(c)
	if err != nil {
		return err
	}
	info, err := client.AccountInfo(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, info)
}

func sdkArchive(c *cli.Context) error {
	client, err := newSDKClient(c)
	if err != nil {
		return err
	}

	var variables map[string]any
	if raw := c.String("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variables); err != nil {
			return fmt.Errorf("invalid variables: %w", err)
		}
	}

	var data json.RawMessage
	if err := client.QueryArchive(c.Context, c.String("query"), variables, &data); err != nil {
		return err
	}
	return printJSON(c.App.Writer, data)
}
