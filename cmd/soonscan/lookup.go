package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/soon-network/soonscan/pkg/explorer"
	"github.com/soon-network/soonscan/pkg/network"
	"github.com/soon-network/soonscan/pkg/rpc"
	"github.com/soon-network/soonscan/pkg/utils"
)

func listNetworks(c *cli.Context) error {
	return printJSON(c.App.Writer, network.All())
}

func latestBlocks(c *cli.Context) error {
	return withService(c, func(svc *explorer.Service) error {
		blocks, err := svc.LatestBlocks(c.Context, c.Int("count"))
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, blocks)
	})
}

func getBlock(c *cli.Context) error {
	slot, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid slot %q: %w", c.Args().First(), err)
	}
	return withService(c, func(svc *explorer.Service) error {
		block, err := svc.GetBlock(c.Context, slot)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, block)
	})
}

func getTransaction(c *cli.Context) error {
	hash := c.Args().First()
	if hash == "" {
		return errors.New("transaction hash is required")
	}
	return withService(c, func(svc *explorer.Service) error {
		tx, err := svc.GetTransaction(c.Context, hash)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, tx)
	})
}

// withService builds an explorer service for the network selected by the
// --network flag and passes it to fn.
func withService(c *cli.Context, fn func(*explorer.Service) error) error {
	id := c.String("network")
	if _, ok := network.Lookup(id); !ok {
		return fmt.Errorf("unknown network %q", id)
	}

	sugar, err := newCommandLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	nc := network.NewContext(id)
	client := rpc.New(nc, rpc.WithLogger(sugar.Named("rpc")))
	return fn(explorer.NewService(client, nc, explorer.WithLogger(sugar.Named("explorer"))))
}

// newCommandLogger logs to stderr only when verbose; stdout carries the JSON result.
func newCommandLogger(verbose bool) (*zap.SugaredLogger, error) {
	if !verbose {
		return zap.NewNop().Sugar(), nil
	}
	sugar, err := utils.NewSugaredLogger(true)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return sugar, nil
}

func printJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
