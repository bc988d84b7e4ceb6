package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soon-network/soonscan/pkg/metrics"
	"github.com/soon-network/soonscan/pkg/network"
	"github.com/soon-network/soonscan/pkg/rpc"
	"github.com/soon-network/soonscan/pkg/utils"
)

const (
	DefaultBlocksLimit         = 10
	DefaultAccountTransactions = 10

	// maxConcurrentFetches bounds the transaction lookups of one account query.
	maxConcurrentFetches = 4

	addressLength   = 32
	signatureLength = 64
)

var blockConfig = map[string]any{
	"encoding":                       "json",
	"transactionDetails":             "full",
	"rewards":                        false,
	"maxSupportedTransactionVersion": 0,
}

var transactionConfig = map[string]any{
	"encoding":                       "json",
	"maxSupportedTransactionVersion": 0,
}

// Client is a typed SOON RPC client with an optional archive backend.
// Clients are independent; create as many as needed.
type Client struct {
	cfg     Config
	rpc     *rpc.Client
	archive *ArchiveClient // nil if no archive url configured
	log     *zap.SugaredLogger
}

type options struct {
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics
	rpcOptions []rpc.Option
}

// Option configures the Client.
type Option func(*options)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRPCOptions passes extra options to the underlying rpc.Client. They are
// applied after the ones derived from Config.
func WithRPCOptions(opts ...rpc.Option) Option {
	return func(o *options) { o.rpcOptions = append(o.rpcOptions, opts...) }
}

// New creates a client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, ErrMissingRPCURL
	}
	o := options{log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}

	rpcOpts := []rpc.Option{
		rpc.WithLogger(o.log),
		rpc.WithMetrics(o.metrics),
		rpc.WithMaxAttempts(cfg.MaxAttempts),
	}
	if cfg.RequestTimeout > 0 {
		rpcOpts = append(rpcOpts, rpc.WithRequestTimeout(cfg.RequestTimeout))
	}
	rpcOpts = append(rpcOpts, o.rpcOptions...)

	c := &Client{
		cfg: cfg,
		rpc: rpc.New(network.Fixed(network.Config{ID: "sdk", RPCURL: cfg.RPCURL}), rpcOpts...),
		log: o.log,
	}
	if cfg.ArchiveURL != "" {
		archive, err := NewArchiveClient(cfg.ArchiveURL, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		c.archive = archive
	}
	return c, nil
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config { return c.cfg }

// LatestSlot returns the newest slot at the configured commitment.
func (c *Client) LatestSlot(ctx context.Context) (uint64, error) {
	var params []any
	if c.cfg.Commitment != "" {
		params = []any{map[string]any{"commitment": c.cfg.Commitment}}
	}
	var slot uint64
	if err := c.rpc.CallResult(ctx, "getSlot", params, &slot); err != nil {
		return 0, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

// LatestBlock returns the block at the latest slot.
func (c *Client) LatestBlock(ctx context.Context) (*BlockData, error) {
	slot, err := c.LatestSlot(ctx)
	if err != nil {
		return nil, err
	}
	return c.BlockBySlot(ctx, slot)
}

// BlockBySlot returns the block at slot. An empty reply yields ErrBlockNotFound.
func (c *Client) BlockBySlot(ctx context.Context, slot uint64) (*BlockData, error) {
	var rb *rawBlock
	if err := c.rpc.CallResult(ctx, "getBlock", []any{slot, blockConfig}, &rb); err != nil {
		return nil, fmt.Errorf("get block %d: %w", slot, err)
	}
	if rb == nil {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrBlockNotFound)
	}
	b := formatBlock(rb, slot)
	return &b, nil
}

// Transaction returns the transaction with the given base58 signature.
func (c *Client) Transaction(ctx context.Context, signature string) (*TransactionData, error) {
	if err := validateBase58(signature, signatureLength); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSignature, signature, err)
	}
	var rt *rawTransaction
	if err := c.rpc.CallResult(ctx, "getTransaction", []any{signature, transactionConfig}, &rt); err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", signature, err)
	}
	if rt == nil {
		return nil, fmt.Errorf("%s: %w", signature, ErrTransactionNotFound)
	}
	tx := formatTransaction(rt)
	if tx.Signature == "" {
		tx.Signature = signature
	}
	return &tx, nil
}

// Blocks returns the blocks of a slot range in ascending order. Slots that
// fail to load are logged and skipped.
func (c *Client) Blocks(ctx context.Context, opts QueryOptions) ([]BlockData, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultBlocksLimit
	}

	var start uint64
	if opts.FromBlock != nil {
		start = *opts.FromBlock
	} else {
		latest, err := c.LatestSlot(ctx)
		if err != nil {
			return nil, err
		}
		if latest > uint64(limit) {
			start = latest - uint64(limit)
		}
	}
	if opts.Offset > 0 {
		start += uint64(opts.Offset)
	}

	end := start + uint64(limit) // exclusive
	if opts.ToBlock != nil && *opts.ToBlock < end {
		if *opts.ToBlock < start {
			return []BlockData{}, nil
		}
		end = *opts.ToBlock + 1
	}

	total := int(end - start)
	blocks := make([]BlockData, 0, total)
	for slot := start; slot < end; slot++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := c.BlockBySlot(ctx, slot)
		if opts.Progress != nil {
			opts.Progress(int(slot-start)+1, total)
		}
		if err != nil {
			c.log.Warnw("skipping block",
				"slot", slot,
				"error", err,
			)
			continue
		}
		if !inTimeWindow(b.BlockTime, opts.StartTime, opts.EndTime) {
			continue
		}
		blocks = append(blocks, *b)
	}
	return blocks, nil
}

func inTimeWindow(t, from, to *int64) bool {
	if from == nil && to == nil {
		return true
	}
	if t == nil {
		return false
	}
	if from != nil && *t < *from {
		return false
	}
	if to != nil && *t > *to {
		return false
	}
	return true
}

// Signatures returns up to limit recent signatures involving address.
func (c *Client) Signatures(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAccountTransactions
	}
	var sigs []SignatureInfo
	params := []any{address, map[string]any{"limit": limit}}
	if err := c.rpc.CallResult(ctx, "getSignaturesForAddress", params, &sigs); err != nil {
		return nil, fmt.Errorf("get signatures for %s: %w", address, err)
	}
	if sigs == nil {
		sigs = []SignatureInfo{}
	}
	return sigs, nil
}

// AccountTransactions loads the transactions behind the latest limit
// signatures of address, newest first. Any failed lookup fails the call.
func (c *Client) AccountTransactions(ctx context.Context, address string, limit int) ([]TransactionData, error) {
	sigs, err := c.Signatures(ctx, address, limit)
	if err != nil {
		return nil, err
	}

	txs := make([]TransactionData, len(sigs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, sig := range sigs {
		g.Go(func() error {
			tx, err := c.Transaction(gctx, sig.Signature)
			if err != nil {
				return err
			}
			if tx.ConfirmationStatus == "" {
				tx.ConfirmationStatus = sig.ConfirmationStatus
			}
			if tx.Memo == nil {
				tx.Memo = sig.Memo
			}
			txs[i] = *tx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return txs, nil
}

// AccountInfo returns the balance of address in SOON together with its recent
// transactions. The balance and the history are fetched concurrently; a failed
// history lookup leaves Transactions empty.
func (c *Client) AccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	var (
		info    *rawAccountInfo
		history []TransactionData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		params := []any{address, map[string]any{"encoding": "jsonParsed"}}
		if err := c.rpc.CallResult(gctx, "getAccountInfo", params, &info); err != nil {
			return fmt.Errorf("get account info %s: %w", address, err)
		}
		return nil
	})
	g.Go(func() error {
		txs, err := c.AccountTransactions(gctx, address, DefaultAccountTransactions)
		if err != nil {
			c.log.Warnw("failed to load account transactions",
				"address", address,
				"error", err,
			)
			txs = []TransactionData{}
		}
		history = txs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &AccountInfo{
		Address:      address,
		Balance:      utils.LamportsToSOON(info.lamports()),
		Transactions: history,
	}, nil
}

// QueryArchive runs a GraphQL query against the archive and decodes its data into out.
func (c *Client) QueryArchive(ctx context.Context, query string, variables map[string]any, out any) error {
	if c.archive == nil {
		return ErrMissingArchiveURL
	}
	return c.archive.Query(ctx, query, variables, out)
}

// ValidateAddress checks that address is a base58-encoded 32-byte public key.
func ValidateAddress(address string) error {
	if err := validateBase58(address, addressLength); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidAddress, address, err)
	}
	return nil
}

func validateBase58(s string, size int) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("empty")
	}
	b, err := base58.Decode(s)
	if err != nil {
		return err
	}
	if len(b) != size {
		return fmt.Errorf("decoded to %d bytes, want %d", len(b), size)
	}
	return nil
}

// RawCall exposes the underlying JSON-RPC client for methods without a typed wrapper.
func (c *Client) RawCall(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	return c.rpc.Call(ctx, method, params)
}
