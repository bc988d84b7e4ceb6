package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/soon-network/soonscan/internal/types"
	"github.com/soon-network/soonscan/pkg/metrics"
	"github.com/soon-network/soonscan/pkg/network"
	"github.com/soon-network/soonscan/pkg/rpc"
	"github.com/soon-network/soonscan/pkg/utils"
)

// Caller performs a single JSON-RPC call. *rpc.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params []any) (json.RawMessage, error)
}

type dialect int

const (
	// slotDialect uses getSlot / getBlock + getBlockTime / getTransaction only.
	slotDialect dialect = iota
	// ethereumFirst tries the eth_* method and falls back to slotDialect on any failure.
	ethereumFirst
)

func (d dialect) String() string {
	if d == ethereumFirst {
		return "ethereum-first"
	}
	return "slot"
}

// dialects is keyed by network id. Ids missing from the table use slotDialect.
var dialects = map[string]dialect{
	network.Testnet: ethereumFirst,
	network.Devnet:  slotDialect,
}

var getBlockConfig = map[string]any{
	"encoding":                       "json",
	"transactionDetails":             "full",
	"rewards":                        false,
	"maxSupportedTransactionVersion": 0,
}

var getTransactionConfig = map[string]any{
	"encoding":                       "json",
	"maxSupportedTransactionVersion": 0,
}

// Service answers explorer queries against whichever network is active when
// each call starts.
type Service struct {
	rpc      Caller
	networks rpc.NetworkSource
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics // nil if metrics disabled
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics enables batch metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(caller Caller, networks rpc.NetworkSource, opts ...Option) *Service {
	s := &Service{
		rpc:      caller,
		networks: networks,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) dialect() dialect {
	if s.networks == nil {
		return slotDialect
	}
	return dialects[s.networks.Active().ID]
}

// LatestBlockNumber returns the newest block number (or slot) of the active network.
func (s *Service) LatestBlockNumber(ctx context.Context) (uint64, error) {
	if s.dialect() == ethereumFirst {
		var hex string
		err := s.callInto(ctx, "eth_blockNumber", nil, &hex)
		if err == nil {
			n, perr := utils.ParseQuantity(hex)
			if perr == nil {
				return n, nil
			}
			err = perr
		}
		s.log.Debugw("eth_blockNumber failed, falling back to getSlot", "error", err)
	}

	var slot uint64
	if err := s.callInto(ctx, "getSlot", nil, &slot); err != nil {
		return 0, fmt.Errorf("latest slot: %w", err)
	}
	return slot, nil
}

// GetBlock fetches and normalizes the block at slot.
func (s *Service) GetBlock(ctx context.Context, slot uint64) (types.Block, error) {
	if s.dialect() == ethereumFirst {
		raw, err := s.rpc.Call(ctx, "eth_getBlockByNumber", []any{utils.EncodeQuantity(slot), true})
		if err == nil {
			b, nerr := NormalizeBlock(raw, slot, nil)
			if nerr == nil {
				return b, nil
			}
			err = nerr
		}
		s.log.Debugw("eth_getBlockByNumber failed, falling back to getBlock",
			"slot", slot,
			"error", err,
		)
	}
	return s.getSlotBlock(ctx, slot)
}

func (s *Service) getSlotBlock(ctx context.Context, slot uint64) (types.Block, error) {
	raw, err := s.rpc.Call(ctx, "getBlock", []any{slot, getBlockConfig})
	if err != nil {
		return types.Block{}, fmt.Errorf("get block %d: %w", slot, err)
	}
	if isNull(raw) {
		return types.Block{}, &BlockNotFoundError{Slot: slot}
	}

	var blockTime *int64
	if err := s.callInto(ctx, "getBlockTime", []any{slot}, &blockTime); err != nil {
		s.log.Warnw("getBlockTime failed, using block body time",
			"slot", slot,
			"error", err,
		)
		blockTime = nil
	}
	return NormalizeBlock(raw, slot, blockTime)
}

// GetTransaction fetches and normalizes the transaction identified by hash
// (an Ethereum-style hash or a base58 signature).
func (s *Service) GetTransaction(ctx context.Context, hash string) (types.Transaction, error) {
	if s.dialect() == ethereumFirst {
		raw, err := s.rpc.Call(ctx, "eth_getTransactionByHash", []any{hash})
		if err == nil {
			tx, nerr := NormalizeTransaction(raw, hash, 0)
			if nerr == nil {
				return tx, nil
			}
			err = nerr
		}
		s.log.Debugw("eth_getTransactionByHash failed, falling back to getTransaction",
			"hash", hash,
			"error", err,
		)
	}

	raw, err := s.rpc.Call(ctx, "getTransaction", []any{hash, getTransactionConfig})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("get transaction %s: %w", hash, err)
	}
	return NormalizeTransaction(raw, hash, 0)
}

// LatestBlocks fetches latest, latest-1, ..., latest-n+1 one at a time, newest
// first. Blocks that fail are logged and skipped; the call only fails if none
// of them could be fetched.
func (s *Service) LatestBlocks(ctx context.Context, n int) ([]types.Block, error) {
	if n <= 0 {
		return []types.Block{}, nil
	}
	latest, err := s.LatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	count := uint64(n)
	if count > latest+1 {
		count = latest + 1
	}

	var (
		blocks  = make([]types.Block, 0, count)
		lastErr error
	)
	for i := uint64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slot := latest - i
		b, err := s.GetBlock(ctx, slot)
		if err != nil {
			lastErr = err
			s.log.Warnw("skipping block",
				"slot", slot,
				"error", err,
			)
			continue
		}
		blocks = append(blocks, b)
	}

	skipped := int(count) - len(blocks)
	s.metrics.RecordBatch(len(blocks), skipped)
	if len(blocks) == 0 {
		return nil, &NoBlocksFetchedError{Requested: int(count), Err: lastErr}
	}
	s.log.Debugw("fetched latest blocks",
		"dialect", s.dialect().String(),
		"latest", latest,
		"fetched", len(blocks),
		"skipped", skipped,
	)
	return blocks, nil
}

// LatestTransactions flattens the transactions of the latest n blocks.
func (s *Service) LatestTransactions(ctx context.Context, n int) ([]types.Transaction, error) {
	blocks, err := s.LatestBlocks(ctx, n)
	if err != nil {
		return nil, err
	}
	txs := make([]types.Transaction, 0)
	for _, b := range blocks {
		txs = append(txs, b.Transactions...)
	}
	return txs, nil
}

func (s *Service) callInto(ctx context.Context, method string, params []any, out any) error {
	raw, err := s.rpc.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// IsNotFound reports whether err means the requested block or transaction does not exist.
func IsNotFound(err error) bool {
	var (
		blockErr *BlockNotFoundError
		txErr    *TransactionNotFoundError
	)
	return errors.As(err, &blockErr) || errors.As(err, &txErr)
}
