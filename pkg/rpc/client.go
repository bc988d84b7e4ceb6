package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/soon-network/soonscan/pkg/metrics"
	"github.com/soon-network/soonscan/pkg/network"
)

const (
	DefaultMaxAttempts    = 3
	DefaultBackoff        = 1 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// NetworkSource supplies the network a call is sent to. It is consulted once at
// the start of every call.
type NetworkSource interface {
	Active() network.Config
}

// Client issues JSON-RPC 2.0 calls against the active network with bounded
// retries. The delay before attempt k+1 is k times the backoff.
type Client struct {
	networks       NetworkSource
	transport      Transport
	log            *zap.SugaredLogger
	metrics        *metrics.Metrics // nil if metrics disabled
	maxAttempts    int
	backoff        time.Duration
	requestTimeout time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	lastID         atomic.Uint64
}

// Option configures the Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics enables metrics collection for the client.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithMaxAttempts sets the total number of attempts per call. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n >= 1 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the base retry delay.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithRequestTimeout bounds each individual attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

// New creates a client that targets whatever networks.Active() reports.
func New(networks NetworkSource, opts ...Option) *Client {
	c := &Client{
		networks:       networks,
		log:            zap.NewNop().Sugar(),
		maxAttempts:    DefaultMaxAttempts,
		backoff:        DefaultBackoff,
		requestTimeout: DefaultRequestTimeout,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(c.requestTimeout)
	}
	return c
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

var null = json.RawMessage("null")

// Call invokes method with params and returns the raw result. A missing or null
// result is returned as the JSON literal null.
func (c *Client) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if c.networks == nil {
		return nil, &ConfigurationError{Reason: "no active network"}
	}
	active := c.networks.Active()
	if active.RPCURL == "" {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("network %q has no rpc url", active.ID)}
	}
	if params == nil {
		params = []any{}
	}

	start := time.Now()
	c.metrics.IncRPCInFlight()
	defer c.metrics.DecRPCInFlight()

	result, err := c.callWithRetry(ctx, active, method, params)
	c.metrics.RecordRPCCall(method, err, time.Since(start).Seconds())
	return result, err
}

// CallResult invokes method and decodes its result into out.
func (c *Client) CallResult(ctx context.Context, method string, params []any, out any) error {
	raw, err := c.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) callWithRetry(ctx context.Context, active network.Config, method string, params []any) (json.RawMessage, error) {
	var (
		lastErr  error
		attempts int
	)
	for attempts = 1; attempts <= c.maxAttempts; attempts++ {
		result, err := c.attempt(ctx, active.RPCURL, method, params)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempts == c.maxAttempts {
			break
		}
		c.log.Warnw("rpc attempt failed, retrying",
			"method", method,
			"network", active.ID,
			"attempt", attempts,
			"error", err,
		)
		c.metrics.IncRPCRetry(method)
		if err := c.sleep(ctx, time.Duration(attempts)*c.backoff); err != nil {
			return nil, &RequestFailedError{Method: method, Attempts: attempts, Err: err}
		}
	}

	var rpcErr *RPCError
	if errors.As(lastErr, &rpcErr) {
		rpcErr.Attempts = attempts
		return nil, rpcErr
	}
	return nil, &RequestFailedError{Method: method, Attempts: attempts, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, url, method string, params []any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	raw, err := c.transport.Post(ctx, url, body)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		return nil, newRPCError(resp.Error)
	}
	if len(resp.Result) == 0 {
		return null, nil
	}
	return resp.Result, nil
}

// nextID returns a millisecond timestamp, bumped when needed so ids never repeat.
func (c *Client) nextID() uint64 {
	now := uint64(time.Now().UnixMilli())
	for {
		prev := c.lastID.Load()
		id := now
		if id <= prev {
			id = prev + 1
		}
		if c.lastID.CompareAndSwap(prev, id) {
			return id
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
