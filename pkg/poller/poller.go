package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soon-network/soonscan/pkg/metrics"
	"github.com/soon-network/soonscan/pkg/network"
)

const defaultErrorMessage = "fetch failed"

var (
	ErrAlreadyStarted = errors.New("poller already started")
	ErrStopped        = errors.New("poller stopped")
)

// State is the lifecycle state of a poller.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// FetchFunc loads a fresh value for the poller.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Snapshot is a point-in-time copy of a poller's state.
type Snapshot[T any] struct {
	Name      string    `json:"name"`
	State     State     `json:"state"`
	Data      T         `json:"data"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Poller refreshes a value on a fixed interval and on demand.
//
// Idle moves to Loading on Start. Every fetch moves to Loading, then to Ready
// (data replaced wholesale) or Failed (data cleared, message set). Fetches never
// overlap: ticks and triggers arriving during a fetch collapse into one pending
// refresh. After Stop no new fetch is dispatched and the result of a fetch
// still in flight is dropped.
type Poller[T any] struct {
	name            string
	interval        time.Duration
	fetch           FetchFunc[T]
	log             *zap.SugaredLogger
	metrics         *metrics.Metrics // nil if metrics disabled
	errorMessage    string
	fallbackMessage string

	trigger chan struct{}
	stop    chan struct{}
	done    chan struct{}

	mu        sync.RWMutex
	started   bool
	stopped   bool
	state     State
	data      T
	errMsg    string
	updatedAt time.Time
}

// Option configures a Poller.
type Option func(*options)

type options struct {
	log             *zap.SugaredLogger
	metrics         *metrics.Metrics
	errorMessage    string
	fallbackMessage string
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithErrorMessage replaces every fetch error with msg in the Failed state.
func WithErrorMessage(msg string) Option {
	return func(o *options) { o.errorMessage = msg }
}

// WithFallbackMessage is shown in the Failed state when the error has no text.
func WithFallbackMessage(msg string) Option {
	return func(o *options) { o.fallbackMessage = msg }
}

// New creates an idle poller. name labels logs and metrics.
func New[T any](name string, interval time.Duration, fetch FetchFunc[T], opts ...Option) (*Poller[T], error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poller %s: interval must be positive, got %s", name, interval)
	}
	if fetch == nil {
		return nil, fmt.Errorf("poller %s: fetch func is required", name)
	}
	o := options{
		log:             zap.NewNop().Sugar(),
		fallbackMessage: defaultErrorMessage,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Poller[T]{
		name:            name,
		interval:        interval,
		fetch:           fetch,
		log:             o.log,
		metrics:         o.metrics,
		errorMessage:    o.errorMessage,
		fallbackMessage: o.fallbackMessage,
		trigger:         make(chan struct{}, 1),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}, nil
}

// Name returns the poller name.
func (p *Poller[T]) Name() string { return p.name }

// Start performs the first fetch right away and then one per interval until
// Stop is called or ctx is done. ctx is also passed to every fetch.
func (p *Poller[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	switch {
	case p.stopped:
		p.mu.Unlock()
		return ErrStopped
	case p.started:
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.setStateLocked(Loading)
	p.mu.Unlock()

	go p.run(ctx)
	return nil
}

// Stop cancels the timer. It does not wait for an in-flight fetch; use Wait.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stop)
	if !p.started {
		close(p.done)
	}
}

// Wait blocks until the polling goroutine has exited after Stop or ctx cancellation.
func (p *Poller[T]) Wait() {
	<-p.done
}

// Trigger requests an immediate refresh. It never blocks.
func (p *Poller[T]) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// NetworkChanged implements network.Observer.
func (p *Poller[T]) NetworkChanged(cfg network.Config) {
	p.log.Infow("network changed, refreshing",
		"poller", p.name,
		"network", cfg.ID,
	)
	p.Trigger()
}

// Snapshot returns the current state.
func (p *Poller[T]) Snapshot() Snapshot[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot[T]{
		Name:      p.name,
		State:     p.state,
		Data:      p.data,
		Error:     p.errMsg,
		UpdatedAt: p.updatedAt,
	}
}

func (p *Poller[T]) run(ctx context.Context) {
	defer close(p.done)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	p.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-t.C:
		case <-p.trigger:
		}
		p.refresh(ctx)
	}
}

func (p *Poller[T]) refresh(ctx context.Context) {
	p.mu.Lock()
	if p.stopped || ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	p.setStateLocked(Loading)
	p.mu.Unlock()

	start := time.Now()
	data, err := p.fetch(ctx)
	p.metrics.RecordPoll(p.name, err, time.Since(start).Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		p.log.Debugw("discarding result after stop", "poller", p.name)
		return
	}
	p.updatedAt = time.Now()
	if err != nil {
		var zero T
		p.data = zero
		p.errMsg = p.messageFor(err)
		p.setStateLocked(Failed)
		p.log.Warnw("poll failed",
			"poller", p.name,
			"error", err,
		)
		return
	}
	p.data = data
	p.errMsg = ""
	p.setStateLocked(Ready)
}

func (p *Poller[T]) messageFor(err error) string {
	if p.errorMessage != "" {
		return p.errorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return p.fallbackMessage
}

func (p *Poller[T]) setStateLocked(s State) {
	p.state = s
	p.metrics.SetSurfaceState(p.name, int(s))
}
