package poller

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soon-network/soonscan/pkg/network"
)

type emptyError struct{}

func (emptyError) Error() string { return "" }

func waitForState[T any](t *testing.T, p *Poller[T], want State) Snapshot[T] {
	t.Helper()
	var snap Snapshot[T]
	require.Eventually(t, func() bool {
		snap = p.Snapshot()
		return snap.State == want
	}, time.Second, 5*time.Millisecond)
	return snap
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	fetch := func(context.Context) (int, error) { return 1, nil }

	_, err := New("blocks", 0, fetch)
	require.Error(t, err)

	_, err = New[int]("blocks", time.Second, nil)
	require.Error(t, err)

	p, err := New("blocks", time.Second, fetch)
	require.NoError(t, err)
	assert.Equal(t, "blocks", p.Name())
	assert.Equal(t, Idle, p.Snapshot().State)
}

func TestPoller_ReadyReplacesData(t *testing.T) {
	t.Parallel()

	var n atomic.Int64
	p, err := New("blocks", time.Hour, func(context.Context) ([]int64, error) {
		v := n.Add(1)
		return []int64{v}, nil
	})
	require.NoError(t, err)

	require.NoError(t, p.Start(t.Context()))
	defer func() {
		p.Stop()
		p.Wait()
	}()

	snap := waitForState(t, p, Ready)
	assert.Equal(t, []int64{1}, snap.Data)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.UpdatedAt.IsZero())

	p.Trigger()
	require.Eventually(t, func() bool {
		s := p.Snapshot()
		return s.State == Ready && len(s.Data) == 1 && s.Data[0] == 2
	}, time.Second, 5*time.Millisecond)
}

func TestPoller_FailedClearsData(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	p, err := New("transactions", time.Hour, func(context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			return []string{"tx"}, nil
		}
		return nil, errors.New("rpc request getSlot failed after 3 attempts: refused")
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(t.Context()))
	defer p.Stop()

	waitForState(t, p, Ready)
	p.Trigger()

	snap := waitForState(t, p, Failed)
	assert.Nil(t, snap.Data)
	assert.Equal(t, "rpc request getSlot failed after 3 attempts: refused", snap.Error)
}

func TestPoller_ErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		err  error
		want string
	}{
		{
			name: "fixed message",
			opts: []Option{WithErrorMessage("Failed to fetch blockchain data. Please check your network connection.")},
			err:  errors.New("boom"),
			want: "Failed to fetch blockchain data. Please check your network connection.",
		},
		{
			name: "fallback when error has no text",
			opts: []Option{WithFallbackMessage("Failed to fetch blocks")},
			err:  emptyError{},
			want: "Failed to fetch blocks",
		},
		{
			name: "default fallback",
			err:  emptyError{},
			want: defaultErrorMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := New("dashboard", time.Hour, func(context.Context) (int, error) {
				return 0, tt.err
			}, tt.opts...)
			require.NoError(t, err)
			require.NoError(t, p.Start(t.Context()))
			defer p.Stop()

			snap := waitForState(t, p, Failed)
			assert.Equal(t, tt.want, snap.Error)
		})
	}
}

func TestPoller_TicksOnInterval(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	p, err := New("blocks", 10*time.Millisecond, func(context.Context) (int64, error) {
		return calls.Add(1), nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(t.Context()))
	defer p.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPoller_NoFetchAfterStop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	p, err := New("blocks", 10*time.Millisecond, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(t.Context()))

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	p.Stop()
	p.Wait()

	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	p.Trigger()
	assert.Equal(t, after, calls.Load())
}

func TestPoller_DiscardsResultAfterStop(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	p, err := New("blocks", time.Hour, func(context.Context) (string, error) {
		close(entered)
		<-release
		return "late", nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(t.Context()))

	<-entered
	p.Stop()
	close(release)
	p.Wait()

	snap := p.Snapshot()
	assert.Equal(t, Loading, snap.State)
	assert.Empty(t, snap.Data)
}

func TestPoller_StartStopLifecycle(t *testing.T) {
	t.Parallel()

	p, err := New("blocks", time.Hour, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	require.NoError(t, p.Start(t.Context()))
	require.ErrorIs(t, p.Start(t.Context()), ErrAlreadyStarted)

	p.Stop()
	p.Stop()
	p.Wait()
	require.ErrorIs(t, p.Start(t.Context()), ErrStopped)

	idle, err := New("idle", time.Hour, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	idle.Stop()
	idle.Wait()
	assert.Equal(t, Idle, idle.Snapshot().State)
}

func TestPoller_ContextCancelStops(t *testing.T) {
	t.Parallel()

	p, err := New("blocks", time.Hour, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, p.Start(ctx))
	waitForState(t, p, Ready)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for poller to exit")
	}
}

func TestPoller_NetworkChangedRefreshes(t *testing.T) {
	t.Parallel()

	nc := network.NewContext(network.Testnet)
	var calls atomic.Int64
	p, err := New("blocks", time.Hour, func(context.Context) (string, error) {
		calls.Add(1)
		return nc.Active().ID, nil
	})
	require.NoError(t, err)

	unsubscribe := nc.Subscribe(p)
	defer unsubscribe()

	require.NoError(t, p.Start(t.Context()))
	defer p.Stop()
	snap := waitForState(t, p, Ready)
	assert.Equal(t, network.Testnet, snap.Data)

	nc.SetNetworkByID(network.Devnet)
	require.Eventually(t, func() bool {
		s := p.Snapshot()
		return s.State == Ready && s.Data == network.Devnet
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), calls.Load())
}

func TestSnapshot_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Snapshot[[]int]{Name: "blocks", State: Failed, Error: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"blocks","state":"failed","data":null,"error":"boom"}`, string(b))
}
