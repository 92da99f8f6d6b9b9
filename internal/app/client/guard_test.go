package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestGuard_TryAcquire(t *testing.T) {
	g := NewGuard(true)

	assert.True(t, g.TryAcquire())
	assert.True(t, g.InFlight())
	assert.False(t, g.TryAcquire())

	g.Release()
	assert.False(t, g.InFlight())
	assert.True(t, g.TryAcquire())
}

func TestGuard_ConcurrentAcquire(t *testing.T) {
	g := NewGuard(true)
	var acquired atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired.Load())
}

func TestGuard_SetOnline(t *testing.T) {
	g := NewGuard(false)

	assert.False(t, g.SetOnline(false))
	assert.True(t, g.SetOnline(true))
	assert.False(t, g.SetOnline(true))
	assert.True(t, g.Online())
	assert.False(t, g.SetOnline(false))
	assert.False(t, g.Online())
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) set(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func TestConnectivityMonitor_TriggersOnTransition(t *testing.T) {
	pinger := &fakePinger{err: errors.New("down")}
	guard := NewGuard(false)
	var fired atomic.Int32
	m := NewConnectivityMonitor(guard, pinger, time.Hour, func(context.Context) { fired.Add(1) }, slog.Default())
	ctx := context.Background()

	m.tick(ctx)
	assert.False(t, guard.Online())
	assert.Equal(t, int32(0), fired.Load())

	pinger.set(nil)
	m.tick(ctx)
	assert.True(t, guard.Online())
	assert.Equal(t, int32(1), fired.Load())

	m.tick(ctx)
	assert.Equal(t, int32(1), fired.Load())

	pinger.set(errors.New("down again"))
	m.tick(ctx)
	pinger.set(nil)
	m.tick(ctx)
	assert.Equal(t, int32(2), fired.Load())
}

func TestConnectivityMonitor_CheckDoesNotTrigger(t *testing.T) {
	guard := NewGuard(false)
	var fired atomic.Int32
	m := NewConnectivityMonitor(guard, &fakePinger{}, time.Hour, func(context.Context) { fired.Add(1) }, slog.Default())

	online, cameOnline := m.Check(context.Background())
	assert.True(t, online)
	assert.True(t, cameOnline)
	assert.Equal(t, int32(0), fired.Load())
}

func TestConnectivityMonitor_Report(t *testing.T) {
	guard := NewGuard(false)
	var fired atomic.Int32
	m := NewConnectivityMonitor(guard, &fakePinger{}, time.Hour, func(context.Context) { fired.Add(1) }, slog.Default())
	ctx := context.Background()

	m.Report(ctx, true)
	m.Report(ctx, true)
	m.Report(ctx, false)
	m.Report(ctx, true)

	assert.Equal(t, int32(2), fired.Load())
}

func TestConnectivityMonitor_RunStopsOnCancel(t *testing.T) {
	guard := NewGuard(false)
	fired := make(chan struct{}, 1)
	m := NewConnectivityMonitor(guard, &fakePinger{}, 10*time.Millisecond, func(context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("monitor did not report coming online")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
