package viewer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvview/internal/testutil"
	"github.com/leapstack-labs/csvview/pkg/core"
)

func TestRegistry_GetCreatesAndStartsOnce(t *testing.T) {
	var loads atomic.Int32
	loader := LoaderFunc(func(context.Context, core.DatasetID) ([]core.Row, error) {
		loads.Add(1)
		return testutil.Rows(1), nil
	})

	reg := NewRegistry(func(string) *Controller {
		return New(Config{Loader: loader})
	}, time.Minute, testutil.NewTestLogger(t))

	a := reg.Get("a")
	b := reg.Get("a")
	assert.Same(t, a, b)
	assert.Equal(t, 1, reg.Len())

	require.Eventually(t, func() bool { return !a.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), loads.Load())

	other := reg.Get("b")
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_WaitDrainsEverySession(t *testing.T) {
	loader := newGatedLoader()
	reg := NewRegistry(func(string) *Controller {
		return New(Config{Loader: loader, Logger: testutil.NewTestLogger(t)})
	}, time.Minute, testutil.NewTestLogger(t))

	a := reg.Get("a")
	a.SelectDataset(core.DatasetMerged)
	reg.Get("b")

	waited := make(chan struct{})
	go func() {
		reg.Wait()
		close(waited)
	}()

	// Sessions a and b both start on google; a also has a merged load pending.
	loader.resolve(core.DatasetGoogle, testutil.Rows(1), nil)
	loader.resolve(core.DatasetMerged, testutil.Rows(2), nil)
	select {
	case <-waited:
		t.Fatal("Wait returned with a google load still pending")
	case <-time.After(20 * time.Millisecond):
	}

	loader.resolve(core.DatasetGoogle, testutil.Rows(1), nil)
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after every load resolved")
	}
	assert.False(t, a.Snapshot().Loading)
}

func TestRegistry_Sweep(t *testing.T) {
	reg := NewRegistry(func(string) *Controller {
		return New(Config{Loader: staticLoader(nil, nil)})
	}, time.Minute, nil)

	reg.Get("idle")
	_, ok := reg.Lookup("idle")
	require.True(t, ok)

	assert.Equal(t, 0, reg.Sweep(time.Now()))
	assert.Equal(t, 1, reg.Sweep(time.Now().Add(2*time.Minute)))

	_, ok = reg.Lookup("idle")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	reg := NewRegistry(func(string) *Controller { return New(Config{}) }, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Run(ctx, 10*time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
