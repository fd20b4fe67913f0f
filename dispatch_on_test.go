package reactor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
	"github.com/ygrebnov/reactor/dispatch"
)

func TestDispatchOn_ForwardsAllSignalsThroughDispatcher(t *testing.T) {
	d := dispatch.NewSingleThreaded()
	defer d.Shutdown(time.Second)

	src := reactor.Range(0, 5)
	routed := reactor.DispatchOn(src, d)

	// Signals arrive on the dispatcher's worker goroutine, after Consume
	// has returned, so wait for the terminal before reading values.
	var values []int
	done := make(chan error, 1)
	reactor.Consume(routed, func(v int) { values = append(values, v) }, func(err error) { done <- err })

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatched completion")
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, values)
}

func TestDispatchOn_SurfacesOverflowAsError(t *testing.T) {
	d := dispatch.NewSingleThreaded(dispatch.WithQueueSize(1), dispatch.WithOverflowPolicy(dispatch.OverflowError))
	defer d.Shutdown(time.Second)
	block := make(chan struct{})
	defer close(block)

	// Occupy the worker (or the single queue slot) so the source's values
	// cannot all be accepted.
	require.NoError(t, d.Dispatch(func() { <-block }))

	src := reactor.Range(0, 1000)
	routed := reactor.DispatchOn(src, d)

	_, err := collect(t, routed)
	var opErr *reactor.OperatorError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, reactor.KindOverflow, opErr.Kind())
}
