package reactor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
	"github.com/ygrebnov/reactor/timer"
)

func TestBuffer_GroupsIntoFixedSizeSlices(t *testing.T) {
	src := reactor.Range(0, 10)
	buffered := reactor.Buffer(src, 3)

	batches, err := collect(t, buffered)
	require.NoError(t, err)
	require.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, {9}}, batches)
}

func TestBuffer_Conservation(t *testing.T) {
	const size = 7
	src := reactor.Range(0, 100)
	buffered := reactor.Buffer(src, size)

	batches, err := collect(t, buffered)
	require.NoError(t, err)

	var flat []int
	for i, b := range batches {
		if i != len(batches)-1 {
			require.Len(t, b, size)
		}
		flat = append(flat, b...)
	}
	require.Len(t, flat, 100)
	for i, v := range flat {
		require.Equal(t, i, v)
	}
}

func TestBufferTimeout_FlushesOnTimeout(t *testing.T) {
	svc := timer.NewWheelWithResolution(5 * time.Millisecond)
	defer svc.Close()

	ch := make(chan int)
	src := reactor.PublisherFunc[int](func(sub reactor.Subscriber[int]) {
		rs := &channelSubscription{ch: ch, sub: sub}
		sub.OnSubscribe(rs)
		go rs.pump()
	})

	buffered := reactor.BufferTimeout(src, 100, 20*time.Millisecond, svc)

	done := make(chan struct{})
	var mu sync.Mutex
	var batches [][]int
	go func() {
		reactor.Consume(buffered, func(b []int) {
			mu.Lock()
			batches = append(batches, b)
			mu.Unlock()
		}, func(error) { close(done) })
	}()

	ch <- 1
	ch <- 2
	// The buffer holds 100, so while the source is still open only the
	// 20ms timer can flush these two values.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, time.Second, time.Millisecond)
	close(ch)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for buffer flush")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, [][]int{{1, 2}}, batches)
}

// channelSubscription feeds a test channel's values through to a
// Subscriber as they arrive, honoring Cancel but not bounding by Request
// (tests drive demand via BufferTimeout's own Unbounded-ish pacing).
type channelSubscription struct {
	ch        chan int
	sub       reactor.Subscriber[int]
	cancelled bool
}

func (c *channelSubscription) pump() {
	for v := range c.ch {
		if c.cancelled {
			return
		}
		c.sub.OnNext(v)
	}
	if !c.cancelled {
		c.sub.OnComplete()
	}
}

func (c *channelSubscription) Request(n uint64) {}
func (c *channelSubscription) Cancel()           { c.cancelled = true }
