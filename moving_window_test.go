package reactor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
	"github.com/ygrebnov/reactor/timer"
)

func TestMovingWindow_SnapshotOnceBacklogFilled(t *testing.T) {
	svc := timer.NewWheelWithResolution(5 * time.Millisecond)
	defer svc.Close()

	ch := make(chan int)
	src := reactor.PublisherFunc[int](func(sub reactor.Subscriber[int]) {
		rs := &channelSubscription{ch: ch, sub: sub}
		sub.OnSubscribe(rs)
		go rs.pump()
	})

	windows := reactor.MovingWindow(src, 10*time.Millisecond, 0, 3, svc)

	var mu sync.Mutex
	var snapshots [][]int
	done := make(chan struct{})
	go reactor.Consume(windows, func(s []int) {
		mu.Lock()
		snapshots = append(snapshots, append([]int{}, s...))
		mu.Unlock()
	}, func(error) { close(done) })

	for _, v := range []int{1, 2, 3, 4, 5} {
		ch <- v
		time.Sleep(15 * time.Millisecond)
	}
	close(ch)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for moving window to complete")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, snapshots)
	last := snapshots[len(snapshots)-1]
	require.Len(t, last, 3)
	require.Equal(t, []int{3, 4, 5}, last)
}
