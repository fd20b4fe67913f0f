package reactor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
	"github.com/ygrebnov/reactor/timer"
)

func TestSampleFirst_EmitsOnlyFirstPerWindow(t *testing.T) {
	svc := timer.NewWheelWithResolution(5 * time.Millisecond)
	defer svc.Close()

	ch := make(chan int)
	src := reactor.PublisherFunc[int](func(sub reactor.Subscriber[int]) {
		rs := &channelSubscription{ch: ch, sub: sub}
		sub.OnSubscribe(rs)
		go rs.pump()
	})
	sampled := reactor.SampleFirst(src, 20*time.Millisecond, svc)

	var mu sync.Mutex
	var values []int
	done := make(chan struct{})
	go reactor.Consume(sampled, func(v int) {
		mu.Lock()
		values = append(values, v)
		mu.Unlock()
	}, func(error) { close(done) })

	ch <- 1
	ch <- 2
	time.Sleep(25 * time.Millisecond)
	ch <- 3
	close(ch)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 3}, values)
}

func TestTimeout_FiresWhenNoNextArrives(t *testing.T) {
	svc := timer.NewWheelWithResolution(5 * time.Millisecond)
	defer svc.Close()

	ch := make(chan int)
	src := reactor.PublisherFunc[int](func(sub reactor.Subscriber[int]) {
		rs := &channelSubscription{ch: ch, sub: sub}
		sub.OnSubscribe(rs)
		go rs.pump()
	})
	timed := reactor.Timeout(src, 20*time.Millisecond, svc)

	done := make(chan error, 1)
	go reactor.Consume(timed, func(int) {}, func(err error) { done <- err })

	ch <- 1
	select {
	case err := <-done:
		require.Error(t, err)
		var opErr *reactor.OperatorError
		require.ErrorAs(t, err, &opErr)
		require.Equal(t, reactor.KindTimeout, opErr.Kind())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the Timeout operator to fire")
	}
	close(ch)
}
