package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func TestBroadcast_FansOutToAllSubscribers(t *testing.T) {
	b := reactor.NewBroadcast[int]()

	var a, c []int
	b.Subscribe(reactor.SubscriberFuncs[int]{
		Subscribe: func(sub reactor.Subscription) { sub.Request(reactor.Unbounded) },
		Next:      func(v int) { a = append(a, v) },
	})
	b.Subscribe(reactor.SubscriberFuncs[int]{
		Subscribe: func(sub reactor.Subscription) { sub.Request(reactor.Unbounded) },
		Next:      func(v int) { c = append(c, v) },
	})

	b.BroadcastNext(1)
	b.BroadcastNext(2)
	b.BroadcastComplete()

	require.Equal(t, []int{1, 2}, a)
	require.Equal(t, []int{1, 2}, c)
}

func TestBroadcast_LateSubscriberMissesPastSignals(t *testing.T) {
	b := reactor.NewBroadcast[int]()

	b.BroadcastNext(1) // no subscribers yet, dropped

	var late []int
	b.Subscribe(reactor.SubscriberFuncs[int]{
		Subscribe: func(sub reactor.Subscription) { sub.Request(reactor.Unbounded) },
		Next:      func(v int) { late = append(late, v) },
	})

	b.BroadcastNext(2)
	require.Equal(t, []int{2}, late)
}

func TestBroadcast_SubscribeAfterCompleteSeesImmediateComplete(t *testing.T) {
	b := reactor.NewBroadcast[int]()
	b.BroadcastComplete()

	done := false
	b.Subscribe(reactor.SubscriberFuncs[int]{
		Subscribe: func(sub reactor.Subscription) { sub.Request(reactor.Unbounded) },
		Done:      func() { done = true },
	})
	require.True(t, done)
}
