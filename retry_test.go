package reactor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
	"github.com/ygrebnov/reactor/timer"
)

// flakyPublisher fails the first failCount subscriptions, then succeeds.
type flakyPublisher struct {
	failCount int
	attempts  int
}

func (p *flakyPublisher) Subscribe(sub reactor.Subscriber[int]) {
	p.attempts++
	if p.attempts <= p.failCount {
		sub.OnSubscribe(&failFastSubscription{sub: sub})
		return
	}
	reactor.Just(1, 2, 3).Subscribe(sub)
}

var errAttemptFailed = errors.New("attempt failed")

// failFastSubscription fails on its first Request without ever delivering
// a Next, simulating an upstream that errors immediately on each attempt.
type failFastSubscription struct {
	sub reactor.Subscriber[int]
	hit bool
}

func (f *failFastSubscription) Request(n uint64) {
	if f.hit {
		return
	}
	f.hit = true
	f.sub.OnError(errAttemptFailed)
}

func (f *failFastSubscription) Cancel() {}

// runRetry drives retried to completion asynchronously (retries reschedule
// through the timer service, so completion may not land on the calling
// goroutine) and waits up to 2s for a terminal signal.
func runRetry(t *testing.T, retried reactor.Publisher[int]) ([]int, error) {
	t.Helper()
	var values []int
	done := make(chan error, 1)
	retried.Subscribe(reactor.SubscriberFuncs[int]{
		Subscribe: func(sub reactor.Subscription) { sub.Request(reactor.Unbounded) },
		Next:      func(v int) { values = append(values, v) },
		Err:       func(err error) { done <- err },
		Done:      func() { done <- nil },
	})
	select {
	case err := <-done:
		return values, err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retry to terminate")
		return nil, nil
	}
}

func TestRetry_RecoversWithinMaxRetries(t *testing.T) {
	svc := timer.NewWheelWithResolution(time.Millisecond)
	defer svc.Close()

	p := &flakyPublisher{failCount: 2}
	retried := reactor.Retry[int](p, 5, func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}, svc)

	values, err := runRetry(t, retried)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, values)
	require.Equal(t, 3, p.attempts)
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	svc := timer.NewWheelWithResolution(time.Millisecond)
	defer svc.Close()

	p := &flakyPublisher{failCount: 10}
	retried := reactor.Retry[int](p, 2, func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}, svc)

	_, err := runRetry(t, retried)
	require.Error(t, err)
	require.Equal(t, 3, p.attempts) // initial + 2 retries
}
