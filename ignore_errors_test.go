package reactor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func TestIgnoreErrors_SubstitutesComplete(t *testing.T) {
	upstream := &erroringPublisher{err: errors.New("boom")}
	ignored := reactor.IgnoreErrors[int](upstream)

	values, err := collect(t, ignored)
	require.NoError(t, err)
	require.Equal(t, []int{1}, values)
	require.True(t, upstream.cancelled)
}

// erroringPublisher emits one value then an Error, and records whether its
// Subscription was cancelled afterward.
type erroringPublisher struct {
	err       error
	cancelled bool
}

func (p *erroringPublisher) Subscribe(sub reactor.Subscriber[int]) {
	s := &erroringSubscription{pub: p, sub: sub}
	sub.OnSubscribe(s)
}

type erroringSubscription struct {
	pub *erroringPublisher
	sub reactor.Subscriber[int]
	hit bool
}

func (s *erroringSubscription) Request(n uint64) {
	if s.hit {
		return
	}
	s.hit = true
	s.sub.OnNext(1)
	s.sub.OnError(s.pub.err)
}

func (s *erroringSubscription) Cancel() { s.pub.cancelled = true }
