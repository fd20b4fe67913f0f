package reactor

import "sync"

// Broadcast is a hot sink-and-source: BroadcastNext/Error/Complete push
// into every subscriber currently attached; a new subscriber never sees
// signals emitted before it subscribed (spec.md §4.3, §5). The subscriber
// list is copy-on-write — Subscribe/Cancel replace the whole slice under a
// lock, and a push iterates an immutable snapshot taken once per push.
type Broadcast[T any] struct {
	mu          sync.Mutex
	subscribers []*broadcastSubscription[T]
	terminal    bool
}

// NewBroadcast constructs an empty hot Broadcast.
func NewBroadcast[T any]() *Broadcast[T] { return &Broadcast[T]{} }

// Subscribe implements Publisher. Demand accounting is per subscriber:
// BroadcastNext only reaches a subscriber that has outstanding Request.
// Values arriving with no demand on a given subscriber are dropped for
// that subscriber rather than buffered — a hot stream's subscribers are
// expected to keep pace or miss signals, per the "hot stream" glossary
// entry.
func (b *Broadcast[T]) Subscribe(down Subscriber[T]) {
	bs := &broadcastSubscription[T]{broadcast: b, down: down}
	sub := newSubscription(bs, nil)
	bs.sub = sub

	b.mu.Lock()
	if b.terminal {
		b.mu.Unlock()
		down.OnSubscribe(sub)
		down.OnComplete()
		return
	}
	next := make([]*broadcastSubscription[T], len(b.subscribers)+1)
	copy(next, b.subscribers)
	next[len(b.subscribers)] = bs
	b.subscribers = next
	b.mu.Unlock()

	down.OnSubscribe(sub)
}

func (b *Broadcast[T]) remove(target *broadcastSubscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := make([]*broadcastSubscription[T], 0, len(b.subscribers))
	for _, s := range b.subscribers {
		if s != target {
			next = append(next, s)
		}
	}
	b.subscribers = next
}

func (b *Broadcast[T]) snapshot() []*broadcastSubscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribers
}

// BroadcastNext pushes v to every currently-attached subscriber with
// outstanding demand.
func (b *Broadcast[T]) BroadcastNext(v T) {
	for _, s := range b.snapshot() {
		if s.sub.Take(1) {
			s.down.OnNext(v)
		}
	}
}

// BroadcastError pushes a terminal error to every currently-attached
// subscriber and marks the broadcast terminal; later Subscribe calls
// receive an immediate Complete instead of joining a dead stream.
func (b *Broadcast[T]) BroadcastError(err error) {
	b.mu.Lock()
	b.terminal = true
	subs := b.subscribers
	b.subscribers = nil
	b.mu.Unlock()
	for _, s := range subs {
		s.down.OnError(err)
	}
}

// BroadcastComplete pushes Complete to every currently-attached subscriber.
func (b *Broadcast[T]) BroadcastComplete() {
	b.mu.Lock()
	b.terminal = true
	subs := b.subscribers
	b.subscribers = nil
	b.mu.Unlock()
	for _, s := range subs {
		s.down.OnComplete()
	}
}

type broadcastSubscription[T any] struct {
	broadcast *Broadcast[T]
	down      Subscriber[T]
	sub       *subscription
}

func (s *broadcastSubscription[T]) request(n uint64) {}

func (s *broadcastSubscription[T]) cancel() { s.broadcast.remove(s) }
