package reactor

// Just returns a cold Publisher that emits the given values in order, then
// completes. Each Subscribe gets its own independent replay.
func Just[T any](values ...T) Publisher[T] {
	return From(values)
}

// From returns a cold Publisher that emits every element of values in
// order, then completes.
func From[T any](values []T) Publisher[T] {
	return PublisherFunc[T](func(sub Subscriber[T]) {
		cp := make([]T, len(values))
		copy(cp, values)
		rs := &replaySubscription[T]{values: cp, down: sub}
		sub.OnSubscribe(rs)
	})
}

// Range returns a cold Publisher emitting the count consecutive integers
// starting at start, then completing.
func Range(start, count int) Publisher[int] {
	if count < 0 {
		panic("reactor: Range count must be non-negative")
	}
	values := make([]int, count)
	for i := 0; i < count; i++ {
		values[i] = start + i
	}
	return From(values)
}
