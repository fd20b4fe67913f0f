package reactor

// Consume subscribes to upstream with an Unbounded-demand terminal
// subscriber that invokes onNext for every value and onDone once, with the
// terminal error (nil on a clean Complete). This is the common case from
// spec.md §6's `consume` façade entry; use SubscriberFuncs directly for
// anything needing partial demand control.
func Consume[T any](upstream Publisher[T], onNext func(T), onDone func(error)) {
	upstream.Subscribe(SubscriberFuncs[T]{
		Subscribe: func(sub Subscription) { sub.Request(Unbounded) },
		Next:      onNext,
		Err: func(err error) {
			if onDone != nil {
				onDone(err)
			}
		},
		Done: func() {
			if onDone != nil {
				onDone(nil)
			}
		},
	})
}

// ConsumeN is like Consume but issues demand n units at a time instead of
// Unbounded, requesting n more each time its running count of delivered
// values is a multiple of n. Useful for exercising backpressure in tests
// and examples rather than draining a source at full speed.
func ConsumeN[T any](upstream Publisher[T], n uint64, onNext func(T), onDone func(error)) {
	if n == 0 {
		panic("reactor: ConsumeN n must be positive")
	}
	var sub Subscription
	var count uint64
	upstream.Subscribe(SubscriberFuncs[T]{
		Subscribe: func(s Subscription) {
			sub = s
			sub.Request(n)
		},
		Next: func(v T) {
			onNext(v)
			count++
			if count%n == 0 {
				sub.Request(n)
			}
		},
		Err: func(err error) {
			if onDone != nil {
				onDone(err)
			}
		},
		Done: func() {
			if onDone != nil {
				onDone(nil)
			}
		},
	})
}
