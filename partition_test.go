package reactor_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func TestPartition_PreservesTotalCount(t *testing.T) {
	const total = 10000
	src := reactor.Range(0, total)
	branches := reactor.Partition(src, 2, func(v int) uint64 { return uint64(v) })

	var mu sync.Mutex
	seen := make(map[int]int)
	var wg sync.WaitGroup
	for _, b := range branches {
		wg.Add(1)
		go func(p reactor.Publisher[int]) {
			defer wg.Done()
			reactor.Consume(p, func(v int) {
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}, nil)
		}(b)
	}
	wg.Wait()

	require.Len(t, seen, total)
	for v, count := range seen {
		require.Equalf(t, 1, count, "value %d observed %d times", v, count)
	}
}

// TestPartition_CancelledBranchDoesNotStallSiblings guards against a
// livelock where a branch cancelled before upstream completes permanently
// pins recomputed upstream demand at zero, starving every sibling branch.
func TestPartition_CancelledBranchDoesNotStallSiblings(t *testing.T) {
	src := reactor.Just(1, 2, 3, 4, 5, 6)
	branches := reactor.Partition(src, 2, nil) // round-robin

	branches[0].Subscribe(reactor.SubscriberFuncs[int]{
		Subscribe: func(sub reactor.Subscription) { sub.Cancel() },
	})

	var values []int
	reactor.Consume(branches[1], func(v int) { values = append(values, v) }, nil)

	require.Equal(t, []int{2, 4, 6}, values)
}

func TestPartition_RoutesByHashDeterministically(t *testing.T) {
	src := reactor.Just(1, 2, 3, 4, 5, 6)
	branches := reactor.Partition(src, 2, func(v int) uint64 { return uint64(v) })

	var evenBranchValues, oddBranchValues []int
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		reactor.Consume(branches[0], func(v int) { evenBranchValues = append(evenBranchValues, v) }, nil)
	}()
	go func() {
		defer wg.Done()
		reactor.Consume(branches[1], func(v int) { oddBranchValues = append(oddBranchValues, v) }, nil)
	}()
	wg.Wait()

	require.Len(t, evenBranchValues, 3)
	require.Len(t, oddBranchValues, 3)
}
