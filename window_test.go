package reactor_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func TestWindow_ReduceProducesOneValuePerWindow(t *testing.T) {
	src := reactor.Range(0, 1000)
	windows := reactor.Window(src, 100)

	var mins []int
	var windowCompletions int
	reactor.Consume(windows, func(inner reactor.Publisher[int]) {
		reduced := reactor.Reduce(inner, math.MaxInt, func(acc, v int) int {
			if v < acc {
				return v
			}
			return acc
		})
		reactor.Consume(reduced, func(v int) { mins = append(mins, v) }, func(error) { windowCompletions++ })
	}, nil)

	require.Equal(t, []int{0, 100, 200, 300, 400, 500, 600, 700, 800, 900}, mins)
	require.Equal(t, 10, windowCompletions)
}

func TestWindow_LastWindowCanBePartial(t *testing.T) {
	src := reactor.Range(0, 25)
	windows := reactor.Window(src, 10)

	var sizes []int
	reactor.Consume(windows, func(inner reactor.Publisher[int]) {
		values, err := collect(t, inner)
		require.NoError(t, err)
		sizes = append(sizes, len(values))
	}, nil)

	require.Equal(t, []int{10, 10, 5}, sizes)
}
