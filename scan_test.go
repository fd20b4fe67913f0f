package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func TestScan_EmitsRunningAccumulator(t *testing.T) {
	src := reactor.Just(1, 2, 3, 4, 5)
	sums := reactor.Scan(src, 0, func(acc, v int) int { return acc + v })

	values, err := collect(t, sums)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 6, 10, 15}, values)
}

func TestScan_SeedOnlyAffectsItsOwnSubscription(t *testing.T) {
	src := reactor.Just(1, 1, 1)
	seedCalls := 0
	sums := reactor.ScanErr(src, func() int {
		seedCalls++
		return 0
	}, func(acc, v int) (int, error) { return acc + v, nil })

	values, err := collect(t, sums)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, values)
	require.Equal(t, 1, seedCalls)
}
