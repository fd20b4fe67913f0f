package reactor_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func TestMerge_AndMultiplyScenario(t *testing.T) {
	merged := reactor.Merge(reactor.Just("1", "2"), reactor.Just("3", "4", "5"))
	parsed := reactor.MapErr(merged, func(s string) (int, error) { return parseInt(s) })
	product := reactor.Reduce(parsed, 1, func(acc, v int) int { return acc * v })

	values, err := collect(t, product)
	require.NoError(t, err)
	require.Equal(t, []int{120}, values)
}

func TestMerge_CompletesOnlyAfterAllInputsComplete(t *testing.T) {
	merged := reactor.Merge(reactor.Range(0, 3), reactor.Range(10, 3))

	values, err := collect(t, merged)
	require.NoError(t, err)
	require.Len(t, values, 6)

	sort.Ints(values)
	require.Equal(t, []int{0, 1, 2, 10, 11, 12}, values)
}

func TestMerge_EmptyInputListCompletesImmediately(t *testing.T) {
	merged := reactor.Merge[int]()
	values, err := collect(t, merged)
	require.NoError(t, err)
	require.Empty(t, values)
}

func parseInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n, nil
}
