package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func TestReduce_EmitsSingleFinalValue(t *testing.T) {
	src := reactor.Just(1, 2, 3, 4, 5)
	sum := reactor.Reduce(src, 0, func(acc, v int) int { return acc + v })

	values, err := collect(t, sum)
	require.NoError(t, err)
	require.Equal(t, []int{15}, values)
}

func TestReduce_MatchesScanLastEmission(t *testing.T) {
	seed, fn := 1, func(acc, v int) int { return acc * v }

	scanned, err := collect(t, reactor.Scan(reactor.Just(1, 2, 3, 4), seed, fn))
	require.NoError(t, err)

	reduced, err := collect(t, reactor.Reduce(reactor.Just(1, 2, 3, 4), seed, fn))
	require.NoError(t, err)

	require.Equal(t, scanned[len(scanned)-1], reduced[0])
}
