package reactor_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func TestFlatMap_MergesInnerPublishers(t *testing.T) {
	src := reactor.Just(1, 2, 3)
	out := reactor.FlatMap(src, func(v int) reactor.Publisher[int] {
		return reactor.Just(v, v*10)
	})

	values, err := collect(t, out)
	require.NoError(t, err)
	sort.Ints(values)
	require.Equal(t, []int{1, 2, 3, 10, 20, 30}, values)
}

func TestFlatMap_InnerErrorPropagates(t *testing.T) {
	src := reactor.Just(1, 2)
	out := reactor.FlatMap(src, func(v int) reactor.Publisher[int] {
		if v == 2 {
			return &erroringPublisher{err: assertErr}
		}
		return reactor.Just(v)
	})

	_, err := collect(t, out)
	require.Error(t, err)
}

var assertErr = errNotFound("inner failed")

type errNotFound string

func (e errNotFound) Error() string { return string(e) }
