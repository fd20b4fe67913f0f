package reactor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

func collect[T any](t *testing.T, p reactor.Publisher[T]) ([]T, error) {
	t.Helper()
	var values []T
	var terminalErr error
	reactor.Consume(p, func(v T) { values = append(values, v) }, func(err error) { terminalErr = err })
	return values, terminalErr
}

func TestMap_AppliesFunction(t *testing.T) {
	src := reactor.Just(1, 2, 3)
	doubled := reactor.Map(src, func(v int) int { return v * 2 })

	values, err := collect(t, doubled)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4, 6}, values)
}

func TestMap_WrapsPanicAsUserError(t *testing.T) {
	src := reactor.Just(1)
	boom := reactor.Map(src, func(int) int { panic("boom") })

	_, err := collect(t, boom)
	require.Error(t, err)
	var opErr *reactor.OperatorError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, reactor.KindUserError, opErr.Kind())
}

func TestMapErr_PropagatesFnError(t *testing.T) {
	sentinel := errors.New("bad value")
	src := reactor.Just(1, 2)
	m := reactor.MapErr(src, func(v int) (int, error) {
		if v == 2 {
			return 0, sentinel
		}
		return v, nil
	})

	values, err := collect(t, m)
	require.Error(t, err)
	var opErr *reactor.OperatorError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, reactor.KindUserError, opErr.Kind())
	require.Equal(t, []int{1}, values)
}
