package reactor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
)

type notFoundError struct{ key string }

func (e *notFoundError) Error() string { return "not found: " + e.key }

func TestWhen_CatchesMatchingErrorType(t *testing.T) {
	upstream := &erroringPublisher{err: &notFoundError{key: "x"}}
	var caught *notFoundError
	handled := reactor.When[int, *notFoundError](upstream, func(e *notFoundError) { caught = e })

	values, err := collect(t, handled)
	require.NoError(t, err)
	require.Equal(t, []int{1}, values)
	require.NotNil(t, caught)
	require.Equal(t, "x", caught.key)
}

func TestWhen_PropagatesNonMatchingErrorType(t *testing.T) {
	sentinel := errors.New("unrelated")
	upstream := &erroringPublisher{err: sentinel}
	handled := reactor.When[int, *notFoundError](upstream, func(*notFoundError) {
		t.Fatal("handler should not run for a non-matching error type")
	})

	_, err := collect(t, handled)
	require.Error(t, err)
}
