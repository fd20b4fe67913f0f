package dispatch

import "time"

// synchronous runs every task inline on the caller's goroutine. It is the
// trivial dispatcher variant: ordering across submissions follows the
// caller's own order, and InContext is always true since there is no
// separate worker to be "off" of.
type synchronous struct{}

// NewSynchronous returns a Dispatcher that executes every task inline.
func NewSynchronous() Dispatcher { return synchronous{} }

func (synchronous) Dispatch(t Task) error {
	t()
	return nil
}

func (synchronous) Shutdown(time.Duration) bool { return true }

func (synchronous) InContext() bool { return true }
