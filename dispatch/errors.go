package dispatch

import "errors"

// Namespace prefixes sentinel errors, mirroring the teacher's errors.go
// convention of a single namespaced error family.
const Namespace = "dispatch"

var (
	// ErrOverflow is returned by Dispatch when a bounded dispatcher is
	// saturated and its overflow policy is OverflowError.
	ErrOverflow = errors.New(Namespace + ": queue overflow")

	// ErrClosed is returned by Dispatch after Shutdown has been called.
	ErrClosed = errors.New(Namespace + ": dispatcher is shut down")

	// ErrInvalidConfig is returned by constructors given an invalid Config.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)
