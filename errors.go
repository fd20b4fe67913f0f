package reactor

import (
	"errors"
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Namespace prefixes every sentinel error message, mirroring the teacher's
// convention of a single namespaced error family.
const Namespace = "reactor"

// Kind classifies the error taxonomy of §7: ProtocolViolation, IllegalArgument,
// UserError, Timeout, Overflow and Fatal. Kind is attached to every error the
// engine surfaces downstream via errors.As, so callers can branch on failure
// class without string matching.
type Kind int

const (
	// KindProtocolViolation covers negative/zero request, double terminal,
	// or onNext delivered after a terminal signal.
	KindProtocolViolation Kind = iota
	// KindIllegalArgument covers invalid construction-time arguments.
	KindIllegalArgument
	// KindUserError wraps a panic or error raised by user-supplied code.
	KindUserError
	// KindTimeout covers a bounded wait that was not satisfied in time.
	KindTimeout
	// KindOverflow covers dispatcher queue saturation.
	KindOverflow
	// KindFatal covers an internal invariant violation.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindProtocolViolation:
		return "ProtocolViolation"
	case KindIllegalArgument:
		return "IllegalArgument"
	case KindUserError:
		return "UserError"
	case KindTimeout:
		return "Timeout"
	case KindOverflow:
		return "Overflow"
	case KindFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// OperatorError is the concrete error type surfaced on an edge's Error signal.
// It carries the offending operator's name and the signal Kind, and unwraps to
// the underlying cause. Modeled on the teacher's error_tagging.go
// taskTaggedError, generalized from task-correlation metadata to
// operator-identity metadata.
type OperatorError struct {
	kind     Kind
	operator string
	cause    error
}

// newOperatorError wraps cause with operator identity using errorc, the same
// dependency the teacher uses for its own error construction.
func newOperatorError(kind Kind, operator string, cause error) *OperatorError {
	wrapped := errorc.Wrap(cause, fmt.Sprintf("%s: operator %q", Namespace, operator))
	return &OperatorError{kind: kind, operator: operator, cause: wrapped}
}

func (e *OperatorError) Error() string { return e.cause.Error() }
func (e *OperatorError) Unwrap() error { return e.cause }

// Kind reports the error taxonomy class.
func (e *OperatorError) Kind() Kind { return e.kind }

// Operator reports the name of the operator that raised the error.
func (e *OperatorError) Operator() string { return e.operator }

// Is supports errors.Is(err, ErrTimeout) style sentinel checks by Kind.
func (e *OperatorError) Is(target error) bool {
	var other *OperatorError
	if errors.As(target, &other) {
		return e.kind == other.kind
	}
	return false
}

var (
	// ErrTimeout is the sentinel Kind-only error usable with errors.Is.
	ErrTimeout = &OperatorError{kind: KindTimeout, cause: errors.New(Namespace + ": timeout")}
	// ErrOverflow is the sentinel Kind-only error usable with errors.Is.
	ErrOverflow = &OperatorError{kind: KindOverflow, cause: errors.New(Namespace + ": overflow")}
	// ErrProtocolViolation is the sentinel Kind-only error usable with errors.Is.
	ErrProtocolViolation = &OperatorError{kind: KindProtocolViolation, cause: errors.New(Namespace + ": protocol violation")}
	// ErrIllegalArgument is the sentinel Kind-only error usable with errors.Is.
	ErrIllegalArgument = &OperatorError{kind: KindIllegalArgument, cause: errors.New(Namespace + ": illegal argument")}
	// ErrFatal is the sentinel Kind-only error usable with errors.Is.
	ErrFatal = &OperatorError{kind: KindFatal, cause: errors.New(Namespace + ": fatal invariant violation")}
)

// wrapUserError wraps a panic recovered from, or an error returned by, a
// user-supplied function. Mirrors the teacher's worker.go panic-to-error
// conversion (w.errors <- fmt.Errorf("task execution panicked: %v", ePanic)),
// generalized to the operator taxonomy and wrapped with errorc.
func wrapUserError(operator string, cause error) error {
	return newOperatorError(KindUserError, operator, cause)
}

// recoverUserFunc runs fn and converts any panic into a KindUserError,
// guaranteeing a panic in user code never unwinds into a dispatcher worker —
// the same invariant the teacher's worker.go enforces with its own recover().
func recoverUserFunc(operator string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = wrapUserError(operator, fmt.Errorf("panic: %v", p))
		}
	}()
	return fn()
}
