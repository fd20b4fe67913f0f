package reactor

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// OriginHeader is the reserved header key carrying routing origin metadata,
// pinned by spec.md §6.
const OriginHeader = "x-reactor-origin"

// Envelope wraps a payload with a lazily-assigned unique identifier, a
// case-insensitive header mapping, and an optional reply-to tag. Envelopes
// are used only where routing metadata is required; most operators pass raw
// values (spec.md §3).
type Envelope[T any] struct {
	mu       sync.Mutex
	id       string
	payload  T
	headers  map[string]string
	replyTo  string
	hasReply bool
}

// NewEnvelope wraps payload with empty headers and no reply-to tag. The
// identifier is assigned lazily on first access via ID, using
// github.com/google/uuid — the same ID generator already pulled in by
// juju-juju, linkerd-linkerd2 and nugget-thane-ai-agent.
func NewEnvelope[T any](payload T) *Envelope[T] {
	return &Envelope[T]{payload: payload, headers: make(map[string]string)}
}

// ID returns the envelope's unique identifier, generating it on first call.
func (e *Envelope[T]) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.id == "" {
		e.id = uuid.NewString()
	}
	return e.id
}

// Payload returns the wrapped value.
func (e *Envelope[T]) Payload() T { return e.payload }

// SetHeader sets a header value. Keys are lower-cased on insertion.
func (e *Envelope[T]) SetHeader(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.headers[strings.ToLower(key)] = value
}

// Header looks up a header value. Keys are lower-cased on lookup.
func (e *Envelope[T]) Header(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.headers[strings.ToLower(key)]
	return v, ok
}

// Origin is a convenience accessor for the reserved OriginHeader.
func (e *Envelope[T]) Origin() (string, bool) { return e.Header(OriginHeader) }

// SetReplyTo attaches an optional reply-to tag.
func (e *Envelope[T]) SetReplyTo(tag string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replyTo = tag
	e.hasReply = true
}

// ReplyTo returns the reply-to tag, if one was set.
func (e *Envelope[T]) ReplyTo() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.replyTo, e.hasReply
}

// HeaderSnapshot returns an independent copy of the current header map,
// safe to read without holding the envelope's lock; changing the copy does
// not change the envelope.
func (e *Envelope[T]) HeaderSnapshot() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.headers))
	for k, v := range e.headers {
		out[k] = v
	}
	return out
}
