package reactor

import "sync"

// downstreamGate is the per-edge delivery guard shared by every operator in
// the family. It enforces two invariants from spec.md §3/§4.1:
//
//   - exactly one terminal signal (Error or Complete) is ever delivered, and
//     no Next is delivered after it;
//   - an operator never recursively re-enters OnNext on its own downstream
//     from within a call it is already making to that downstream (the "rule
//     of non-reentrance"). Nested emissions — e.g. a downstream Request
//     call that synchronously triggers more upstream Next signals which
//     loop back into this same gate — are queued to a depth-1 pending list
//     and drained iteratively by the outermost frame, per the trampoline
//     design note.
type downstreamGate[Out any] struct {
	sub      Subscriber[Out]
	mu       sync.Mutex
	emitting bool
	pending  []func()
	terminal bool
}

func newDownstreamGate[Out any](sub Subscriber[Out]) *downstreamGate[Out] {
	return &downstreamGate[Out]{sub: sub}
}

// run executes fn now if no frame is currently emitting on this gate,
// otherwise appends it to the pending queue for the outermost frame to
// drain.
func (g *downstreamGate[Out]) run(fn func()) {
	g.mu.Lock()
	if g.emitting {
		g.pending = append(g.pending, fn)
		g.mu.Unlock()
		return
	}
	g.emitting = true
	g.mu.Unlock()

	fn()

	for {
		g.mu.Lock()
		if len(g.pending) == 0 {
			g.emitting = false
			g.mu.Unlock()
			return
		}
		next := g.pending[0]
		g.pending = g.pending[1:]
		g.mu.Unlock()
		next()
	}
}

// isTerminal reports whether a terminal has already been delivered (or is
// queued to be). Checked under mu by callers that need a consistent
// snapshot before deciding to emit.
func (g *downstreamGate[Out]) isTerminal() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.terminal
}

func (g *downstreamGate[Out]) markTerminal() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.terminal {
		return false
	}
	g.terminal = true
	return true
}

// Next delivers v downstream unless a terminal has already fired.
func (g *downstreamGate[Out]) Next(v Out) {
	if g.isTerminal() {
		return
	}
	g.run(func() {
		if !g.isTerminal() {
			g.sub.OnNext(v)
		}
	})
}

// Error delivers err downstream exactly once.
func (g *downstreamGate[Out]) Error(err error) {
	if !g.markTerminal() {
		return
	}
	g.run(func() { g.sub.OnError(err) })
}

// Complete delivers completion downstream exactly once.
func (g *downstreamGate[Out]) Complete() {
	if !g.markTerminal() {
		return
	}
	g.run(func() { g.sub.OnComplete() })
}
