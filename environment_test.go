package reactor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor"
	"github.com/ygrebnov/reactor/dispatch"
	"github.com/ygrebnov/reactor/metrics"
)

// countingProvider records how many times each named instrument's Add was
// called, just enough to assert DispatchOptions actually reaches a
// dispatcher's instruments rather than being stored and ignored.
type countingProvider struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (p *countingProvider) add(name string, n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counts == nil {
		p.counts = make(map[string]int64)
	}
	p.counts[name]++
}

func (p *countingProvider) get(name string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[name]
}

func (p *countingProvider) Counter(name string, _ ...metrics.InstrumentOption) metrics.Counter {
	return countingInstrument{p: p, name: name}
}

func (p *countingProvider) UpDownCounter(name string, _ ...metrics.InstrumentOption) metrics.UpDownCounter {
	return countingInstrument{p: p, name: name}
}

func (p *countingProvider) Histogram(_ string, _ ...metrics.InstrumentOption) metrics.Histogram {
	return countingHistogram{}
}

type countingInstrument struct {
	p    *countingProvider
	name string
}

func (c countingInstrument) Add(n int64) { c.p.add(c.name, n) }

type countingHistogram struct{}

func (countingHistogram) Record(_ float64) {}

func TestEnvironment_DispatchOptionsWireMetricsIntoDispatcher(t *testing.T) {
	provider := &countingProvider{}
	env := reactor.NewEnvironment(reactor.WithMetrics(provider))

	d := dispatch.NewPool(append(env.DispatchOptions(), dispatch.WithWorkerCount(1))...)
	defer d.Shutdown(time.Second)

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, d.Dispatch(func() { wg.Done() }))
	wg.Wait()

	require.Eventually(t, func() bool {
		return provider.get(metrics.DispatcherQueueDepth) != 0
	}, time.Second, time.Millisecond)
}
