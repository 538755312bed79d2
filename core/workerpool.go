package core

import (
	"sync"

	"golang.org/x/time/rate"
)

// WorkerPool is the bounded dispatch target for fired triggers.
// Availability is tracked with a buffered channel used as a counting
// semaphore: a slot is taken on Submit and returned when the submitted func
// finishes, so Available() never has to inspect running goroutines directly.
type WorkerPool struct {
	slots   chan struct{}
	limiter *rate.Limiter
	wg      sync.WaitGroup

	mu       sync.Mutex
	shutdown bool
}

// NewWorkerPool returns a pool with size worker slots. size must be >= 1.
func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	p := &WorkerPool{slots: make(chan struct{}, size)}
	for i := 0; i < size; i++ {
		p.slots <- struct{}{}
	}
	return p
}

// SetDispatchRateLimit caps how many jobs per second the pool will start,
// guarding against a pathological zero-interval SimpleTrigger saturating
// every worker slot faster than anything can usefully run. A zero or
// negative limit disables the limiter.
func (p *WorkerPool) SetDispatchRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		p.limiter = nil
		return
	}
	p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Available reports how many workers are currently idle. The scheduler loop
// uses this to bound how many triggers it acquires in one pass.
func (p *WorkerPool) Available() int { return len(p.slots) }

// Submit runs fn on a worker goroutine. The caller must not call Submit
// unless a prior Available() > 0: it never blocks if a slot was available,
// but does not guarantee one still is by the time it runs.
func (p *WorkerPool) Submit(fn func()) bool {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	select {
	case <-p.slots:
	default:
		return false
	}

	if p.limiter != nil && !p.limiter.Allow() {
		p.slots <- struct{}{}
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { p.slots <- struct{}{} }()
		fn()
	}()
	return true
}

// Shutdown stops accepting new work. When waitForCompletion is true it
// blocks until every in-flight Submit has returned; otherwise it returns
// immediately and in-flight work is left to notice interruption on its own.
func (p *WorkerPool) Shutdown(waitForCompletion bool) {
	p.mu.Lock()
	p.shutdown = true
	p.mu.Unlock()

	if waitForCompletion {
		p.wg.Wait()
	}
}
