package core

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// SchedulerState is the scheduler loop's own lifecycle, distinct from any
// one trigger's state.
type SchedulerState int

const (
	StateInitialized SchedulerState = iota
	StateStarted
	StateStandby
	StateShuttingDown
	StateShutdown
)

func (s SchedulerState) String() string {
	switch s {
	case StateInitialized:
		return "INITIALIZED"
	case StateStarted:
		return "STARTED"
	case StateStandby:
		return "STANDBY"
	case StateShuttingDown:
		return "SHUTTING_DOWN"
	case StateShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

const (
	defaultIdleWaitTime     = 30 * time.Second
	defaultBatchTimeWindow  = 0 * time.Second
	defaultMaxBatchSize     = 1
	defaultMisfireThreshold = 5 * time.Second
	defaultWorkerPoolSize   = 10
)

// SchedulerConfig holds the loop's tunables, each with its own default.
type SchedulerConfig struct {
	IdleWaitTime     time.Duration
	BatchTimeWindow  time.Duration
	MaxBatchSize     int
	MisfireThreshold time.Duration
	WorkerPoolSize   int
	Logger           Logger
	Clock            Clock
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.IdleWaitTime <= 0 {
		c.IdleWaitTime = defaultIdleWaitTime
	}
	if c.BatchTimeWindow < 0 {
		c.BatchTimeWindow = defaultBatchTimeWindow
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = defaultMaxBatchSize
	}
	if c.MisfireThreshold <= 0 {
		c.MisfireThreshold = defaultMisfireThreshold
	}
	if c.WorkerPoolSize <= 0 {
		c.WorkerPoolSize = defaultWorkerPoolSize
	}
	if c.Logger == nil {
		c.Logger = NopLogger()
	}
	if c.Clock == nil {
		c.Clock = GetDefaultClock()
	}
	return c
}

// Scheduler is the single dedicated loop that acquires due triggers from
// the store, waits out their remaining time, and submits them to the
// worker pool. One Scheduler owns exactly one RAMJobStore.
type Scheduler struct {
	cfg      SchedulerConfig
	store    *RAMJobStore
	pool     *WorkerPool
	listener *ListenerManager
	signal   *signaler

	mu    sync.Mutex
	state SchedulerState

	locked atomic.Bool

	runningMu sync.Mutex
	running   map[*JobContext]struct{}

	shutdownCh chan struct{}
	doneCh     chan struct{}
}

// NewScheduler builds a Scheduler ready to Start.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	cfg = cfg.withDefaults()
	sched := &Scheduler{
		cfg:        cfg,
		store:      NewRAMJobStore(),
		pool:       NewWorkerPool(cfg.WorkerPoolSize),
		listener:   NewListenerManager(),
		signal:     newSignaler(),
		state:      StateInitialized,
		running:    make(map[*JobContext]struct{}),
		shutdownCh: make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	sched.store.SetUnblockSignal(sched.signal.signal)
	return sched
}

// Listeners exposes the listener manager so callers can register trigger,
// job and scheduler listeners before or after Start.
func (s *Scheduler) Listeners() *ListenerManager { return s.listener }

// Store exposes the underlying job store for read-only introspection
// (GetJob, GetTrigger, JobKeys, ...).
func (s *Scheduler) Store() *RAMJobStore { return s.store }

// Start transitions INITIALIZED -> STARTED and runs the loop on its own
// goroutine. Calling Start twice returns ErrSchedulerRunning.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateStarted || s.state == StateStandby {
		s.mu.Unlock()
		return ErrSchedulerRunning
	}
	if s.state == StateShuttingDown || s.state == StateShutdown {
		s.mu.Unlock()
		return ErrSchedulerShutdown
	}
	s.state = StateStarted
	s.mu.Unlock()

	for _, l := range s.listener.schedulerListeners() {
		notify(s.cfg.Logger, "SchedulerStarted", l.SchedulerStarted)
	}

	go s.loop(ctx)
	return nil
}

// Shutdown sets state to SHUTTING_DOWN, wakes the loop, and returns once the
// loop has exited. waitForCompletion controls whether in-flight worker
// executions are joined or merely asked to stop cooperatively.
func (s *Scheduler) Shutdown(waitForCompletion bool) {
	s.mu.Lock()
	if s.state == StateShuttingDown || s.state == StateShutdown {
		s.mu.Unlock()
		return
	}
	wasStarted := s.state == StateStarted || s.state == StateStandby
	s.state = StateShuttingDown
	s.mu.Unlock()

	close(s.shutdownCh)
	if wasStarted {
		<-s.doneCh
	}

	if !waitForCompletion {
		s.interruptAll()
	}
	s.pool.Shutdown(waitForCompletion)

	s.mu.Lock()
	s.state = StateShutdown
	s.mu.Unlock()

	for _, l := range s.listener.schedulerListeners() {
		notify(s.cfg.Logger, "SchedulerShutdown", l.SchedulerShutdown)
	}
}

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LockScheduler sets the global pause flag: the loop keeps advancing
// trigger times but stops submitting executions.
func (s *Scheduler) LockScheduler() { s.locked.Store(true) }

// UnlockScheduler clears the global pause flag and wakes the loop.
func (s *Scheduler) UnlockScheduler() {
	s.locked.Store(false)
	s.signal.signal()
}

// IsLocked reports the global pause flag.
func (s *Scheduler) IsLocked() bool { return s.locked.Load() }

// AddJob stores a job, replacing any existing job with the same key.
func (s *Scheduler) AddJob(detail JobDetail) error {
	if err := s.store.StoreJob(detail, true); err != nil {
		return err
	}
	for _, l := range s.listener.schedulerListeners() {
		d := detail
		notify(s.cfg.Logger, "JobAdded", func() { l.JobAdded(&d) })
	}
	return nil
}

// RemoveJob removes a job and all its triggers.
func (s *Scheduler) RemoveJob(key JobKey) bool {
	removed := s.store.RemoveJob(key)
	if removed {
		for _, l := range s.listener.schedulerListeners() {
			notify(s.cfg.Logger, "JobRemoved", func() { l.JobRemoved(key) })
		}
	}
	return removed
}

// AddTrigger stores a trigger, replacing any existing trigger with the same
// key, and wakes the loop so an earlier-than-expected fire is noticed.
func (s *Scheduler) AddTrigger(t Trigger) error {
	if err := s.store.StoreTrigger(t, true); err != nil {
		return err
	}
	for _, l := range s.listener.schedulerListeners() {
		notify(s.cfg.Logger, "JobScheduled", func() { l.JobScheduled(t) })
	}
	s.signal.signal()
	return nil
}

// RemoveTrigger removes a trigger by key.
func (s *Scheduler) RemoveTrigger(key TriggerKey) bool {
	removed := s.store.RemoveTrigger(key)
	if removed {
		for _, l := range s.listener.schedulerListeners() {
			notify(s.cfg.Logger, "JobUnscheduled", func() { l.JobUnscheduled(key) })
		}
	}
	return removed
}

// PauseJob / ResumeJob / PauseTrigger / ResumeTrigger pass straight through
// to the store; exposed on Scheduler so callers have one entry point.
func (s *Scheduler) PauseJob(key JobKey) bool { return s.store.PauseJob(key) }

func (s *Scheduler) ResumeJob(key JobKey) bool {
	ok := s.store.ResumeJob(key)
	s.signal.signal()
	return ok
}

func (s *Scheduler) PauseTrigger(key TriggerKey) bool { return s.store.PauseTrigger(key) }

func (s *Scheduler) ResumeTrigger(key TriggerKey) bool {
	ok := s.store.ResumeTrigger(key)
	s.signal.signal()
	return ok
}

// GetAllJobKeys returns every currently stored job key.
func (s *Scheduler) GetAllJobKeys() []JobKey {
	keys := s.store.JobKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// IsJobRunning reports whether any execution of key is currently in flight.
func (s *Scheduler) IsJobRunning(key JobKey) bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	for ctx := range s.running {
		if ctx.JobKey == key {
			return true
		}
	}
	return false
}

// StopJob sets the interrupt flag on every in-flight execution of key whose
// data map matches (dataKey, dataValue) when dataKey is non-empty (spec
// §4.F "Interruption"). Matching is case-insensitive on string values.
func (s *Scheduler) StopJob(key JobKey, dataKey, dataValue string) int {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	stopped := 0
	for ctx := range s.running {
		if ctx.JobKey != key {
			continue
		}
		if dataKey != "" && !dataMatches(ctx.Data, dataKey, dataValue) {
			continue
		}
		ctx.Interrupt()
		stopped++
	}
	return stopped
}

func dataMatches(data JobDataMap, key, value string) bool {
	v, ok := data[key]
	if !ok {
		return false
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.EqualFold(s, value)
}

func (s *Scheduler) registerExecution(ctx *JobContext) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	s.running[ctx] = struct{}{}
}

func (s *Scheduler) unregisterExecution(ctx *JobContext) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	delete(s.running, ctx)
}

func (s *Scheduler) interruptAll() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	for ctx := range s.running {
		ctx.Interrupt()
	}
}

// loop is the scheduler thread body. It runs until shutdownCh closes,
// then closes doneCh so Shutdown can proceed.
func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.doneCh)
	r := newRunner(s.store, s.listener, s.cfg.Logger, ctx, s.registerExecution, s.unregisterExecution)

	for {
		select {
		case <-s.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		available := s.pool.Available()
		if available <= 0 {
			if !s.sleepOrWake(s.cfg.IdleWaitTime) {
				return
			}
			continue
		}

		batchSize := available
		if batchSize > s.cfg.MaxBatchSize {
			batchSize = s.cfg.MaxBatchSize
		}

		now := s.cfg.Clock.Now()
		noLaterThan := now.Add(s.cfg.IdleWaitTime)
		candidates := s.store.AcquireNextTriggers(noLaterThan, batchSize, s.cfg.BatchTimeWindow)

		if len(candidates) == 0 {
			if !s.sleepOrWake(s.cfg.IdleWaitTime) {
				return
			}
			continue
		}

		s.dispatchBatch(ctx, r, candidates)
	}
}

// dispatchBatch waits out each candidate's remaining time (in ascending
// fireTime order, matching acquisition order) and submits it once due, or
// releases it back to NORMAL if shutdown arrives first.
func (s *Scheduler) dispatchBatch(ctx context.Context, r *runner, candidates []Trigger) {
	for _, t := range candidates {
		nf, ok := t.NextFireTime()
		if !ok {
			s.store.ReleaseAcquiredTrigger(t)
			continue
		}
		for wait := nf.Sub(s.cfg.Clock.Now()); wait > 0; wait = nf.Sub(s.cfg.Clock.Now()) {
			if !s.sleepOrWake(wait) {
				s.store.ReleaseAcquiredTrigger(t)
				return
			}
		}

		misfired := s.cfg.Clock.Now().Sub(nf) > s.cfg.MisfireThreshold
		if misfired {
			t.misfired(s.cfg.Clock.Now())
			for _, l := range s.listener.triggerListenersFor(t.Key()) {
				notify(s.cfg.Logger, "TriggerMisfired", func() { l.TriggerMisfired(t) })
			}
		}

		fired := s.store.TriggersFired([]Trigger{t})
		locked := s.locked.Load()
		for _, result := range fired {
			result := result
			if !s.pool.Submit(func() { r.run(result, locked) }) {
				// pool saturated between Available() and Submit(): treat as a
				// caller-must-not-call-it violation that the fired trigger
				// still needs to settle from.
				s.cfg.Logger.Warningf("job %s: %v", result.Job.Key, ErrPoolExhausted)
				s.store.TriggeredJobComplete(result.Trigger, result.Job.Key, CompletionNoOp)
			}
		}
	}
}

// sleepOrWake blocks for d, or until the loop is signaled or asked to shut
// down, whichever comes first. Returns false if shutdown was observed.
func (s *Scheduler) sleepOrWake(d time.Duration) bool {
	timer := s.cfg.Clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.shutdownCh:
		return false
	case <-s.signal.channel():
		return true
	case <-timer.C():
		return true
	}
}
