package core

import "sync"

// Matcher is a predicate over a trigger or job key, used to scope listener
// notifications.
type Matcher interface {
	Matches(key any) bool
}

type everythingMatcher struct{}

func (everythingMatcher) Matches(any) bool { return true }

// EverythingMatcher matches every key; the zero-configuration default.
func EverythingMatcher() Matcher { return everythingMatcher{} }

// KeyEqualsMatcher matches one specific key (JobKey or TriggerKey) exactly.
type KeyEqualsMatcher struct{ Key any }

func (m KeyEqualsMatcher) Matches(key any) bool { return m.Key == key }

// TriggerListener observes the fire/veto/misfire/complete lifecycle of a
// trigger. Implementations are invoked synchronously; a panic or
// error inside a listener is recovered, logged, and never aborts the fire.
type TriggerListener interface {
	TriggerFired(t Trigger, ctx *JobContext)
	// TriggerVetoJobExecution lets a listener suppress an otherwise-due
	// fire; returning true skips the job but still advances the trigger.
	TriggerVetoJobExecution(t Trigger, ctx *JobContext) bool
	TriggerMisfired(t Trigger)
	TriggerComplete(t Trigger, code CompletionCode)
}

// JobListener observes a job's execution, independent of which trigger fired it.
type JobListener interface {
	JobToBeExecuted(ctx *JobContext)
	JobExecutionVetoed(ctx *JobContext)
	JobWasExecuted(ctx *JobContext, code CompletionCode, err error)
}

// SchedulerListener observes scheduler-wide lifecycle events.
type SchedulerListener interface {
	SchedulerStarted()
	SchedulerShutdown()
	SchedulerError(err error)
	JobScheduled(t Trigger)
	JobUnscheduled(key TriggerKey)
	JobAdded(d *JobDetail)
	JobRemoved(key JobKey)
	SchedulingDataCleared()
}

// BaseTriggerListener and the other Base*Listener types give callers a
// zero-value-usable embed so they only need to implement the one or two
// methods they care about, the same "small interface, empty embed" shape the
// rest of this package favors over requiring every method to be hand-written.
type BaseTriggerListener struct{}

func (BaseTriggerListener) TriggerFired(Trigger, *JobContext)            {}
func (BaseTriggerListener) TriggerVetoJobExecution(Trigger, *JobContext) bool { return false }
func (BaseTriggerListener) TriggerMisfired(Trigger)                      {}
func (BaseTriggerListener) TriggerComplete(Trigger, CompletionCode)      {}

type BaseJobListener struct{}

func (BaseJobListener) JobToBeExecuted(*JobContext)                     {}
func (BaseJobListener) JobExecutionVetoed(*JobContext)                  {}
func (BaseJobListener) JobWasExecuted(*JobContext, CompletionCode, error) {}

type BaseSchedulerListener struct{}

func (BaseSchedulerListener) SchedulerStarted()           {}
func (BaseSchedulerListener) SchedulerShutdown()          {}
func (BaseSchedulerListener) SchedulerError(error)        {}
func (BaseSchedulerListener) JobScheduled(Trigger)        {}
func (BaseSchedulerListener) JobUnscheduled(TriggerKey)   {}
func (BaseSchedulerListener) JobAdded(*JobDetail)         {}
func (BaseSchedulerListener) JobRemoved(JobKey)           {}
func (BaseSchedulerListener) SchedulingDataCleared()      {}

type matched[L any] struct {
	listener L
	matcher  Matcher
}

// ListenerManager holds copy-on-write lists of the three listener kinds
// Listener lists are copy-on-write, so notification can range
// over a snapshot without holding a lock across user callbacks.
type ListenerManager struct {
	mu       sync.Mutex
	triggers []matched[TriggerListener]
	jobs     []matched[JobListener]
	schedule []SchedulerListener
}

func NewListenerManager() *ListenerManager { return &ListenerManager{} }

func (m *ListenerManager) AddTriggerListener(l TriggerListener, matcher Matcher) {
	if matcher == nil {
		matcher = EverythingMatcher()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make([]matched[TriggerListener], len(m.triggers), len(m.triggers)+1)
	copy(next, m.triggers)
	m.triggers = append(next, matched[TriggerListener]{listener: l, matcher: matcher})
}

func (m *ListenerManager) AddJobListener(l JobListener, matcher Matcher) {
	if matcher == nil {
		matcher = EverythingMatcher()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make([]matched[JobListener], len(m.jobs), len(m.jobs)+1)
	copy(next, m.jobs)
	m.jobs = append(next, matched[JobListener]{listener: l, matcher: matcher})
}

func (m *ListenerManager) AddSchedulerListener(l SchedulerListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make([]SchedulerListener, len(m.schedule), len(m.schedule)+1)
	copy(next, m.schedule)
	m.schedule = append(next, l)
}

func (m *ListenerManager) triggerListenersFor(key TriggerKey) []TriggerListener {
	m.mu.Lock()
	snapshot := m.triggers
	m.mu.Unlock()
	out := make([]TriggerListener, 0, len(snapshot))
	for _, e := range snapshot {
		if e.matcher.Matches(key) {
			out = append(out, e.listener)
		}
	}
	return out
}

func (m *ListenerManager) jobListenersFor(key JobKey) []JobListener {
	m.mu.Lock()
	snapshot := m.jobs
	m.mu.Unlock()
	out := make([]JobListener, 0, len(snapshot))
	for _, e := range snapshot {
		if e.matcher.Matches(key) {
			out = append(out, e.listener)
		}
	}
	return out
}

func (m *ListenerManager) schedulerListeners() []SchedulerListener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedule
}

// notify runs fn for each listener, recovering any panic so one broken
// listener cannot abort the fire or crash the calling goroutine.
func notify(log Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("listener %s panicked: %v", name, r)
		}
	}()
	fn()
}
