package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListenerManager_MatcherScopesTriggerNotifications(t *testing.T) {
	m := NewListenerManager()
	var gotA, gotB int

	keyA := NewTriggerKey("a", "")
	keyB := NewTriggerKey("b", "")

	m.AddTriggerListener(triggerFiredFunc(func(Trigger, *JobContext) { gotA++ }), KeyEqualsMatcher{Key: keyA})
	m.AddTriggerListener(triggerFiredFunc(func(Trigger, *JobContext) { gotB++ }), EverythingMatcher())

	listenersForA := m.triggerListenersFor(keyA)
	assert.Len(t, listenersForA, 2)

	listenersForB := m.triggerListenersFor(keyB)
	assert.Len(t, listenersForB, 1)
}

func TestListenerManager_AddIsCopyOnWrite(t *testing.T) {
	m := NewListenerManager()
	m.AddJobListener(BaseJobListener{}, nil)
	snapshotBefore := m.jobs

	m.AddJobListener(BaseJobListener{}, nil)

	assert.Len(t, snapshotBefore, 1, "earlier snapshot must not observe the later append")
	assert.Len(t, m.jobs, 2)
}

func TestListenerManager_NilMatcherDefaultsToEverything(t *testing.T) {
	m := NewListenerManager()
	m.AddTriggerListener(BaseTriggerListener{}, nil)

	out := m.triggerListenersFor(NewTriggerKey("anything", "anygroup"))
	assert.Len(t, out, 1)
}

func TestNotify_RecoversPanicWithoutPropagating(t *testing.T) {
	log := &recordingLogger{}
	assert.NotPanics(t, func() {
		notify(log, "boom-listener", func() { panic("boom") })
	})
	assert.Contains(t, log.lastError, "boom-listener")
}

// triggerFiredFunc adapts a plain func to TriggerListener for tests that only
// care about the TriggerFired callback.
type triggerFiredFunc func(Trigger, *JobContext)

func (f triggerFiredFunc) TriggerFired(t Trigger, ctx *JobContext)       { f(t, ctx) }
func (f triggerFiredFunc) TriggerVetoJobExecution(Trigger, *JobContext) bool { return false }
func (f triggerFiredFunc) TriggerMisfired(Trigger)                       {}
func (f triggerFiredFunc) TriggerComplete(Trigger, CompletionCode)        {}

type recordingLogger struct {
	lastError string
}

func (l *recordingLogger) Debugf(format string, args ...any)    {}
func (l *recordingLogger) Noticef(format string, args ...any)   {}
func (l *recordingLogger) Warningf(format string, args ...any)  {}
func (l *recordingLogger) Criticalf(format string, args ...any) {}
func (l *recordingLogger) Errorf(format string, args ...any) {
	l.lastError = fmt.Sprintf(format, args...)
}
