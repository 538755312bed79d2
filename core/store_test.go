package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/core"
)

func newTestJob(t *testing.T, name string, durable, exclusive bool) core.JobDetail {
	t.Helper()
	return core.JobDetail{
		Key:                         core.NewJobKey(name, ""),
		Factory:                     func() core.Job { return nil },
		Durable:                     durable,
		DisallowConcurrentExecution: exclusive,
	}
}

func TestRAMJobStore_StoreTriggerRequiresExistingJob(t *testing.T) {
	store := core.NewRAMJobStore()
	trig, err := core.NewSimpleTrigger(core.NewTriggerKey("t1", ""), core.NewJobKey("missing", ""), time.Now(), time.Second, 0)
	require.NoError(t, err)
	require.ErrorIs(t, store.StoreTrigger(trig, true), core.ErrJobNotFound)
}

func TestRAMJobStore_StoreJobReplaceSemantics(t *testing.T) {
	store := core.NewRAMJobStore()
	job := newTestJob(t, "j1", true, false)
	require.NoError(t, store.StoreJob(job, false))
	require.ErrorIs(t, store.StoreJob(job, false), core.ErrJobAlreadyExists)

	job.Description = "updated"
	require.NoError(t, store.StoreJob(job, true))
	got, ok := store.GetJob(job.Key)
	require.True(t, ok)
	assert.Equal(t, "updated", got.Description)
}

func TestRAMJobStore_AcquireNextTriggersOrdersByFireTimeThenPriority(t *testing.T) {
	store := core.NewRAMJobStore()
	base := mustTime(t, "2024-01-01T00:00:00Z")

	require.NoError(t, store.StoreJob(newTestJob(t, "j1", true, false), true))

	low, err := core.NewSimpleTrigger(core.NewTriggerKey("low", ""), core.NewJobKey("j1", ""), base, 0, 0)
	require.NoError(t, err)
	low.SetPriority(1)

	high, err := core.NewSimpleTrigger(core.NewTriggerKey("high", ""), core.NewJobKey("j1", ""), base, 0, 0)
	require.NoError(t, err)
	high.SetPriority(5)

	later, err := core.NewSimpleTrigger(core.NewTriggerKey("later", ""), core.NewJobKey("j1", ""), base.Add(time.Minute), 0, 0)
	require.NoError(t, err)

	require.NoError(t, store.StoreTrigger(low, true))
	require.NoError(t, store.StoreTrigger(high, true))
	require.NoError(t, store.StoreTrigger(later, true))

	acquired := store.AcquireNextTriggers(base, 10, 0)
	require.Len(t, acquired, 2)
	assert.Equal(t, "high", acquired[0].Key().Name)
	assert.Equal(t, "low", acquired[1].Key().Name)
}

func TestRAMJobStore_AcquireSkipsBlockedSiblingOfNonConcurrentJob(t *testing.T) {
	store := core.NewRAMJobStore()
	base := mustTime(t, "2024-01-01T00:00:00Z")
	require.NoError(t, store.StoreJob(newTestJob(t, "exclusive", true, true), true))

	a, err := core.NewSimpleTrigger(core.NewTriggerKey("a", ""), core.NewJobKey("exclusive", ""), base, 0, 0)
	require.NoError(t, err)
	b, err := core.NewSimpleTrigger(core.NewTriggerKey("b", ""), core.NewJobKey("exclusive", ""), base, 0, 0)
	require.NoError(t, err)
	require.NoError(t, store.StoreTrigger(a, true))
	require.NoError(t, store.StoreTrigger(b, true))

	firstBatch := store.AcquireNextTriggers(base, 1, 0)
	require.Len(t, firstBatch, 1)
	fired := store.TriggersFired(firstBatch)
	require.Len(t, fired, 1)

	// The job is now blocked; the other trigger, even though due, must not
	// be handed out while an execution for this job is outstanding.
	secondBatch := store.AcquireNextTriggers(base, 10, 0)
	assert.Empty(t, secondBatch)

	store.TriggeredJobComplete(fired[0].Trigger, fired[0].Job.Key, core.CompletionSuccess)
	thirdBatch := store.AcquireNextTriggers(base, 10, 0)
	assert.Len(t, thirdBatch, 1)
}

func TestRAMJobStore_AcquireNeverSelectsTwoSiblingsOfNonConcurrentJobInOneScan(t *testing.T) {
	store := core.NewRAMJobStore()
	base := mustTime(t, "2024-01-01T00:00:00Z")
	require.NoError(t, store.StoreJob(newTestJob(t, "exclusive", true, true), true))

	a, err := core.NewSimpleTrigger(core.NewTriggerKey("a", ""), core.NewJobKey("exclusive", ""), base, 0, 0)
	require.NoError(t, err)
	b, err := core.NewSimpleTrigger(core.NewTriggerKey("b", ""), core.NewJobKey("exclusive", ""), base, 0, 0)
	require.NoError(t, err)
	require.NoError(t, store.StoreTrigger(a, true))
	require.NoError(t, store.StoreTrigger(b, true))

	// Both triggers are due and NORMAL; job.blocked is not yet set since
	// neither has fired. A batch size above 1 must still not hand out both
	// siblings of the same non-concurrent job in a single scan.
	batch := store.AcquireNextTriggers(base, 10, 0)
	require.Len(t, batch, 1)
}

func TestRAMJobStore_TriggeredJobCompleteRemovesFinishedTriggerAndOrphanedJob(t *testing.T) {
	store := core.NewRAMJobStore()
	base := mustTime(t, "2024-01-01T00:00:00Z")
	require.NoError(t, store.StoreJob(newTestJob(t, "once", false, false), true))

	trig, err := core.NewSimpleTrigger(core.NewTriggerKey("once", ""), core.NewJobKey("once", ""), base, 0, 0)
	require.NoError(t, err)
	require.NoError(t, store.StoreTrigger(trig, true))

	acquired := store.AcquireNextTriggers(base, 10, 0)
	require.Len(t, acquired, 1)
	fired := store.TriggersFired(acquired)
	require.Len(t, fired, 1)
	assert.Equal(t, core.StateComplete, fired[0].Trigger.State())

	store.TriggeredJobComplete(fired[0].Trigger, fired[0].Job.Key, core.CompletionSuccess)

	_, stillThere := store.GetTrigger(trig.Key())
	assert.False(t, stillThere)
	assert.Equal(t, 0, store.JobCount())
}

func TestRAMJobStore_TriggeredJobCompleteSignalsOnlyWhenItUnblocksASibling(t *testing.T) {
	store := core.NewRAMJobStore()
	base := mustTime(t, "2024-01-01T00:00:00Z")
	require.NoError(t, store.StoreJob(newTestJob(t, "exclusive", true, true), true))

	a, err := core.NewSimpleTrigger(core.NewTriggerKey("a", ""), core.NewJobKey("exclusive", ""), base, time.Hour, 0)
	require.NoError(t, err)
	b, err := core.NewSimpleTrigger(core.NewTriggerKey("b", ""), core.NewJobKey("exclusive", ""), base, time.Hour, 0)
	require.NoError(t, err)
	require.NoError(t, store.StoreTrigger(a, true))
	require.NoError(t, store.StoreTrigger(b, true))

	signals := 0
	store.SetUnblockSignal(func() { signals++ })

	acquired := store.AcquireNextTriggers(base, 10, 0)
	require.Len(t, acquired, 1)
	fired := store.TriggersFired(acquired)
	require.Len(t, fired, 1)

	// The job is now blocked, so completing it must fire the unblock signal
	// for its waiting sibling.
	store.TriggeredJobComplete(fired[0].Trigger, fired[0].Job.Key, core.CompletionSuccess)
	assert.Equal(t, 1, signals)

	// A second completion of an already-unblocked job must not signal again.
	store.TriggeredJobComplete(fired[0].Trigger, fired[0].Job.Key, core.CompletionSuccess)
	assert.Equal(t, 1, signals)
}

func TestRAMJobStore_RemoveJobCascadesTriggers(t *testing.T) {
	store := core.NewRAMJobStore()
	require.NoError(t, store.StoreJob(newTestJob(t, "j1", true, false), true))
	trig, err := core.NewSimpleTrigger(core.NewTriggerKey("t1", ""), core.NewJobKey("j1", ""), time.Now(), time.Second, 0)
	require.NoError(t, err)
	require.NoError(t, store.StoreTrigger(trig, true))

	assert.True(t, store.RemoveJob(core.NewJobKey("j1", "")))
	_, ok := store.GetTrigger(trig.Key())
	assert.False(t, ok)
}

func TestRAMJobStore_PauseResumeTrigger(t *testing.T) {
	store := core.NewRAMJobStore()
	require.NoError(t, store.StoreJob(newTestJob(t, "j1", true, false), true))
	trig, err := core.NewSimpleTrigger(core.NewTriggerKey("t1", ""), core.NewJobKey("j1", ""), time.Now(), time.Second, 0)
	require.NoError(t, err)
	require.NoError(t, store.StoreTrigger(trig, true))

	require.True(t, store.PauseTrigger(trig.Key()))
	assert.Equal(t, core.StatePaused, trig.State())
	assert.Empty(t, store.AcquireNextTriggers(time.Now().Add(time.Hour), 10, 0))

	require.True(t, store.ResumeTrigger(trig.Key()))
	assert.Equal(t, core.StateNormal, trig.State())
}
