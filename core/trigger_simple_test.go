package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/core"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return tm.UTC()
}

func TestSimpleTrigger_FiresRepeatCountPlusOneTimes(t *testing.T) {
	start := mustTime(t, "2024-01-01T00:00:00Z")
	trig, err := core.NewSimpleTrigger(core.NewTriggerKey("t1", ""), core.NewJobKey("j1", ""), start, time.Second, 3)
	require.NoError(t, err)

	store := newStoreWithTrigger(t, trig)

	var fires []time.Time
	for i := 0; i < 10; i++ {
		nf, ok := trig.NextFireTime()
		if !ok {
			break
		}
		fires = append(fires, nf)
		fireOnce(store, trig)
	}

	require.Len(t, fires, 4)
	assert.Equal(t, start, fires[0])
	assert.Equal(t, start.Add(3*time.Second), fires[3])
	assert.Equal(t, core.StateComplete, trig.State())
}

func TestSimpleTrigger_ZeroIntervalIndefiniteNeverCompletes(t *testing.T) {
	start := mustTime(t, "2024-01-01T00:00:00Z")
	trig, err := core.NewSimpleTrigger(core.NewTriggerKey("t1", ""), core.NewJobKey("j1", ""), start, 0, core.RepeatIndefinitely)
	require.NoError(t, err)

	store := newStoreWithTrigger(t, trig)
	for i := 0; i < 100; i++ {
		fireOnce(store, trig)
	}
	assert.NotEqual(t, core.StateComplete, trig.State())
}

func TestSimpleTrigger_NegativeIntervalRejected(t *testing.T) {
	_, err := core.NewSimpleTrigger(core.NewTriggerKey("t1", ""), core.NewJobKey("j1", ""), time.Now(), -time.Second, 1)
	require.ErrorIs(t, err, core.ErrNegativeInterval)
}

// newStoreWithTrigger and fireOnce drive a trigger through exactly the
// acquire/fire/complete cycle the scheduler itself uses, so trigger tests
// exercise the same state transitions as production rather than reaching
// into unexported methods.
func newStoreWithTrigger(t *testing.T, trig core.Trigger) *core.RAMJobStore {
	t.Helper()
	store := core.NewRAMJobStore()
	require.NoError(t, store.StoreJob(core.JobDetail{Key: trig.JobKey(), Durable: true}, true))
	require.NoError(t, store.StoreTrigger(trig, true))
	return store
}

func fireOnce(store *core.RAMJobStore, trig core.Trigger) {
	if trig.State() != core.StateNormal {
		return
	}
	acquired := store.AcquireNextTriggers(trig.StartTime().AddDate(1000, 0, 0), 1, 0)
	if len(acquired) == 0 {
		return
	}
	fired := store.TriggersFired(acquired)
	for _, r := range fired {
		store.TriggeredJobComplete(r.Trigger, r.Job.Key, core.CompletionSuccess)
	}
}
