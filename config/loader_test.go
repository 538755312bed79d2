package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/config"
	"github.com/netresearch/chronos/core"
)

type noopJob struct{}

func (noopJob) Execute(*core.JobContext) error { return nil }

func newTestRegistry() config.Registry {
	return config.Registry{"report-job": func() core.Job { return noopJob{} }}
}

func TestInstall_LoadsJobAndCronTrigger(t *testing.T) {
	doc, err := config.ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	sched := core.NewScheduler(core.SchedulerConfig{})
	t.Cleanup(func() { sched.Shutdown(false) })

	require.NoError(t, config.Install(doc, newTestRegistry(), sched))

	job, ok := sched.Store().GetJob(core.NewJobKey("report", ""))
	require.True(t, ok)
	assert.True(t, job.Durable)

	trigs := sched.Store().GetTriggersOfJob(job.Key)
	require.Len(t, trigs, 1)
	cronTrig, ok := trigs[0].(*core.CronTrigger)
	require.True(t, ok)
	assert.Equal(t, "0 0 2 * * ?", cronTrig.CronExpression())
}

func TestInstall_RejectsUnknownJobClass(t *testing.T) {
	doc, err := config.ParseYAML([]byte(`
schedule:
  jobs:
    - name: mystery
      job-class: does-not-exist
      durability: true
`))
	require.NoError(t, err)

	sched := core.NewScheduler(core.SchedulerConfig{})
	t.Cleanup(func() { sched.Shutdown(false) })

	err = config.Install(doc, newTestRegistry(), sched)
	require.Error(t, err)
	assert.Equal(t, 0, sched.Store().JobCount()) // nothing installed on validation failure
}

func TestInstall_RejectsNonDurableJobWithNoTrigger(t *testing.T) {
	doc, err := config.ParseYAML([]byte(`
schedule:
  jobs:
    - name: orphan
      job-class: report-job
`))
	require.NoError(t, err)

	sched := core.NewScheduler(core.SchedulerConfig{})
	t.Cleanup(func() { sched.Shutdown(false) })

	err = config.Install(doc, newTestRegistry(), sched)
	require.Error(t, err)
}

func TestInstall_SimpleTriggerWithIndefiniteRepeat(t *testing.T) {
	doc, err := config.ParseYAML([]byte(`
schedule:
  jobs:
    - name: poll
      job-class: report-job
      durability: true
  triggers:
    - variant: simple
      name: poll-every-minute
      job-name: poll
      repeat-interval: 1m
      repeat-count: -1
`))
	require.NoError(t, err)

	sched := core.NewScheduler(core.SchedulerConfig{})
	t.Cleanup(func() { sched.Shutdown(false) })
	require.NoError(t, config.Install(doc, newTestRegistry(), sched))

	trigs := sched.Store().GetTriggersOfJob(core.NewJobKey("poll", ""))
	require.Len(t, trigs, 1)
	simple, ok := trigs[0].(*core.SimpleTrigger)
	require.True(t, ok)
	assert.Equal(t, core.RepeatIndefinitely, simple.RepeatCount)
}
