package listeners

import (
	"github.com/netresearch/chronos/core"
	"github.com/netresearch/chronos/metrics"
)

// MetricsJobListener records one counter increment per job completion,
// labeled by job identity and completion code. Trigger misfires are recorded
// by MetricsTriggerListener, not here.
type MetricsJobListener struct {
	core.BaseJobListener
	Recorder metrics.Recorder
}

var _ core.JobListener = (*MetricsJobListener)(nil)

func (l *MetricsJobListener) JobWasExecuted(ctx *core.JobContext, code core.CompletionCode, _ error) {
	l.Recorder.Inc("job_executions_total", map[string]string{
		"job":    ctx.JobKey.String(),
		"result": code.String(),
	})
}

// MetricsTriggerListener records trigger misfires, independent of whether
// the job itself runs.
type MetricsTriggerListener struct {
	core.BaseTriggerListener
	Recorder metrics.Recorder
}

var _ core.TriggerListener = (*MetricsTriggerListener)(nil)

func (l *MetricsTriggerListener) TriggerMisfired(t core.Trigger) {
	l.Recorder.Inc("trigger_misfires_total", map[string]string{"trigger": t.Key().String()})
}
