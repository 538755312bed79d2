// Package listeners provides reference core.JobListener and
// core.TriggerListener implementations: logging, metrics recording, and
// failure-notification email.
package listeners

import (
	"github.com/netresearch/chronos/core"
)

// LoggingJobListener logs a job's start and completion through a core.Logger.
type LoggingJobListener struct {
	core.BaseJobListener
	Log core.Logger
}

var _ core.JobListener = (*LoggingJobListener)(nil)

func (l *LoggingJobListener) JobToBeExecuted(ctx *core.JobContext) {
	l.Log.Debugf("job %s: execution %s starting (trigger %s)", ctx.JobKey, ctx.Execution.ID, ctx.TriggerKey)
}

func (l *LoggingJobListener) JobExecutionVetoed(ctx *core.JobContext) {
	l.Log.Noticef("job %s: execution %s vetoed", ctx.JobKey, ctx.Execution.ID)
}

func (l *LoggingJobListener) JobWasExecuted(ctx *core.JobContext, code core.CompletionCode, err error) {
	if err != nil {
		l.Log.Errorf("job %s: execution %s finished %s: %v", ctx.JobKey, ctx.Execution.ID, code, err)
		return
	}
	l.Log.Noticef("job %s: execution %s finished %s in %s", ctx.JobKey, ctx.Execution.ID, code, ctx.Execution.Duration)
}
