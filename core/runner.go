package core

import (
	"context"
	"errors"
	"fmt"
)

// cleanuper is the optional second half of Job: implementations that need a
// teardown step implement it and the runner detects that via assertion
// instead of forcing a no-op method on every Job.
type cleanuper interface {
	Cleanup()
}

// runner builds the JobContext, invokes the job, and reports completion back
// to the store and listeners. It holds no state of its own; everything it
// needs is passed in by the scheduler that owns the store, pool and listener
// manager.
type runner struct {
	store     *RAMJobStore
	listeners *ListenerManager
	log       Logger
	parentCtx context.Context

	register   func(*JobContext)
	unregister func(*JobContext)
}

func newRunner(store *RAMJobStore, listeners *ListenerManager, log Logger, parentCtx context.Context, register, unregister func(*JobContext)) *runner {
	if log == nil {
		log = NopLogger()
	}
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	if register == nil {
		register = func(*JobContext) {}
	}
	if unregister == nil {
		unregister = func(*JobContext) {}
	}
	return &runner{store: store, listeners: listeners, log: log, parentCtx: parentCtx, register: register, unregister: unregister}
}

// run executes one fired trigger's job end to end.
// locked reports the global-lock flag as observed right before dispatch; a
// locked run is a no-op that still notifies triggeredJobComplete so the
// trigger and any blocked siblings settle correctly.
func (r *runner) run(result FiredResult, locked bool) *JobContext {
	jobKey := result.Job.Key

	if locked {
		r.log.Debugf("skipping %s: scheduler is locked", jobKey)
		r.store.TriggeredJobComplete(result.Trigger, jobKey, CompletionNoOp)
		return nil
	}

	data := result.Data.Clone()
	data[KeyJobName] = jobKey.String()
	data[KeyTriggerName] = result.Trigger.Key().String()
	if ct, ok := result.Trigger.(*CronTrigger); ok {
		data[KeyTriggerCronExpression] = ct.CronExpression()
	}

	ctx := newJobContext(r.parentCtx, jobKey, result.Trigger.Key(), result.FireTime, data)
	r.register(ctx)
	defer r.unregister(ctx)

	for _, l := range r.listeners.triggerListenersFor(result.Trigger.Key()) {
		l := l
		veto := false
		notify(r.log, "TriggerFired", func() { l.TriggerFired(result.Trigger, ctx) })
		notify(r.log, "TriggerVetoJobExecution", func() { veto = l.TriggerVetoJobExecution(result.Trigger, ctx) })
		if veto {
			for _, jl := range r.listeners.jobListenersFor(jobKey) {
				notify(r.log, "JobExecutionVetoed", func() { jl.JobExecutionVetoed(ctx) })
			}
			ctx.release()
			r.store.TriggeredJobComplete(result.Trigger, jobKey, CompletionNoOp)
			return nil
		}
	}

	for _, l := range r.listeners.jobListenersFor(jobKey) {
		notify(r.log, "JobToBeExecuted", func() { l.JobToBeExecuted(ctx) })
	}

	code, execErr := r.execute(result.Job, ctx)

	for _, l := range r.listeners.jobListenersFor(jobKey) {
		notify(r.log, "JobWasExecuted", func() { l.JobWasExecuted(ctx, code, execErr) })
	}
	for _, l := range r.listeners.triggerListenersFor(result.Trigger.Key()) {
		notify(r.log, "TriggerComplete", func() { l.TriggerComplete(result.Trigger, code) })
	}

	ctx.release()
	r.store.TriggeredJobComplete(result.Trigger, jobKey, code)
	return ctx
}

// execute instantiates a fresh Job via the job's factory, runs it, and maps
// the outcome to a CompletionCode.
func (r *runner) execute(job JobDetail, ctx *JobContext) (code CompletionCode, err error) {
	if job.Factory == nil {
		r.log.Errorf("job %s has no factory", job.Key)
		return CompletionExecutionThrewException, fmt.Errorf("job %s: no factory registered", job.Key)
	}

	instance := job.Factory()

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("job %s panicked: %v", job.Key, rec)
			code = CompletionExecutionThrewException
			err = fmt.Errorf("%w: %v", ErrJobPanicked, rec)
		}
		if c, ok := instance.(cleanuper); ok {
			notify(r.log, "Cleanup", c.Cleanup)
		}
	}()

	runErr := instance.Execute(ctx)

	switch {
	case runErr == nil && ctx.IsInterrupted():
		r.log.Noticef("job %s interrupted", job.Key)
		return CompletionInterrupted, nil
	case runErr == nil:
		return CompletionSuccess, nil
	case errors.Is(runErr, ErrJobInterrupted):
		r.log.Noticef("job %s interrupted", job.Key)
		return CompletionInterrupted, nil
	case errors.Is(runErr, ErrRequiredParameterMissing):
		r.log.Warningf("job %s: %v", job.Key, runErr)
		return CompletionRequiredParameterMissing, runErr
	default:
		r.log.Errorf("job %s failed: %v", job.Key, runErr)
		return CompletionExecutionThrewException, runErr
	}
}
