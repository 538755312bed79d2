package core

import (
	"time"

	"github.com/netresearch/chronos/cron"
)

// CronTrigger fires according to a parsed cron expression, evaluated in a
// fixed time zone.
type CronTrigger struct {
	triggerCore

	Expr *cron.Expression
	Loc  *time.Location
}

// NewCronTrigger parses expr and builds a CronTrigger. loc defaults to UTC
// when nil.
func NewCronTrigger(key TriggerKey, jobKey JobKey, startTime time.Time, expr string, loc *time.Location) (*CronTrigger, error) {
	parsed, err := cron.Parse(expr)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CronTrigger{
		triggerCore: triggerCore{
			key:       key,
			jobKey:    jobKey,
			startTime: startTime,
			state:     StateNormal,
		},
		Expr: parsed,
		Loc:  loc,
	}, nil
}

var _ Trigger = (*CronTrigger)(nil)

// CronExpression returns the original expression text (exposed to JobContext
// under KEY_TRIGGER_CRON_EXPRESSION).
func (t *CronTrigger) CronExpression() string { return t.Expr.String() }

func (t *CronTrigger) computeFirstFireTime() (time.Time, bool) {
	candidate, ok := t.Expr.Next(t.startTime.Add(-time.Second), t.Loc)
	if !ok {
		t.state = StateComplete
		return time.Time{}, false
	}
	t.completeOrSet(candidate, true)
	if t.state == StateComplete {
		return time.Time{}, false
	}
	return candidate, true
}

func (t *CronTrigger) fire() {
	if t.nextFireTime == nil {
		t.state = StateComplete
		return
	}
	fired := *t.nextFireTime
	t.previousFireTime = &fired

	next, ok := t.Expr.Next(fired, t.Loc)
	t.completeOrSet(next, ok)
}

func (t *CronTrigger) resolvedMisfireInstruction() MisfireInstruction {
	if t.misfireKind != MisfireSmartPolicy {
		return t.misfireKind
	}
	return MisfireFireOnceNow
}

func (t *CronTrigger) misfired(now time.Time) {
	switch t.resolvedMisfireInstruction() {
	case MisfireFireNow, MisfireFireOnceNow:
		nf := now
		t.nextFireTime = &nf
	case MisfireRescheduleNextWithExistingCount, MisfireRescheduleNextWithRemainingCount:
		next, ok := t.Expr.Next(now.Add(-time.Second), t.Loc)
		t.completeOrSet(next, ok)
	case MisfireDoNothing:
		// leave nextFireTime as-is
	}
}
