package core

import "time"

// RepeatIndefinitely marks a SimpleTrigger as firing until its end time
// (or forever), rather than a fixed number of times.
const RepeatIndefinitely = -1

// SimpleTrigger fires at a fixed interval, either a fixed number of times or
// indefinitely.
type SimpleTrigger struct {
	triggerCore

	RepeatInterval time.Duration
	RepeatCount    int // RepeatIndefinitely, or a non-negative count
	TimesTriggered int
}

// NewSimpleTrigger builds a SimpleTrigger. repeatInterval must be >= 0;
// repeatCount may be RepeatIndefinitely.
func NewSimpleTrigger(key TriggerKey, jobKey JobKey, startTime time.Time, repeatInterval time.Duration, repeatCount int) (*SimpleTrigger, error) {
	if repeatInterval < 0 {
		return nil, ErrNegativeInterval
	}
	return &SimpleTrigger{
		triggerCore: triggerCore{
			key:       key,
			jobKey:    jobKey,
			startTime: startTime,
			state:     StateNormal,
		},
		RepeatInterval: repeatInterval,
		RepeatCount:    repeatCount,
	}, nil
}

var _ Trigger = (*SimpleTrigger)(nil)

func (t *SimpleTrigger) computeFirstFireTime() (time.Time, bool) {
	if t.pastEndTime(t.startTime) {
		t.state = StateComplete
		return time.Time{}, false
	}
	nf := t.startTime
	t.nextFireTime = &nf
	return nf, true
}

func (t *SimpleTrigger) fire() {
	if t.nextFireTime == nil {
		t.state = StateComplete
		return
	}
	fired := *t.nextFireTime
	t.previousFireTime = &fired
	t.TimesTriggered++

	if t.RepeatCount != RepeatIndefinitely && t.TimesTriggered > t.RepeatCount {
		t.nextFireTime = nil
		t.state = StateComplete
		return
	}

	next := fired.Add(t.RepeatInterval)
	t.completeOrSet(next, true)
}

func (t *SimpleTrigger) resolvedMisfireInstruction() MisfireInstruction {
	if t.misfireKind != MisfireSmartPolicy {
		return t.misfireKind
	}
	if t.RepeatCount == RepeatIndefinitely {
		return MisfireRescheduleNextWithRemainingCount
	}
	return MisfireRescheduleNowWithExistingRepeatCount
}

func (t *SimpleTrigger) misfired(now time.Time) {
	switch t.resolvedMisfireInstruction() {
	case MisfireFireNow, MisfireRescheduleNowWithExistingRepeatCount, MisfireRescheduleNowWithRemainingRepeatCount:
		nf := now
		t.nextFireTime = &nf
	case MisfireRescheduleNextWithExistingCount:
		t.catchUp(now, true)
	case MisfireRescheduleNextWithRemainingCount:
		t.catchUp(now, false)
	case MisfireDoNothing:
		// leave nextFireTime as-is; the scheduler will fire it as soon as it can.
	}
}

// catchUp advances nextFireTime past now by repeated intervals. When
// countAgainstRepeat is true each skipped interval also consumes one unit of
// RepeatCount (RESCHEDULE_NEXT_WITH_EXISTING_COUNT); otherwise the skipped
// intervals are free (RESCHEDULE_NEXT_WITH_REMAINING_COUNT).
func (t *SimpleTrigger) catchUp(now time.Time, countAgainstRepeat bool) {
	if t.nextFireTime == nil || t.RepeatInterval <= 0 {
		nf := now
		t.nextFireTime = &nf
		return
	}

	for t.nextFireTime.Before(now) {
		if countAgainstRepeat {
			t.TimesTriggered++
			if t.RepeatCount != RepeatIndefinitely && t.TimesTriggered > t.RepeatCount {
				t.nextFireTime = nil
				t.state = StateComplete
				return
			}
		}
		next := t.nextFireTime.Add(t.RepeatInterval)
		t.nextFireTime = &next
	}
	t.completeOrSet(*t.nextFireTime, true)
}
