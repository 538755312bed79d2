package core

import "time"

// IntervalUnit is the civil-calendar unit a CalendarIntervalTrigger steps by.
type IntervalUnit int

const (
	UnitSecond IntervalUnit = iota
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
	UnitYear
)

func (u IntervalUnit) String() string {
	switch u {
	case UnitSecond:
		return "second"
	case UnitMinute:
		return "minute"
	case UnitHour:
		return "hour"
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	case UnitYear:
		return "year"
	default:
		return "unknown"
	}
}

// CalendarIntervalTrigger fires every N units of civil-calendar time from its
// start time: nextFireTime = startTime + timesTriggered * interval * unit,
// recomputed from scratch each fire rather than accumulated,
// so civil overflow (Jan 31 + 1 month) lands on Feb 28/29 instead of drifting
// and the schedule never accumulates rounding error.
type CalendarIntervalTrigger struct {
	triggerCore

	Interval       int
	Unit           IntervalUnit
	TimesTriggered int
}

// NewCalendarIntervalTrigger builds a CalendarIntervalTrigger. interval must
// be a positive number of units.
func NewCalendarIntervalTrigger(key TriggerKey, jobKey JobKey, startTime time.Time, interval int, unit IntervalUnit) (*CalendarIntervalTrigger, error) {
	if interval <= 0 {
		return nil, ErrNegativeInterval
	}
	return &CalendarIntervalTrigger{
		triggerCore: triggerCore{
			key:       key,
			jobKey:    jobKey,
			startTime: startTime,
			state:     StateNormal,
		},
		Interval: interval,
		Unit:     unit,
	}, nil
}

var _ Trigger = (*CalendarIntervalTrigger)(nil)

// fireTimeAt returns startTime advanced by n whole intervals of Unit, using
// civil-calendar arithmetic for day/week/month/year units. Month and year
// steps clamp the day to the end of a shorter target month (Jan 31 + 1 month
// = Feb 28 or 29).
func (t *CalendarIntervalTrigger) fireTimeAt(n int) time.Time {
	switch t.Unit {
	case UnitSecond:
		return t.startTime.Add(time.Duration(n*t.Interval) * time.Second)
	case UnitMinute:
		return t.startTime.Add(time.Duration(n*t.Interval) * time.Minute)
	case UnitHour:
		return t.startTime.Add(time.Duration(n*t.Interval) * time.Hour)
	case UnitDay:
		return t.startTime.AddDate(0, 0, n*t.Interval)
	case UnitWeek:
		return t.startTime.AddDate(0, 0, n*t.Interval*7)
	case UnitMonth, UnitYear:
		months := n * t.Interval
		if t.Unit == UnitYear {
			months *= 12
		}
		s := t.startTime
		first := time.Date(s.Year(), s.Month()+time.Month(months), 1, s.Hour(), s.Minute(), s.Second(), s.Nanosecond(), s.Location())
		day := s.Day()
		if last := first.AddDate(0, 1, -1).Day(); day > last {
			day = last
		}
		return time.Date(first.Year(), first.Month(), day, s.Hour(), s.Minute(), s.Second(), s.Nanosecond(), s.Location())
	default:
		return t.startTime
	}
}

func (t *CalendarIntervalTrigger) computeFirstFireTime() (time.Time, bool) {
	candidate := t.fireTimeAt(0)
	t.completeOrSet(candidate, true)
	if t.state == StateComplete {
		return time.Time{}, false
	}
	return candidate, true
}

func (t *CalendarIntervalTrigger) fire() {
	if t.nextFireTime == nil {
		t.state = StateComplete
		return
	}
	fired := *t.nextFireTime
	t.previousFireTime = &fired
	t.TimesTriggered++

	next := t.fireTimeAt(t.TimesTriggered)
	t.completeOrSet(next, true)
}

func (t *CalendarIntervalTrigger) resolvedMisfireInstruction() MisfireInstruction {
	if t.misfireKind != MisfireSmartPolicy {
		return t.misfireKind
	}
	return MisfireFireOnceNow
}

func (t *CalendarIntervalTrigger) misfired(now time.Time) {
	switch t.resolvedMisfireInstruction() {
	case MisfireFireNow, MisfireFireOnceNow:
		nf := now
		t.nextFireTime = &nf
	case MisfireRescheduleNextWithExistingCount, MisfireRescheduleNextWithRemainingCount:
		n := t.TimesTriggered
		candidate := t.fireTimeAt(n)
		for candidate.Before(now) {
			n++
			candidate = t.fireTimeAt(n)
		}
		t.TimesTriggered = n
		t.completeOrSet(candidate, true)
	case MisfireDoNothing:
		// leave nextFireTime as-is
	}
}
