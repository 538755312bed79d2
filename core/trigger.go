package core

import (
	"fmt"
	"time"
)

// TriggerKey is a trigger's identity, unique within a JobStore.
type TriggerKey struct {
	Name  string
	Group string
}

// NewTriggerKey returns a TriggerKey, defaulting an empty group to DefaultGroup.
func NewTriggerKey(name, group string) TriggerKey {
	if group == "" {
		group = DefaultGroup
	}
	return TriggerKey{Name: name, Group: group}
}

func (k TriggerKey) String() string { return fmt.Sprintf("%s.%s", k.Group, k.Name) }

// TriggerState is the trigger's position in its lifecycle state machine.
type TriggerState int

const (
	StateNormal TriggerState = iota
	StatePaused
	StateAcquired
	StateExecuting
	StateBlocked
	StateComplete
	StateError
)

func (s TriggerState) String() string {
	switch s {
	case StateNormal:
		return "NORMAL"
	case StatePaused:
		return "PAUSED"
	case StateAcquired:
		return "ACQUIRED"
	case StateExecuting:
		return "EXECUTING"
	case StateBlocked:
		return "BLOCKED"
	case StateComplete:
		return "COMPLETE"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MisfireInstruction selects how a trigger catches up after missing its
// nextFireTime by more than the misfire threshold.
type MisfireInstruction int

const (
	MisfireSmartPolicy MisfireInstruction = iota
	MisfireFireNow
	MisfireRescheduleNextWithExistingCount
	MisfireRescheduleNextWithRemainingCount
	MisfireRescheduleNowWithExistingRepeatCount
	MisfireRescheduleNowWithRemainingRepeatCount
	MisfireDoNothing
	MisfireFireOnceNow
)

// CompletionCode records how a fired trigger's execution ended. Cooperative
// aborts get their own codes and are always reported to listeners, never
// swallowed silently.
type CompletionCode int

const (
	CompletionSuccess CompletionCode = iota
	CompletionInterrupted
	CompletionRequiredParameterMissing
	CompletionExecutionThrewException
	CompletionNoOp // dispatched while the global lock was set
)

func (c CompletionCode) String() string {
	switch c {
	case CompletionSuccess:
		return "SUCCESS"
	case CompletionInterrupted:
		return "INTERRUPTED"
	case CompletionRequiredParameterMissing:
		return "REQUIRED_PARAMETER_MISSING"
	case CompletionExecutionThrewException:
		return "JOB_EXECUTION_THREW_EXCEPTION"
	case CompletionNoOp:
		return "NO_OP"
	default:
		return "UNKNOWN"
	}
}

// Trigger is a firing rule bound to a job. The three variants (Simple, Cron,
// CalendarInterval) all implement it; computeFirstFireTime, fire and
// misfired are intentionally unexported so only this package can introduce
// new variants.
type Trigger interface {
	Key() TriggerKey
	JobKey() JobKey
	Description() string
	Priority() int
	StartTime() time.Time
	EndTime() (time.Time, bool)
	Data() JobDataMap
	MisfireInstruction() MisfireInstruction
	CalendarName() string

	State() TriggerState
	NextFireTime() (time.Time, bool)
	PreviousFireTime() (time.Time, bool)

	// computeFirstFireTime sets and returns the initial nextFireTime after
	// the trigger is stored, or ok=false if the trigger can never fire.
	computeFirstFireTime() (time.Time, bool)

	// fire advances the trigger's internal counters past one firing and
	// recomputes nextFireTime, or completes the trigger.
	fire()

	// misfired applies the resolved (non-SmartPolicy) misfire instruction.
	misfired(now time.Time)

	setState(TriggerState)
}

// triggerCore holds the fields and behavior common to every variant.
type triggerCore struct {
	key         TriggerKey
	jobKey      JobKey
	description string
	priority    int
	startTime   time.Time
	endTime     *time.Time
	data        JobDataMap
	misfireKind MisfireInstruction
	calendar    string

	state            TriggerState
	nextFireTime     *time.Time
	previousFireTime *time.Time
}

func (t *triggerCore) Key() TriggerKey                       { return t.key }
func (t *triggerCore) JobKey() JobKey                        { return t.jobKey }
func (t *triggerCore) Description() string                   { return t.description }
func (t *triggerCore) Priority() int                          { return t.priority }
func (t *triggerCore) StartTime() time.Time                   { return t.startTime }
func (t *triggerCore) Data() JobDataMap                       { return t.data.Clone() }
func (t *triggerCore) MisfireInstruction() MisfireInstruction { return t.misfireKind }
func (t *triggerCore) CalendarName() string                   { return t.calendar }
func (t *triggerCore) State() TriggerState                    { return t.state }
func (t *triggerCore) setState(s TriggerState)                { t.state = s }

func (t *triggerCore) EndTime() (time.Time, bool) {
	if t.endTime == nil {
		return time.Time{}, false
	}
	return *t.endTime, true
}

func (t *triggerCore) NextFireTime() (time.Time, bool) {
	if t.nextFireTime == nil {
		return time.Time{}, false
	}
	return *t.nextFireTime, true
}

func (t *triggerCore) PreviousFireTime() (time.Time, bool) {
	if t.previousFireTime == nil {
		return time.Time{}, false
	}
	return *t.previousFireTime, true
}

// TriggerMutator is the common-field setter surface, promoted onto every
// trigger variant by embedding triggerCore. The descriptor loader uses it so
// it can populate the shared fields (priority, end time, misfire
// instruction, ...) without depending on any one variant's constructor
// signature.
type TriggerMutator interface {
	SetDescription(string)
	SetPriority(int)
	SetEndTime(*time.Time)
	SetMisfireInstruction(MisfireInstruction)
	SetCalendarName(string)
	SetData(JobDataMap)
}

func (t *triggerCore) SetDescription(d string)                      { t.description = d }
func (t *triggerCore) SetPriority(p int)                            { t.priority = p }
func (t *triggerCore) SetEndTime(end *time.Time)                    { t.endTime = end }
func (t *triggerCore) SetMisfireInstruction(m MisfireInstruction)    { t.misfireKind = m }
func (t *triggerCore) SetCalendarName(c string)                     { t.calendar = c }
func (t *triggerCore) SetData(d JobDataMap)                         { t.data = d }

// pastEndTime reports whether candidate is after the trigger's end time, if any.
func (t *triggerCore) pastEndTime(candidate time.Time) bool {
	return t.endTime != nil && candidate.After(*t.endTime)
}

// completeOrSet either marks the trigger COMPLETE (candidate is past the end
// time or ok is false) or records candidate as the new nextFireTime.
func (t *triggerCore) completeOrSet(candidate time.Time, ok bool) {
	if !ok || t.pastEndTime(candidate) {
		t.nextFireTime = nil
		t.state = StateComplete
		return
	}
	t.nextFireTime = &candidate
}
