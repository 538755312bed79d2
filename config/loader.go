package config

import (
	"fmt"
	"time"

	"github.com/netresearch/chronos/core"
)

// Registry resolves a job-class name (from the descriptor) to the factory
// that builds fresh Job instances for it. Callers populate this before
// calling Install; it stands in for the "classpath/resource scanning for
// annotated jobs" this spec explicitly places out of scope (§1).
type Registry map[string]core.JobFactory

// Install validates doc in its entirety, then installs every job
// (replace-if-exists) followed by every trigger. No job or trigger reaches
// the store if anything in doc fails validation.
func Install(doc *Document, registry Registry, sched *core.Scheduler) error {
	if err := Validate(doc); err != nil {
		return err
	}
	if err := validateTriggerTargets(doc, sched); err != nil {
		return err
	}

	jobs, err := buildJobs(doc, registry, sched)
	if err != nil {
		return err
	}
	triggers, err := buildTriggers(doc)
	if err != nil {
		return err
	}

	for _, j := range jobs {
		if err := sched.AddJob(j); err != nil {
			return fmt.Errorf("install job %s: %w", j.Key, err)
		}
	}
	for _, t := range triggers {
		if err := sched.AddTrigger(t); err != nil {
			return fmt.Errorf("install trigger %s: %w", t.Key(), err)
		}
	}
	return nil
}

// buildJobs turns every JobDoc into a JobDetail without mutating the store.
// It enforces: unknown job-class fails; a new non-durable job must have at
// least one accompanying trigger in this same document or an existing
// trigger already in the store; an existing durable job cannot be demoted
// to non-durable while it currently has zero triggers.
func buildJobs(doc *Document, registry Registry, sched *core.Scheduler) ([]core.JobDetail, error) {
	triggerTargets := make(map[string]int) // job name -> trigger count in this doc
	for _, t := range doc.Schedule.Triggers {
		triggerTargets[jobIdentity(t.JobName, t.JobGroup)]++
	}

	out := make([]core.JobDetail, 0, len(doc.Schedule.Jobs))
	for _, j := range doc.Schedule.Jobs {
		factory, ok := registry[j.JobClass]
		if !ok {
			return nil, fmt.Errorf("job %q: unknown job-class %q", j.Name, j.JobClass)
		}

		key := core.NewJobKey(j.Name, j.Group)
		existing, existed := sched.Store().GetJob(key)

		if !j.Durability {
			existingTriggerCount := len(sched.Store().GetTriggersOfJob(key))
			if triggerTargets[jobIdentity(j.Name, j.Group)] == 0 && existingTriggerCount == 0 {
				return nil, fmt.Errorf("job %q: %w", j.Name, core.ErrJobHasNoTriggers)
			}
		}
		if existed && existing.Durable && !j.Durability && len(sched.Store().GetTriggersOfJob(key)) == 0 {
			return nil, fmt.Errorf("job %q: cannot demote a durable job with no triggers to non-durable", j.Name)
		}

		out = append(out, core.JobDetail{
			Key:                         key,
			Description:                 j.Description,
			Factory:                     factory,
			Data:                        mergedDataMap(j.DataMap, j.DataMapAnnotation),
			Durable:                     j.Durability,
			DisallowConcurrentExecution: !j.concurrencyAllowed(),
		})
	}
	return out, nil
}

func jobIdentity(name, group string) string {
	return core.NewJobKey(name, group).String()
}

// validateTriggerTargets checks that every trigger's target job either
// appears in this same document or already exists in the store, before
// Install writes anything. Without this pass a trigger pointing at an
// unknown job is only discovered inside StoreTrigger, by which point
// earlier jobs in the document have already been added.
func validateTriggerTargets(doc *Document, sched *core.Scheduler) error {
	docJobs := make(map[string]struct{}, len(doc.Schedule.Jobs))
	for _, j := range doc.Schedule.Jobs {
		docJobs[jobIdentity(j.Name, j.Group)] = struct{}{}
	}

	for _, t := range doc.Schedule.Triggers {
		identity := jobIdentity(t.JobName, t.JobGroup)
		if _, ok := docJobs[identity]; ok {
			continue
		}
		if _, existed := sched.Store().GetJob(core.NewJobKey(t.JobName, t.JobGroup)); existed {
			continue
		}
		return fmt.Errorf("trigger %q: target job %q not found in document or store", t.Name, identity)
	}
	return nil
}

// buildTriggers turns every TriggerDoc into a concrete Trigger. Triggers
// with an unspecified start time default to now.
func buildTriggers(doc *Document) ([]core.Trigger, error) {
	out := make([]core.Trigger, 0, len(doc.Schedule.Triggers))
	for _, t := range doc.Schedule.Triggers {
		start := resolveStartTime(t)
		key := core.NewTriggerKey(t.Name, t.Group)
		jobKey := core.NewJobKey(t.JobName, t.JobGroup)

		built, err := buildOneTrigger(t, key, jobKey, start)
		if err != nil {
			return nil, fmt.Errorf("trigger %q: %w", t.Name, err)
		}
		out = append(out, built)
	}
	return out, nil
}

func resolveStartTime(t TriggerDoc) time.Time {
	switch {
	case t.StartTime != nil:
		return *t.StartTime
	case t.StartTimeSecondsInFuture != nil:
		return time.Now().Add(time.Duration(*t.StartTimeSecondsInFuture) * time.Second)
	default:
		return time.Now()
	}
}

func buildOneTrigger(t TriggerDoc, key core.TriggerKey, jobKey core.JobKey, start time.Time) (core.Trigger, error) {
	var trig core.Trigger
	var err error

	switch t.Variant {
	case "simple":
		interval, perr := time.ParseDuration(orDefault(t.RepeatInterval, "0s"))
		if perr != nil {
			return nil, fmt.Errorf("repeat-interval: %w", perr)
		}
		count := core.RepeatIndefinitely
		if t.RepeatCount != nil {
			count = *t.RepeatCount
		}
		trig, err = core.NewSimpleTrigger(key, jobKey, start, interval, count)
	case "cron":
		loc := time.UTC
		if t.TimeZone != "" {
			loc, err = time.LoadLocation(t.TimeZone)
			if err != nil {
				return nil, fmt.Errorf("time-zone: %w", err)
			}
		}
		trig, err = core.NewCronTrigger(key, jobKey, start, t.CronExpression, loc)
	case "calendar-interval":
		unit, uerr := parseUnit(t.Unit)
		if uerr != nil {
			return nil, uerr
		}
		interval := t.Interval
		if interval == 0 {
			interval = 1
		}
		trig, err = core.NewCalendarIntervalTrigger(key, jobKey, start, interval, unit)
	default:
		return nil, core.ErrUnknownVariant
	}
	if err != nil {
		return nil, err
	}

	misfire := parseMisfireInstruction(t.MisfireInstruction)
	if !misfireValidForVariant(t.Variant, misfire) {
		return nil, fmt.Errorf("misfire-instruction %q: %w", t.MisfireInstruction, core.ErrInvalidMisfireKind)
	}

	applyCommonTriggerFields(trig, t)
	return trig, nil
}

// misfireValidForVariant reports whether m is one a trigger of the given
// variant knows how to resolve. Simple triggers track a repeat count, so
// they alone accept the "now, with existing/remaining repeat count" forms;
// cron and calendar-interval triggers fire from a calendar instead, so they
// alone accept "fire once now".
func misfireValidForVariant(variant string, m core.MisfireInstruction) bool {
	switch m {
	case core.MisfireSmartPolicy, core.MisfireFireNow,
		core.MisfireRescheduleNextWithExistingCount, core.MisfireRescheduleNextWithRemainingCount,
		core.MisfireDoNothing:
		return true
	case core.MisfireRescheduleNowWithExistingRepeatCount, core.MisfireRescheduleNowWithRemainingRepeatCount:
		return variant == "simple"
	case core.MisfireFireOnceNow:
		return variant == "cron" || variant == "calendar-interval"
	default:
		return false
	}
}

func parseUnit(s string) (core.IntervalUnit, error) {
	switch s {
	case "", "second":
		return core.UnitSecond, nil
	case "minute":
		return core.UnitMinute, nil
	case "hour":
		return core.UnitHour, nil
	case "day":
		return core.UnitDay, nil
	case "week":
		return core.UnitWeek, nil
	case "month":
		return core.UnitMonth, nil
	case "year":
		return core.UnitYear, nil
	default:
		return 0, fmt.Errorf("unknown interval unit %q", s)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func applyCommonTriggerFields(trig core.Trigger, t TriggerDoc) {
	m, ok := trig.(core.TriggerMutator)
	if !ok {
		return
	}
	m.SetDescription(t.Description)
	m.SetPriority(t.Priority)
	m.SetEndTime(t.EndTime)
	m.SetMisfireInstruction(parseMisfireInstruction(t.MisfireInstruction))
	m.SetCalendarName(t.CalendarName)
	m.SetData(mergedDataMap(t.DataMap, t.DataMapAnnotation))
}

func parseMisfireInstruction(s string) core.MisfireInstruction {
	switch s {
	case "fire-now":
		return core.MisfireFireNow
	case "reschedule-next-with-existing-count":
		return core.MisfireRescheduleNextWithExistingCount
	case "reschedule-next-with-remaining-count":
		return core.MisfireRescheduleNextWithRemainingCount
	case "reschedule-now-with-existing-repeat-count":
		return core.MisfireRescheduleNowWithExistingRepeatCount
	case "reschedule-now-with-remaining-repeat-count":
		return core.MisfireRescheduleNowWithRemainingRepeatCount
	case "do-nothing":
		return core.MisfireDoNothing
	case "fire-once-now":
		return core.MisfireFireOnceNow
	default:
		return core.MisfireSmartPolicy
	}
}
