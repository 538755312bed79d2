// Package config parses a declarative schedule document (YAML or INI) into
// jobs and triggers and installs them into a core.Scheduler's store
// atomically: the whole document is validated before any mutation.
package config

import (
	"time"

	"github.com/creasty/defaults"
)

// Document is the decoded, not-yet-validated descriptor.
type Document struct {
	Schedule Schedule `yaml:"schedule" mapstructure:"schedule"`
}

// Schedule holds the two top-level lists.
type Schedule struct {
	Jobs     []JobDoc     `yaml:"jobs" mapstructure:"jobs"`
	Triggers []TriggerDoc `yaml:"triggers" mapstructure:"triggers"`
}

// JobDoc describes one job entry.
type JobDoc struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Group       string `yaml:"group" mapstructure:"group"`
	Description string `yaml:"description" mapstructure:"description"`
	JobClass    string `yaml:"job-class" mapstructure:"job-class" validate:"required"`
	// ConcurrencyAllowed defaults to true when absent; a plain bool can't
	// distinguish "omitted" from "explicitly false", so this is a pointer
	// and callers read it through ConcurrencyAllowed's accessor below.
	ConcurrencyAllowed *bool             `yaml:"concurrency-allowed" mapstructure:"concurrency-allowed"`
	Durability         bool              `yaml:"durability" mapstructure:"durability"`
	DataMap            map[string]string `yaml:"data-map" mapstructure:"data-map"`
	DataMapAnnotation  string            `yaml:"job-data" mapstructure:"job-data"`
}

// concurrencyAllowed reports j.ConcurrencyAllowed, defaulting to true when
// the field was omitted from the document.
func (j JobDoc) concurrencyAllowed() bool {
	if j.ConcurrencyAllowed == nil {
		return true
	}
	return *j.ConcurrencyAllowed
}

// TriggerDoc describes one trigger entry. Variant-specific fields are all
// present but only the ones matching Variant are meaningful; the loader
// validates that the right subset is populated.
type TriggerDoc struct {
	Variant     string `yaml:"variant" mapstructure:"variant" validate:"required,oneof=simple cron calendar-interval"`
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Group       string `yaml:"group" mapstructure:"group"`
	Description string `yaml:"description" mapstructure:"description"`

	JobName  string `yaml:"job-name" mapstructure:"job-name" validate:"required"`
	JobGroup string `yaml:"job-group" mapstructure:"job-group"`

	StartTime                *time.Time `yaml:"start-time" mapstructure:"start-time"`
	StartTimeSecondsInFuture *int       `yaml:"start-time-seconds-in-future" mapstructure:"start-time-seconds-in-future"`
	EndTime                  *time.Time `yaml:"end-time" mapstructure:"end-time"`

	Priority           int               `yaml:"priority" mapstructure:"priority" default:"5"`
	MisfireInstruction string            `yaml:"misfire-instruction" mapstructure:"misfire-instruction" validate:"omitempty,oneof=smart-policy fire-now reschedule-next-with-existing-count reschedule-next-with-remaining-count reschedule-now-with-existing-repeat-count reschedule-now-with-remaining-repeat-count do-nothing fire-once-now"`
	CalendarName       string            `yaml:"calendar-name" mapstructure:"calendar-name"`
	DataMap            map[string]string `yaml:"data-map" mapstructure:"data-map"`
	DataMapAnnotation  string            `yaml:"trigger-data" mapstructure:"trigger-data"`

	// Simple
	RepeatInterval string `yaml:"repeat-interval" mapstructure:"repeat-interval"`
	RepeatCount    *int   `yaml:"repeat-count" mapstructure:"repeat-count"`

	// Cron
	CronExpression string `yaml:"cron-expression" mapstructure:"cron-expression" validate:"required_if=Variant cron"`
	TimeZone       string `yaml:"time-zone" mapstructure:"time-zone"`

	// Calendar-interval
	Interval int    `yaml:"interval" mapstructure:"interval"`
	Unit     string `yaml:"unit" mapstructure:"unit" validate:"omitempty,oneof=second minute hour day week month year"`
}

// applyDefaults fills zero-valued optional fields via creasty/defaults
// struct tags.
func applyDefaults(doc *Document) error {
	for i := range doc.Schedule.Triggers {
		if err := defaults.Set(&doc.Schedule.Triggers[i]); err != nil {
			return err
		}
	}
	return nil
}
