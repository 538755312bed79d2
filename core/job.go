package core

import "fmt"

// JobKey is a job's identity. Unique within a JobStore.
type JobKey struct {
	Name  string
	Group string
}

// DefaultGroup is used when a caller does not specify a group.
const DefaultGroup = "DEFAULT"

// NewJobKey returns a JobKey, defaulting an empty group to DefaultGroup.
func NewJobKey(name, group string) JobKey {
	if group == "" {
		group = DefaultGroup
	}
	return JobKey{Name: name, Group: group}
}

func (k JobKey) String() string { return fmt.Sprintf("%s.%s", k.Group, k.Name) }

// Job is the unit of user logic executed on fire. Implementations that need
// a teardown step after Execute (success, failure, or interruption alike)
// can additionally implement `interface{ Cleanup() }`; the runner detects it
// via a type assertion rather than forcing every job to implement a no-op.
type Job interface {
	Execute(ctx *JobContext) error
}

// JobFactory produces a fresh Job instance for each fire.
type JobFactory func() Job

// JobDetail is the stored, identity-bearing description of a job.
type JobDetail struct {
	Key         JobKey
	Description string
	Factory     JobFactory

	// Data is merged with the firing trigger's data at execution time (the
	// trigger's entries win on key collision).
	Data JobDataMap

	// Durable jobs survive having zero triggers; non-durable jobs are
	// removed automatically when their last trigger is removed.
	Durable bool

	// DisallowConcurrentExecution prevents more than one Execute from being
	// in flight for this job identity at a time.
	DisallowConcurrentExecution bool

	// RequestsRecovery is informational only; this engine does not persist
	// or recover state across restarts.
	RequestsRecovery bool
}

// Clone returns a detail with its own copy of the Data map, so mutation by
// one caller cannot affect the store's copy.
func (d JobDetail) Clone() JobDetail {
	d.Data = d.Data.Clone()
	return d
}

// JobDataMap is an arbitrary-payload key/value bag attached to jobs and
// triggers. Values are opaque to the engine.
type JobDataMap map[string]any

// Clone returns a shallow copy; nil maps clone to nil.
func (m JobDataMap) Clone() JobDataMap {
	if m == nil {
		return nil
	}
	out := make(JobDataMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a new map containing m's entries overlaid by over's entries
// (the trigger's entries win on collision).
func (m JobDataMap) Merge(over JobDataMap) JobDataMap {
	out := make(JobDataMap, len(m)+len(over))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Get returns the value for key and whether it was present.
func (m JobDataMap) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// GetString returns the value for key as a string, or "" if absent or not a string.
func (m JobDataMap) GetString(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// GetRequired returns the value for key, or ErrRequiredParameterMissing if
// absent. This is a cooperative error kind: user code that
// calls this on a context's merged data map gets a normal, recognized abort
// rather than a generic runtime failure.
func (m JobDataMap) GetRequired(key string) (any, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRequiredParameterMissing, key)
	}
	return v, nil
}
