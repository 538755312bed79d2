package core

import "errors"

// Configuration errors: the caller supplied something invalid.
var (
	ErrUnknownVariant     = errors.New("unknown trigger variant")
	ErrInvalidMisfireKind = errors.New("misfire instruction not valid for this trigger variant")
	ErrNegativeInterval   = errors.New("repeat interval must be >= 0")
)

// State errors: the store's invariants would be or were violated.
var (
	ErrJobAlreadyExists     = errors.New("job already exists")
	ErrTriggerAlreadyExists = errors.New("trigger already exists")
	ErrJobNotFound          = errors.New("job not found")
	ErrJobHasNoTriggers     = errors.New("non-durable job must have at least one trigger")
	ErrSchedulerShutdown    = errors.New("scheduler is shut down")
	ErrSchedulerRunning     = errors.New("scheduler is already running")
)

// Runtime errors: surfaced from job execution or pool saturation.
var (
	ErrJobPanicked   = errors.New("job panicked")
	ErrPoolExhausted = errors.New("worker pool exhausted")
)

// Cooperative control-flow sentinels. These are not failures: the runner
// treats both as a normal, logged completion.
var (
	// ErrJobInterrupted is observed by user code via Context.IsInterrupted
	// and may be returned from Job.Execute to request a clean, logged abort.
	ErrJobInterrupted = errors.New("job interrupted")
	// ErrRequiredParameterMissing is returned by Context accessors (or by
	// user code) when a mandatory JobDataMap key is absent.
	ErrRequiredParameterMissing = errors.New("required parameter missing")
)
