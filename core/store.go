package core

import (
	"sort"
	"sync"
	"time"
)

// FiredResult is what triggersFired returns for each trigger it advanced:
// enough to build a JobContext and submit the execution.
type FiredResult struct {
	Trigger  Trigger
	Job      JobDetail
	FireTime time.Time
	Data     JobDataMap
}

// jobRecord is the store's bookkeeping around one JobDetail: its triggers by
// key, and whether a disallow-concurrent execution is currently in flight.
type jobRecord struct {
	detail   JobDetail
	triggers map[TriggerKey]struct{}
	blocked  bool
}

// RAMJobStore is the in-memory JobStore. A single mutex protects
// every field; acquireNextTriggers walks a slice kept sorted by
// (nextFireTime, -priority, name) rather than a heap, since batches are small
// and re-sorting on the rare insert/remove is cheaper to reason about than a
// hand-rolled container/heap.Interface for this data size.
type RAMJobStore struct {
	mu sync.Mutex

	jobs     map[JobKey]*jobRecord
	triggers map[TriggerKey]Trigger
	index    []TriggerKey // kept sorted; mirrors triggers' fire order

	onUnblock func() // notified when a non-concurrent job's siblings become acquirable again
}

// NewRAMJobStore returns an empty store.
func NewRAMJobStore() *RAMJobStore {
	return &RAMJobStore{
		jobs:     make(map[JobKey]*jobRecord),
		triggers: make(map[TriggerKey]Trigger),
	}
}

// SetUnblockSignal registers fn to be called whenever TriggeredJobComplete
// clears a non-concurrent job's blocked flag, so a waiting sibling trigger
// doesn't sit idle until the scheduler loop's next timed wake-up.
func (s *RAMJobStore) SetUnblockSignal(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnblock = fn
}

// StoreJob inserts or replaces a job. replace=false and an existing job with
// the same key returns ErrJobAlreadyExists.
func (s *RAMJobStore) StoreJob(detail JobDetail, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[detail.Key]
	if ok && !replace {
		return ErrJobAlreadyExists
	}
	if ok {
		existing.detail = detail.Clone()
		return nil
	}
	s.jobs[detail.Key] = &jobRecord{detail: detail.Clone(), triggers: make(map[TriggerKey]struct{})}
	return nil
}

// StoreTrigger inserts or replaces a trigger. Its job must already exist.
func (s *RAMJobStore) StoreTrigger(t Trigger, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[t.JobKey()]
	if !ok {
		return ErrJobNotFound
	}

	if _, exists := s.triggers[t.Key()]; exists {
		if !replace {
			return ErrTriggerAlreadyExists
		}
		s.removeTriggerLocked(t.Key())
	}

	if _, ok := t.NextFireTime(); !ok {
		t.computeFirstFireTime()
	}

	s.triggers[t.Key()] = t
	job.triggers[t.Key()] = struct{}{}
	s.insertIndexLocked(t.Key())
	return nil
}

// RemoveJob removes a job and all of its triggers.
func (s *RAMJobStore) RemoveJob(key JobKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[key]
	if !ok {
		return false
	}
	for tk := range job.triggers {
		s.removeTriggerIndexLocked(tk)
		delete(s.triggers, tk)
	}
	delete(s.jobs, key)
	return true
}

// RemoveTrigger removes a trigger, cascade-removing its job if that job is
// then orphaned and non-durable.
func (s *RAMJobStore) RemoveTrigger(key TriggerKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeTriggerLocked(key)
}

func (s *RAMJobStore) removeTriggerLocked(key TriggerKey) bool {
	t, ok := s.triggers[key]
	if !ok {
		return false
	}
	delete(s.triggers, key)
	s.removeTriggerIndexLocked(key)

	job, ok := s.jobs[t.JobKey()]
	if !ok {
		return true
	}
	delete(job.triggers, key)
	if len(job.triggers) == 0 && !job.detail.Durable {
		delete(s.jobs, t.JobKey())
	}
	return true
}

func (s *RAMJobStore) insertIndexLocked(key TriggerKey) {
	s.index = append(s.index, key)
	s.resortLocked()
}

func (s *RAMJobStore) removeTriggerIndexLocked(key TriggerKey) {
	for i, k := range s.index {
		if k == key {
			s.index = append(s.index[:i], s.index[i+1:]...)
			return
		}
	}
}

// resortLocked keeps index ordered (nextFireTime asc, priority desc, name
// asc); triggers with no nextFireTime (COMPLETE, or awaiting first compute)
// sort last.
func (s *RAMJobStore) resortLocked() {
	sort.SliceStable(s.index, func(i, j int) bool {
		ti, tj := s.triggers[s.index[i]], s.triggers[s.index[j]]
		fi, iok := ti.NextFireTime()
		fj, jok := tj.NextFireTime()
		switch {
		case iok && !jok:
			return true
		case !iok && jok:
			return false
		case !iok && !jok:
			return ti.Key().Name < tj.Key().Name
		case !fi.Equal(fj):
			return fi.Before(fj)
		case ti.Priority() != tj.Priority():
			return ti.Priority() > tj.Priority()
		default:
			return ti.Key().Name < tj.Key().Name
		}
	})
}

// AcquireNextTriggers returns up to maxCount NORMAL triggers whose
// nextFireTime <= noLaterThan+window, in (fireTime asc, priority desc, name
// asc) order, marking them ACQUIRED. Triggers of a BLOCKED job are skipped.
func (s *RAMJobStore) AcquireNextTriggers(noLaterThan time.Time, maxCount int, window time.Duration) []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := noLaterThan.Add(window)
	out := make([]Trigger, 0, maxCount)
	claimed := make(map[JobKey]struct{}) // non-concurrent jobs already selected in this scan
	for _, key := range s.index {
		if len(out) >= maxCount {
			break
		}
		t := s.triggers[key]
		if t.State() != StateNormal {
			continue
		}
		nf, ok := t.NextFireTime()
		if !ok || nf.After(cutoff) {
			break // index is sorted; nothing further can qualify
		}
		job, ok := s.jobs[t.JobKey()]
		if ok && job.blocked && job.detail.DisallowConcurrentExecution {
			continue
		}
		if ok && job.detail.DisallowConcurrentExecution {
			if _, already := claimed[t.JobKey()]; already {
				continue
			}
			claimed[t.JobKey()] = struct{}{}
		}
		t.setState(StateAcquired)
		out = append(out, t)
	}
	return out
}

// ReleaseAcquiredTrigger returns an acquired-but-not-fired trigger to NORMAL.
func (s *RAMJobStore) ReleaseAcquiredTrigger(t Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.State() == StateAcquired {
		t.setState(StateNormal)
	}
}

// TriggersFired advances each trigger past its current fire: computes its
// merged data, sets previous/next fire time, and either reinserts it at its
// new position or finalizes it as COMPLETE. Firing a trigger of a
// non-concurrent job marks that job blocked, so AcquireNextTriggers skips its
// other triggers until TriggeredJobComplete; their own State() stays as it was.
func (s *RAMJobStore) TriggersFired(triggers []Trigger) []FiredResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]FiredResult, 0, len(triggers))
	for _, t := range triggers {
		if t.State() != StateAcquired {
			continue
		}
		job, ok := s.jobs[t.JobKey()]
		if !ok {
			s.removeTriggerLocked(t.Key())
			continue
		}

		scheduled, _ := t.NextFireTime()
		t.setState(StateExecuting)
		t.fire()

		results = append(results, FiredResult{
			Trigger:  t,
			Job:      job.detail.Clone(),
			FireTime: scheduled,
			Data:     job.detail.Data.Merge(t.Data()),
		})

		if job.detail.DisallowConcurrentExecution {
			job.blocked = true
		}
	}
	s.resortLocked()
	return results
}

// TriggeredJobComplete is the runner's final callback: it unblocks any
// sibling triggers of a now-idle non-concurrent job, and finalizes t (back
// to NORMAL, or removed if COMPLETE/ERROR).
func (s *RAMJobStore) TriggeredJobComplete(t Trigger, jobKey JobKey, code CompletionCode) {
	s.mu.Lock()

	unblocked := false
	if job, ok := s.jobs[jobKey]; ok {
		unblocked = job.blocked
		job.blocked = false
	}

	switch t.State() {
	case StateComplete, StateError:
		s.removeTriggerLocked(t.Key())
	default:
		t.setState(StateNormal)
	}
	s.resortLocked()
	onUnblock := s.onUnblock
	s.mu.Unlock()

	if unblocked && onUnblock != nil {
		onUnblock()
	}
}

// PauseTrigger moves a NORMAL or ACQUIRED trigger to PAUSED.
func (s *RAMJobStore) PauseTrigger(key TriggerKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[key]
	if !ok {
		return false
	}
	if st := t.State(); st != StateNormal && st != StateAcquired {
		return false
	}
	t.setState(StatePaused)
	return true
}

// ResumeTrigger moves a PAUSED trigger back to NORMAL.
func (s *RAMJobStore) ResumeTrigger(key TriggerKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[key]
	if !ok || t.State() != StatePaused {
		return false
	}
	t.setState(StateNormal)
	s.resortLocked()
	return true
}

// PauseJob pauses every trigger belonging to key.
func (s *RAMJobStore) PauseJob(key JobKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[key]
	if !ok {
		return false
	}
	for tk := range job.triggers {
		s.triggers[tk].setState(StatePaused)
	}
	return true
}

// ResumeJob resumes every paused trigger belonging to key.
func (s *RAMJobStore) ResumeJob(key JobKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[key]
	if !ok {
		return false
	}
	for tk := range job.triggers {
		if t := s.triggers[tk]; t.State() == StatePaused {
			t.setState(StateNormal)
		}
	}
	s.resortLocked()
	return true
}

// GetJob returns a snapshot of the stored job detail.
func (s *RAMJobStore) GetJob(key JobKey) (JobDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[key]
	if !ok {
		return JobDetail{}, false
	}
	return job.detail.Clone(), true
}

// GetTrigger returns the stored trigger by key.
func (s *RAMJobStore) GetTrigger(key TriggerKey) (Trigger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[key]
	return t, ok
}

// GetTriggersOfJob returns every trigger currently targeting key.
func (s *RAMJobStore) GetTriggersOfJob(key JobKey) []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[key]
	if !ok {
		return nil
	}
	out := make([]Trigger, 0, len(job.triggers))
	for tk := range job.triggers {
		out = append(out, s.triggers[tk])
	}
	return out
}

// JobKeys returns every stored job key.
func (s *RAMJobStore) JobKeys() []JobKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobKey, 0, len(s.jobs))
	for k := range s.jobs {
		out = append(out, k)
	}
	return out
}

// JobCount reports how many jobs are currently stored.
func (s *RAMJobStore) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
