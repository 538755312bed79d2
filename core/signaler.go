package core

// signaler wakes the scheduler loop out of its idle wait whenever the store
// changes in a way that might move up the earliest fire time (a new trigger
// is stored, a paused trigger resumes, and so on).
type signaler struct {
	ch chan struct{}
}

func newSignaler() *signaler {
	return &signaler{ch: make(chan struct{}, 1)}
}

// signal wakes the loop, coalescing with any pending-but-unconsumed signal.
func (s *signaler) signal() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *signaler) channel() <-chan struct{} { return s.ch }
