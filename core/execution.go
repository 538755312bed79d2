package core

import (
	"time"

	"github.com/armon/circbuf"
	"github.com/google/uuid"
)

// executionLogSize bounds how much diagnostic output one execution retains;
// older bytes are dropped once the ring fills.
const executionLogSize = 64 * 1024

// Execution is the identity and diagnostic record of one job run, attached
// to the JobContext that carries it so `stopJob` and listeners can refer to
// "this specific fire" unambiguously.
type Execution struct {
	ID        string
	StartTime time.Time
	Duration  time.Duration

	// Log is a bounded ring buffer; user code may write to it via
	// JobContext.Execution.Log to leave a trail without the runner holding
	// unbounded memory for a runaway job.
	Log *circbuf.Buffer
}

func newExecution(start time.Time) *Execution {
	buf, err := circbuf.NewBuffer(executionLogSize)
	if err != nil {
		// circbuf only errors on a non-positive size, which executionLogSize
		// never is; treat as unreachable rather than threading the error
		// through every call site that wants an Execution.
		panic(err)
	}
	return &Execution{ID: uuid.NewString(), StartTime: start, Log: buf}
}

func (e *Execution) finish(end time.Time) {
	e.Duration = end.Sub(e.StartTime)
}

// Write lets Execution double as an io.Writer, so job code can pass
// ctx.Execution directly to anything that writes diagnostic output.
func (e *Execution) Write(p []byte) (int, error) { return e.Log.Write(p) }
