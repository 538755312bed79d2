package listeners_test

import (
	"testing"

	"github.com/armon/circbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/core"
	"github.com/netresearch/chronos/listeners"
)

func newExecutionContext(t *testing.T) *core.JobContext {
	t.Helper()
	buf, err := circbuf.NewBuffer(1024)
	require.NoError(t, err)
	return &core.JobContext{
		JobKey:    core.NewJobKey("report", ""),
		Execution: &core.Execution{ID: "exec-1", Log: buf},
	}
}

func TestMailJobListener_OnlyOnErrorSkipsSuccessfulRun(t *testing.T) {
	// dialer is left nil (NewMailJobListener not called) so the listener
	// cannot touch the network even if the OnlyOnError gate were wrong.
	l := &listeners.MailJobListener{Config: listeners.MailConfig{OnlyOnError: true}}
	ctx := newExecutionContext(t)

	assert.NotPanics(t, func() {
		l.JobWasExecuted(ctx, core.CompletionSuccess, nil)
	})
}

func TestMailJobListener_NotifiesOnFailureWithoutDialer(t *testing.T) {
	l := &listeners.MailJobListener{Config: listeners.MailConfig{OnlyOnError: true, EmailTo: "ops@example.com"}}
	ctx := newExecutionContext(t)
	_, err := ctx.Execution.Write([]byte("boom"))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		l.JobWasExecuted(ctx, core.CompletionExecutionThrewException, assert.AnError)
	})
}
