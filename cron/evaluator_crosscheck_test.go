package cron_test

import (
	"testing"
	"time"

	robfigcron "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/cron"
)

// Standard (non-Quartz-specific) expressions should agree with robfig/cron's
// widely-used 5-field evaluator once translated to our 6-field dialect with a
// leading "0" seconds field and "?" on whichever day field robfig treats as
// "every". This is a differential-testing oracle, not a correctness proof of
// our Quartz extensions (L/W/#n/year have no robfig equivalent).
func TestNext_CrossCheckAgainstRobfigCron(t *testing.T) {
	cases := []struct {
		ours   string
		robfig string
	}{
		{"0 30 9 * * ?", "30 9 * * *"},
		{"0 0 0 1 * ?", "0 0 1 * *"},
		{"0 15 10 ? * MON-FRI", "15 10 * * MON-FRI"},
		{"0 0 */2 * * ?", "0 */2 * * *"},
	}

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, c := range cases {
		ours, err := cron.Parse(c.ours)
		require.NoError(t, err)

		robfigSchedule, err := robfigcron.ParseStandard(c.robfig)
		require.NoError(t, err)

		cur := start
		for i := 0; i < 20; i++ {
			ourNext, ok := ours.Next(cur, time.UTC)
			require.True(t, ok)
			robfigNext := robfigSchedule.Next(cur)

			assert.Equal(t, robfigNext, ourNext, "expr %q vs %q at step %d", c.ours, c.robfig, i)
			cur = ourNext
		}
	}
}
