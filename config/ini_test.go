package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/config"
)

const sampleINI = `
[job "report"]
job-class = report-job
durability = true

[trigger.simple "every-hour"]
job-name = report
repeat-interval = 1h
repeat-count = -1

[trigger.cron "nightly"]
job-name = report
cron-expression = 0 0 2 * * *
`

func TestParseINI_DecodesJobAndTriggerSections(t *testing.T) {
	doc, err := config.ParseINI([]byte(sampleINI))
	require.NoError(t, err)

	require.Len(t, doc.Schedule.Jobs, 1)
	assert.Equal(t, "report", doc.Schedule.Jobs[0].Name)
	assert.Equal(t, "report-job", doc.Schedule.Jobs[0].JobClass)
	assert.True(t, doc.Schedule.Jobs[0].Durability)

	require.Len(t, doc.Schedule.Triggers, 2)
	byVariant := map[string]config.TriggerDoc{}
	for _, tr := range doc.Schedule.Triggers {
		byVariant[tr.Variant] = tr
	}

	simple, ok := byVariant["simple"]
	require.True(t, ok)
	assert.Equal(t, "every-hour", simple.Name)
	assert.Equal(t, "1h", simple.RepeatInterval)

	cron, ok := byVariant["cron"]
	require.True(t, ok)
	assert.Equal(t, "0 0 2 * * *", cron.CronExpression)
}

func TestParseINI_RejectsUnknownKeyInSection(t *testing.T) {
	const withTypo = `
[job "report"]
job-class = report-job
durabilty = true
`
	_, err := config.ParseINI([]byte(withTypo))
	assert.Error(t, err)
}
