package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/chronos/config"
)

const sampleYAML = `
schedule:
  jobs:
    - name: report
      job-class: report-job
      durability: true
      data-map:
        format: pdf
  triggers:
    - variant: cron
      name: nightly
      job-name: report
      cron-expression: "0 0 2 * * ?"
      time-zone: UTC
`

func TestParseYAML_DecodesJobsAndTriggers(t *testing.T) {
	doc, err := config.ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	require.Len(t, doc.Schedule.Jobs, 1)
	assert.Equal(t, "report", doc.Schedule.Jobs[0].Name)
	assert.Equal(t, "report-job", doc.Schedule.Jobs[0].JobClass)
	assert.True(t, doc.Schedule.Jobs[0].Durability)

	require.Len(t, doc.Schedule.Triggers, 1)
	assert.Equal(t, "cron", doc.Schedule.Triggers[0].Variant)
	assert.Equal(t, "0 0 2 * * ?", doc.Schedule.Triggers[0].CronExpression)
	assert.Equal(t, 5, doc.Schedule.Triggers[0].Priority) // creasty/defaults default:"5"
}

func TestParseYAML_RejectsMalformedDocument(t *testing.T) {
	_, err := config.ParseYAML([]byte("schedule: [this, is, not, a, mapping"))
	require.Error(t, err)
}

func TestParseYAML_RejectsUnknownField(t *testing.T) {
	_, err := config.ParseYAML([]byte(`
schedule:
  jobs:
    - name: report
      job-class: report-job
      jobclas: report-job
`))
	require.Error(t, err)
}

func TestValidate_RejectsMissingRequiredFields(t *testing.T) {
	doc, err := config.ParseYAML([]byte(`
schedule:
  jobs:
    - job-class: report-job
`))
	require.NoError(t, err)
	require.Error(t, config.Validate(doc)) // job name is required
}

func TestValidate_RequiresCronExpressionForCronVariant(t *testing.T) {
	doc, err := config.ParseYAML([]byte(`
schedule:
  triggers:
    - variant: cron
      name: nightly
      job-name: report
`))
	require.NoError(t, err)
	require.Error(t, config.Validate(doc))
}
