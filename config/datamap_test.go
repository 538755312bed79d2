package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netresearch/chronos/core"
)

func TestMergedDataMap_ExplicitTableWinsOverAnnotation(t *testing.T) {
	got := mergedDataMap(map[string]string{"format": "csv"}, "format:pdf region:eu")
	assert.Equal(t, core.JobDataMap{"format": "csv", "region": "eu"}, got)
}

func TestMergedDataMap_AnnotationOnlyIsTokenizedOnFirstColon(t *testing.T) {
	got := mergedDataMap(nil, `url:"https://example.com/a:b" retries:3`)
	assert.Equal(t, "https://example.com/a:b", got["url"])
	assert.Equal(t, "3", got["retries"])
}

func TestParseDataMapAnnotation_EmptyStringYieldsNil(t *testing.T) {
	assert.Nil(t, parseDataMapAnnotation(""))
}
