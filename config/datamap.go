package config

import (
	"strings"

	"github.com/gobs/args"

	"github.com/netresearch/chronos/core"
)

// parseDataMapAnnotation tokenizes a "KEY:VALUE KEY2:VALUE2" string into a
// JobDataMap, using gobs/args for shell-aware splitting (so a quoted value
// may itself contain spaces) before the first-colon split per token.
func parseDataMapAnnotation(annotation string) core.JobDataMap {
	if annotation == "" {
		return nil
	}
	out := make(core.JobDataMap)
	for _, tok := range args.GetArgs(annotation) {
		key, value, ok := strings.Cut(tok, ":")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

// mergedDataMap combines an explicit data-map table with the annotation
// string form; explicit table entries win on key collision.
func mergedDataMap(table map[string]string, annotation string) core.JobDataMap {
	out := parseDataMapAnnotation(annotation)
	if out == nil {
		out = make(core.JobDataMap)
	}
	for k, v := range table {
		out[k] = v
	}
	return out
}
