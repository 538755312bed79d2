package cron

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

var monthNames = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// dayNames maps weekday abbreviations to Go's 0=Sunday..6=Saturday convention.
var dayNames = map[string]int{
	"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
}

// fieldSpec describes the bounds and optional name table of a plain numeric field.
type fieldSpec struct {
	name  string
	min   int
	max   int
	names map[string]int
}

// parseList splits a comma-separated field value into its tokens and resolves
// each into a set of concrete integer values within [spec.min, spec.max].
func parseList(expr string, spec fieldSpec, raw string, column int) ([]int, error) {
	if raw == "*" || raw == "?" {
		return fullRange(spec.min, spec.max), nil
	}

	seen := make(map[int]bool)
	col := column
	for _, tok := range strings.Split(raw, ",") {
		vals, err := parseRangeToken(expr, spec, tok, col)
		if err != nil {
			return nil, err
		}
		for _, v := range vals {
			seen[v] = true
		}
		col += len(tok) + 1
	}
	return sortedKeys(seen), nil
}

// parseRangeToken parses a single token: "n", "n-m", "n/s", "n-m/s" or "*/s".
func parseRangeToken(expr string, spec fieldSpec, tok string, column int) ([]int, error) {
	step := 1
	base := tok
	if idx := strings.IndexByte(tok, '/'); idx >= 0 {
		base = tok[:idx]
		stepStr := tok[idx+1:]
		s, err := strconv.Atoi(stepStr)
		if err != nil || s <= 0 {
			return nil, parseErr(expr, spec.name, column+idx+1, "step must be a positive integer")
		}
		step = s
	}

	var lo, hi int
	switch {
	case base == "*":
		lo, hi = spec.min, spec.max
	case strings.Contains(base, "-"):
		parts := strings.SplitN(base, "-", 2)
		var err error
		lo, err = resolveValue(expr, spec, parts[0], column)
		if err != nil {
			return nil, err
		}
		hi, err = resolveValue(expr, spec, parts[1], column+len(parts[0])+1)
		if err != nil {
			return nil, err
		}
	default:
		v, err := resolveValue(expr, spec, base, column)
		if err != nil {
			return nil, err
		}
		lo, hi = v, v
		if idx := strings.IndexByte(tok, '/'); idx >= 0 {
			// "a/b" without a range means "from a to field max, step b" (standard cron semantics).
			hi = spec.max
		}
	}

	if lo < spec.min || hi > spec.max || lo > hi {
		return nil, parseErr(expr, spec.name, column, "value out of range")
	}

	var out []int
	for v := lo; v <= hi; v += step {
		out = append(out, v)
	}
	return out, nil
}

func resolveValue(expr string, spec fieldSpec, tok string, column int) (int, error) {
	tok = strings.TrimSpace(tok)
	if spec.names != nil {
		if v, ok := spec.names[upper.String(tok)]; ok {
			return v, nil
		}
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, parseErr(expr, spec.name, column, "expected a number"+nameHint(spec))
	}
	return v, nil
}

func nameHint(spec fieldSpec) string {
	if spec.names != nil {
		return " or a recognized name"
	}
	return ""
}

func fullRange(min, max int) []int {
	out := make([]int, 0, max-min+1)
	for v := min; v <= max; v++ {
		out = append(out, v)
	}
	return out
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// contains reports whether v is present in the sorted slice set.
func contains(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// nextInSet returns the smallest value in set that is >= cur, or the
// smallest value in set with wrapped=true if none is >= cur (meaning the
// caller must carry into the next higher unit).
func nextInSet(set []int, cur int) (value int, wrapped bool) {
	for _, v := range set {
		if v >= cur {
			return v, false
		}
	}
	return set[0], true
}
