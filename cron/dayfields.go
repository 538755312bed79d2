package cron

import (
	"strconv"
	"strings"
)

// domField is the day-of-month field, including the `L` (last day) and `W`
// (nearest weekday) extensions.
type domField struct {
	wildcard         bool
	question         bool
	days             []int // plain day-of-month values, sorted
	last             bool  // "L": last day of month
	lastWeekday      bool  // "LW": nearest weekday to the last day of month
	nearestWeekdayTo int   // "<n>W": nearest weekday to day n, 0 if unset
}

func parseDOM(expr, raw string, column int) (*domField, error) {
	f := &domField{}
	switch {
	case raw == "?":
		f.question = true
		return f, nil
	case raw == "*":
		f.wildcard = true
		return f, nil
	case raw == "L":
		f.last = true
		return f, nil
	case raw == "LW" || raw == "WL":
		f.lastWeekday = true
		return f, nil
	case strings.HasSuffix(raw, "W"):
		n, err := strconv.Atoi(raw[:len(raw)-1])
		if err != nil || n < 1 || n > 31 {
			return nil, parseErr(expr, "day-of-month", column, "expected <day>W with day in 1-31")
		}
		f.nearestWeekdayTo = n
		return f, nil
	default:
		days, err := parseList(expr, fieldSpec{name: "day-of-month", min: 1, max: 31}, raw, column)
		if err != nil {
			return nil, err
		}
		f.days = days
		return f, nil
	}
}

// dowField is the day-of-week field, including the `L` (last occurrence) and
// `#n` (nth occurrence) extensions. Weekdays use Go's 0=Sunday..6=Saturday.
type dowField struct {
	wildcard       bool
	question       bool
	values         []int         // plain weekday values
	lastOccurrence map[int]bool  // weekday -> "last occurrence in month" wanted
	nthOccurrence  map[int][]int // weekday -> list of wanted occurrence numbers (1..5)
}

func parseDOW(expr, raw string, column int) (*dowField, error) {
	f := &dowField{lastOccurrence: map[int]bool{}, nthOccurrence: map[int][]int{}}
	if raw == "?" {
		f.question = true
		return f, nil
	}
	if raw == "*" {
		f.wildcard = true
		return f, nil
	}

	var values []int
	col := column
	for _, tok := range strings.Split(raw, ",") {
		switch {
		case strings.HasSuffix(tok, "L"):
			wd, err := resolveValue(expr, fieldSpec{name: "day-of-week", min: 0, max: 7, names: dayNames}, tok[:len(tok)-1], col)
			if err != nil {
				return nil, err
			}
			if wd < 0 || wd > 7 {
				return nil, parseErr(expr, "day-of-week", col, "value out of range")
			}
			f.lastOccurrence[normalizeWeekday(wd)] = true
		case strings.Contains(tok, "#"):
			parts := strings.SplitN(tok, "#", 2)
			wd, err := resolveValue(expr, fieldSpec{name: "day-of-week", min: 0, max: 7, names: dayNames}, parts[0], col)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 1 || n > 5 {
				return nil, parseErr(expr, "day-of-week", col, "#n must be between 1 and 5")
			}
			if wd < 0 || wd > 7 {
				return nil, parseErr(expr, "day-of-week", col, "value out of range")
			}
			wd = normalizeWeekday(wd)
			f.nthOccurrence[wd] = append(f.nthOccurrence[wd], n)
		default:
			vals, err := parseRangeToken(expr, fieldSpec{name: "day-of-week", min: 0, max: 7, names: dayNames}, tok, col)
			if err != nil {
				return nil, err
			}
			for _, v := range vals {
				values = append(values, normalizeWeekday(v))
			}
		}
		col += len(tok) + 1
	}

	seen := map[int]bool{}
	for _, v := range values {
		seen[v] = true
	}
	f.values = sortedKeys(seen)
	return f, nil
}

// normalizeWeekday folds 7, accepted as an alternate spelling of Sunday, down
// to 0 so weekdays stay in Go's 0-6 range.
func normalizeWeekday(v int) int {
	if v == 7 {
		return 0
	}
	return v
}
