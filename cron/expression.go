package cron

import "time"

const (
	defaultMinYear = 1970
	defaultMaxYear = 2099

	// maxDayIterations bounds the day-level search loop in Next so a
	// never-satisfiable expression (e.g. day-of-month 31 in February only)
	// terminates quickly instead of looping until the year range is exhausted
	// one day at a time.
	maxDayIterations = (defaultMaxYear-defaultMinYear+2)*366 + 10
)

// Expression is a parsed cron schedule, ready to compute fire times.
type Expression struct {
	raw string

	seconds []int
	minutes []int
	hours   []int
	months  []int
	years   []int

	dom *domField
	dow *dowField
}

// String returns the original expression text.
func (e *Expression) String() string { return e.raw }

// Next returns the smallest instant strictly after `after`, evaluated in
// loc, that satisfies the expression, or ok=false if no such instant exists
// within the configured year range.
func (e *Expression) Next(after time.Time, loc *time.Location) (next time.Time, ok bool) {
	t := after.In(loc).Truncate(time.Second).Add(time.Second)

	for i := 0; i < maxDayIterations; i++ {
		y := t.Year()
		if y > e.years[len(e.years)-1] {
			return time.Time{}, false
		}
		if !contains(e.years, y) {
			ny, wrapped := nextInSet(e.years, y)
			if wrapped {
				return time.Time{}, false
			}
			t = time.Date(ny, 1, 1, 0, 0, 0, 0, loc)
			continue
		}

		mo := int(t.Month())
		if !contains(e.months, mo) {
			nmo, wrapped := nextInSet(e.months, mo)
			if wrapped {
				t = time.Date(y+1, 1, 1, 0, 0, 0, 0, loc)
				continue
			}
			t = time.Date(y, time.Month(nmo), 1, 0, 0, 0, 0, loc)
			continue
		}

		day := t.Day()
		if !e.dayMatches(t) {
			t = time.Date(y, time.Month(mo), day+1, 0, 0, 0, 0, loc)
			continue
		}

		hr := t.Hour()
		if !contains(e.hours, hr) {
			nh, wrapped := nextInSet(e.hours, hr)
			if wrapped {
				t = time.Date(y, time.Month(mo), day+1, 0, 0, 0, 0, loc)
				continue
			}
			t = time.Date(y, time.Month(mo), day, nh, 0, 0, 0, loc)
			continue
		}

		mi := t.Minute()
		if !contains(e.minutes, mi) {
			nm, wrapped := nextInSet(e.minutes, mi)
			if wrapped {
				t = time.Date(y, time.Month(mo), day, hr+1, 0, 0, 0, loc)
				continue
			}
			t = time.Date(y, time.Month(mo), day, hr, nm, 0, 0, loc)
			continue
		}

		se := t.Second()
		if !contains(e.seconds, se) {
			ns, wrapped := nextInSet(e.seconds, se)
			if wrapped {
				t = time.Date(y, time.Month(mo), day, hr, mi+1, 0, 0, loc)
				continue
			}
			t = time.Date(y, time.Month(mo), day, hr, mi, ns, 0, loc)
			continue
		}

		return t, true
	}

	return time.Time{}, false
}

// dayMatches evaluates the day-of-month/day-of-week constraint for t's
// calendar day. Exactly one of dom/dow governs, per the parsed `?` field.
func (e *Expression) dayMatches(t time.Time) bool {
	if e.dom.question {
		return e.dowMatches(t)
	}
	return e.domMatches(t)
}

func (e *Expression) domMatches(t time.Time) bool {
	f := e.dom
	if f.wildcard {
		return true
	}
	day := t.Day()
	switch {
	case f.last:
		return day == lastDayOfMonth(t)
	case f.lastWeekday:
		return day == nearestWeekday(lastDayOfMonth(t), t)
	case f.nearestWeekdayTo != 0:
		return day == nearestWeekday(f.nearestWeekdayTo, t)
	default:
		return contains(f.days, day)
	}
}

func (e *Expression) dowMatches(t time.Time) bool {
	f := e.dow
	if f.wildcard {
		return true
	}
	weekday := int(t.Weekday())
	day := t.Day()

	if contains(f.values, weekday) {
		return true
	}
	if f.lastOccurrence[weekday] && day+7 > lastDayOfMonth(t) {
		return true
	}
	if ns, ok := f.nthOccurrence[weekday]; ok {
		occurrence := (day-1)/7 + 1
		for _, n := range ns {
			if n == occurrence {
				return true
			}
		}
	}
	return false
}

func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// nearestWeekday returns the weekday (Mon-Fri) nearest to day `d` of t's
// month, without crossing into an adjacent month.
func nearestWeekday(d int, t time.Time) int {
	last := lastDayOfMonth(t)
	if d > last {
		d = last
	}
	candidate := time.Date(t.Year(), t.Month(), d, 0, 0, 0, 0, t.Location())
	switch candidate.Weekday() {
	case time.Saturday:
		if d > 1 {
			return d - 1
		}
		return d + 2
	case time.Sunday:
		if d < last {
			return d + 1
		}
		return d - 2
	default:
		return d
	}
}
