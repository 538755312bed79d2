package cron

import (
	"strings"
)

// Parse builds an Expression from a 6 or 7 field cron string:
// seconds minutes hours day-of-month month day-of-week [year].
// A missing year field defaults to "*", covering 1970-2099.
func Parse(expr string) (*Expression, error) {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 6:
		fields = append(fields, "*")
	case 7:
		// already complete
	default:
		return nil, parseErr(expr, "expression", 0, "expected 6 or 7 whitespace-delimited fields")
	}

	e := &Expression{raw: expr}

	var err error
	if e.seconds, err = parseList(expr, fieldSpec{name: "seconds", min: 0, max: 59}, fields[0], 0); err != nil {
		return nil, err
	}
	if e.minutes, err = parseList(expr, fieldSpec{name: "minutes", min: 0, max: 59}, fields[1], 0); err != nil {
		return nil, err
	}
	if e.hours, err = parseList(expr, fieldSpec{name: "hours", min: 0, max: 23}, fields[2], 0); err != nil {
		return nil, err
	}
	if e.dom, err = parseDOM(expr, fields[3], 0); err != nil {
		return nil, err
	}
	if e.months, err = parseList(expr, fieldSpec{name: "month", min: 1, max: 12, names: monthNames}, fields[4], 0); err != nil {
		return nil, err
	}
	if e.dow, err = parseDOW(expr, fields[5], 0); err != nil {
		return nil, err
	}
	if e.years, err = parseList(expr, fieldSpec{name: "year", min: defaultMinYear, max: defaultMaxYear}, fields[6], 0); err != nil {
		return nil, err
	}

	if e.dom.question == e.dow.question {
		return nil, parseErr(expr, "day-of-month/day-of-week", 0,
			"exactly one of day-of-month and day-of-week must be '?'")
	}

	return e, nil
}

// MustParse is like Parse but panics on error; intended for static
// expressions known at compile time (tests, defaults).
func MustParse(expr string) *Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}
