package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/trustify-project/catalogd/internal/query/token"
)

// buildTimeExpr parses raw as a Timestamp or Date value (spec.md
// §4.A) and renders the comparison. forceDate is set for columns
// declared Kind == Date, which always compare at day precision
// regardless of what the input resolved to.
func buildTimeExpr(target string, op token.Operator, raw string, forceDate bool, clock func() time.Time) (Expr, error) {
	if op == token.Like || op == token.NotLike {
		return Expr{}, fmt.Errorf("operator %s is not supported for time fields", op)
	}
	sym, ok := opSymbol(op)
	if !ok {
		return Expr{}, fmt.Errorf("operator %s is not supported for time fields", op)
	}

	t, dateOnly, err := parseTimeValue(raw, clock)
	if err != nil {
		return Expr{}, err
	}
	dateOnly = dateOnly || forceDate

	if dateOnly {
		return Expr{SQL: target + "::date " + sym + " ?", Args: []any{t.Format("2006-01-02")}}, nil
	}
	return Expr{SQL: target + " " + sym + " ?", Args: []any{t}}, nil
}

// parseTimeValue tries, in order: RFC-3339 datetime, a bare date, and
// finally the human-time phrase table, all resolved against clock()
// when a relative phrase is used. dateOnly reports whether the result
// should be compared at day precision.
func parseTimeValue(raw string, clock func() time.Time) (t time.Time, dateOnly bool, err error) {
	if ts, e := time.Parse(time.RFC3339, raw); e == nil {
		return ts, false, nil
	}
	if d, e := time.Parse("2006-01-02", raw); e == nil {
		return d, true, nil
	}
	if ht, isDate, ok := resolveHumanTime(raw, clock()); ok {
		return ht, isDate, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid timestamp %q", raw)
}

var (
	reRelative  = regexp.MustCompile(`^(?:(an?|[0-9]+)\s+)?(second|minute|hour|day|week|month|year)s?\s+ago$`)
	reInFuture  = regexp.MustCompile(`^in\s+(?:(an?|[0-9]+)\s+)?(second|minute|hour|day|week|month|year)s?$`)
	reThisDow   = regexp.MustCompile(`^this\s+(sunday|monday|tuesday|wednesday|thursday|friday|saturday)(?:\s+([0-9]{1,2}):([0-9]{2}))?$`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// resolveHumanTime resolves phrases like "yesterday", "last week",
// "3 days ago", "now", "in 2 hours", and "this Friday 17:00" against
// now. ok is false when raw isn't a recognized phrase.
func resolveHumanTime(raw string, now time.Time) (result time.Time, dateOnly bool, ok bool) {
	phrase := strings.ToLower(strings.TrimSpace(raw))

	switch phrase {
	case "now":
		return now, false, true
	case "today":
		return dateOf(now), true, true
	case "yesterday":
		return dateOf(now.AddDate(0, 0, -1)), true, true
	case "tomorrow":
		return dateOf(now.AddDate(0, 0, 1)), true, true
	case "last week", "a week ago":
		return dateOf(now.AddDate(0, 0, -7)), true, true
	case "next week":
		return dateOf(now.AddDate(0, 0, 7)), true, true
	case "a year ago":
		return dateOf(now.AddDate(-1, 0, 0)), true, true
	case "a month ago":
		return dateOf(now.AddDate(0, -1, 0)), true, true
	case "a day ago":
		return dateOf(now.AddDate(0, 0, -1)), true, true
	}

	if m := reRelative.FindStringSubmatch(phrase); m != nil {
		n := amount(m[1])
		return applyUnit(now, m[2], -n), m[2] == "day" || m[2] == "week" || m[2] == "month" || m[2] == "year", true
	}
	if m := reInFuture.FindStringSubmatch(phrase); m != nil {
		n := amount(m[1])
		return applyUnit(now, m[2], n), m[2] == "day" || m[2] == "week" || m[2] == "month" || m[2] == "year", true
	}
	if m := reThisDow.FindStringSubmatch(phrase); m != nil {
		target := weekdays[m[1]]
		d := now
		for d.Weekday() != target {
			d = d.AddDate(0, 0, 1)
		}
		if m[2] != "" {
			hh, _ := strconv.Atoi(m[2])
			mm, _ := strconv.Atoi(m[3])
			return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, d.Location()), false, true
		}
		return dateOf(d), true, true
	}

	return time.Time{}, false, false
}

func amount(s string) int {
	switch s {
	case "", "a", "an":
		return 1
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 1
		}
		return n
	}
}

func applyUnit(t time.Time, unit string, n int) time.Time {
	switch unit {
	case "second":
		return t.Add(time.Duration(n) * time.Second)
	case "minute":
		return t.Add(time.Duration(n) * time.Minute)
	case "hour":
		return t.Add(time.Duration(n) * time.Hour)
	case "day":
		return dateOf(t.AddDate(0, 0, n))
	case "week":
		return dateOf(t.AddDate(0, 0, 7*n))
	case "month":
		return dateOf(t.AddDate(0, n, 0))
	case "year":
		return dateOf(t.AddDate(n, 0, 0))
	default:
		return t
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
