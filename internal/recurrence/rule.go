package recurrence

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateFormat is the naive calendar-date form used throughout: no timezone,
// no time-of-day component.
const DateFormat = "2006-01-02"

type Kind int

const (
	Once Kind = iota
	Daily
	Weekly
	Monthly
)

var kindNames = map[Kind]string{
	Daily:   "DAILY",
	Weekly:  "WEEKLY",
	Monthly: "MONTHLY",
}

var kindFromName = map[string]Kind{
	"DAILY":   Daily,
	"WEEKLY":  Weekly,
	"MONTHLY": Monthly,
}

var dayNames = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SUN",
	time.Monday:    "MON",
	time.Tuesday:   "TUE",
	time.Wednesday: "WED",
	time.Thursday:  "THU",
	time.Friday:    "FRI",
	time.Saturday:  "SAT",
}

var timeOfDayPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Rule is a tagged recurrence variant. Each kind carries only the fields that
// apply to it: Weekdays is weekly-only, TimeOfDay is daily-only, Until never
// applies to a one-time rule.
type Rule struct {
	Kind      Kind
	Start     time.Time
	Until     *time.Time     // nil = no end
	Weekdays  []time.Weekday // WEEKLY: which days, never empty
	TimeOfDay string         // DAILY: "HH:MM", empty = all day
}

// Parse parses a serialized rule like "FREQ=WEEKLY;START=2024-01-01;BYDAY=MON,WED"
// or "ONCE;START=2024-01-01". The result is always validated.
func Parse(rule string) (Rule, error) {
	if rule == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	r := Rule{Kind: Once}
	var hasFreq, hasStart bool

	parts := strings.Split(rule, ";")
	for _, part := range parts {
		if part == "ONCE" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Rule{}, fmt.Errorf("invalid rule part: %q", part)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "FREQ":
			k, ok := kindFromName[val]
			if !ok {
				return Rule{}, fmt.Errorf("unknown frequency: %q", val)
			}
			r.Kind = k
			hasFreq = true

		case "START":
			t, err := ParseDate(val)
			if err != nil {
				return Rule{}, fmt.Errorf("invalid START: %q", val)
			}
			r.Start = t
			hasStart = true

		case "UNTIL":
			t, err := ParseDate(val)
			if err != nil {
				return Rule{}, fmt.Errorf("invalid UNTIL: %q", val)
			}
			r.Until = &t

		case "BYDAY":
			for _, d := range strings.Split(val, ",") {
				wd, ok := dayNames[strings.TrimSpace(d)]
				if !ok {
					return Rule{}, fmt.Errorf("unknown day: %q", d)
				}
				r.Weekdays = append(r.Weekdays, wd)
			}

		case "TIME":
			r.TimeOfDay = val

		default:
			return Rule{}, fmt.Errorf("unsupported rule key: %q", key)
		}
	}

	if !hasStart {
		return Rule{}, fmt.Errorf("START is required")
	}
	if r.Kind != Once && !hasFreq {
		return Rule{}, fmt.Errorf("FREQ is required for repeating rules")
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// Validate checks the per-kind field invariants.
func (r Rule) Validate() error {
	if r.Start.IsZero() {
		return fmt.Errorf("start date is required")
	}
	switch r.Kind {
	case Once:
		if r.Until != nil || len(r.Weekdays) > 0 || r.TimeOfDay != "" {
			return fmt.Errorf("one-time rule carries no repeat fields")
		}
	case Daily:
		if len(r.Weekdays) > 0 {
			return fmt.Errorf("BYDAY only applies to weekly rules")
		}
		if r.TimeOfDay != "" && !timeOfDayPattern.MatchString(r.TimeOfDay) {
			return fmt.Errorf("invalid time of day: %q", r.TimeOfDay)
		}
	case Weekly:
		if len(r.Weekdays) == 0 {
			return fmt.Errorf("weekly rule requires at least one weekday")
		}
		if r.TimeOfDay != "" {
			return fmt.Errorf("TIME only applies to daily rules")
		}
	case Monthly:
		if len(r.Weekdays) > 0 || r.TimeOfDay != "" {
			return fmt.Errorf("monthly rule carries only START and UNTIL")
		}
	default:
		return fmt.Errorf("unknown rule kind: %d", r.Kind)
	}
	if r.Until != nil && r.Until.Before(dateOnly(r.Start)) {
		return fmt.Errorf("UNTIL precedes START")
	}
	return nil
}

// String serializes the rule back to its text form. Parse(r.String()) == r.
func (r Rule) String() string {
	var parts []string
	if r.Kind == Once {
		parts = append(parts, "ONCE")
	} else {
		parts = append(parts, "FREQ="+kindNames[r.Kind])
	}
	parts = append(parts, "START="+r.Start.Format(DateFormat))

	if len(r.Weekdays) > 0 {
		var days []string
		for _, d := range r.Weekdays {
			days = append(days, dayAbbrev[d])
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	if r.TimeOfDay != "" {
		parts = append(parts, "TIME="+r.TimeOfDay)
	}
	if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.Format(DateFormat))
	}
	return strings.Join(parts, ";")
}

// IsDue reports whether the rule produces an occurrence on the given calendar
// date. Pure and deterministic: past and future dates evaluate the same way.
func (r Rule) IsDue(date time.Time) bool {
	d := dateOnly(date)
	switch r.Kind {
	case Once:
		return d.Equal(dateOnly(r.Start))
	case Daily:
		return r.inRange(d)
	case Weekly:
		if !r.inRange(d) {
			return false
		}
		for _, wd := range r.Weekdays {
			if d.Weekday() == wd {
				return true
			}
		}
		return false
	case Monthly:
		// Months without the start's day-of-month produce no occurrence:
		// a rule starting on the 31st is never due in a 30-day month.
		return r.inRange(d) && d.Day() == r.Start.Day()
	}
	return false
}

func (r Rule) inRange(d time.Time) bool {
	if d.Before(dateOnly(r.Start)) {
		return false
	}
	return r.Until == nil || !dateOnly(*r.Until).Before(d)
}

// Describe returns a human-readable description of the rule.
func (r Rule) Describe() string {
	switch r.Kind {
	case Once:
		return "On " + r.Start.Format(DateFormat)
	case Daily:
		if r.TimeOfDay != "" {
			return "Repeats daily at " + r.TimeOfDay
		}
		return "Repeats daily"
	case Weekly:
		var names []string
		for _, d := range r.Weekdays {
			names = append(names, dayAbbrev[d])
		}
		return "Repeats weekly on " + strings.Join(names, ", ")
	case Monthly:
		return fmt.Sprintf("Repeats monthly on day %d", r.Start.Day())
	}
	return ""
}

// ParseWeekday resolves a three-letter weekday code like "MON".
func ParseWeekday(code string) (time.Weekday, bool) {
	wd, ok := dayNames[strings.ToUpper(strings.TrimSpace(code))]
	return wd, ok
}

// ParseDate parses a naive YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
