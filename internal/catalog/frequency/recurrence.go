package frequency

import (
	"regexp"
	"strconv"
	"strings"
)

// RecurrenceKind classifies how often a vaccine is repeated after its
// primary series.
type RecurrenceKind string

const (
	RecurrenceOneTime     RecurrenceKind = "one_time"
	RecurrenceAnnual      RecurrenceKind = "annual"
	RecurrenceEveryNYears RecurrenceKind = "every_n_years"
)

// DefaultIntervalYears applies to "Every ..." descriptions without a number.
const DefaultIntervalYears = 10

// Recurrence is the parsed repetition pattern of a frequency description.
type Recurrence struct {
	Kind          RecurrenceKind
	IntervalYears int
}

// IsRecurring reports whether completing the vaccine once does not finish it.
func (r Recurrence) IsRecurring() bool {
	return r.Kind != RecurrenceOneTime
}

var everyNYears = regexp.MustCompile(`(?i)every\s+(\d+)\s*(?:years?|yrs?)`)

// Classify maps a frequency description onto a Recurrence. Matching is case
// insensitive: "Annual"/"Annually"/"every year" are annual, "Every N years"
// repeats every N years, any other "Every ..." repeats every
// DefaultIntervalYears, and everything else is one-time.
func Classify(frequency string) Recurrence {
	lower := strings.ToLower(strings.TrimSpace(frequency))
	switch {
	case strings.Contains(lower, "annual"), strings.Contains(lower, "every year"), strings.Contains(lower, "yearly"):
		return Recurrence{Kind: RecurrenceAnnual, IntervalYears: 1}
	case strings.Contains(lower, "every"):
		interval := DefaultIntervalYears
		if m := everyNYears.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				interval = n
			}
		}
		if interval == 1 {
			return Recurrence{Kind: RecurrenceAnnual, IntervalYears: 1}
		}
		return Recurrence{Kind: RecurrenceEveryNYears, IntervalYears: interval}
	default:
		return Recurrence{Kind: RecurrenceOneTime}
	}
}
