// Package followup infers a concrete follow-up date from free-text time
// expressions in a lead's reply ("circle back next quarter", "in 3 weeks").
package followup

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format written to the CRM followup field.
const DateLayout = "2006-01-02"

// DefaultDelay is applied when no time expression matches.
const DefaultDelay = 14 * 24 * time.Hour

// rule pairs a phrase pattern with the date it implies. Rules are evaluated
// in order and the first match wins, so specific phrases ("next quarter")
// must come before the generic numeric forms that could shadow them.
type rule struct {
	re      *regexp.Regexp
	resolve func(now time.Time, m []string) time.Time
}

func days(n int) func(time.Time, []string) time.Time {
	return func(now time.Time, _ []string) time.Time {
		return now.AddDate(0, 0, n)
	}
}

var rules = []rule{
	{regexp.MustCompile(`next quarter`), days(90)},
	{regexp.MustCompile(`next year`), days(365)},
	{regexp.MustCompile(`next month`), days(30)},
	{regexp.MustCompile(`in (\d+)\s*months?`), nMonths},
	{regexp.MustCompile(`in (\d+)\s*weeks?`), nWeeks},
	{regexp.MustCompile(`(\d+)\s*months?`), nMonths},
	{regexp.MustCompile(`(\d+)\s*weeks?`), nWeeks},
	{regexp.MustCompile(`end of year`), endOfYear},
	{regexp.MustCompile(`after the holidays`), days(45)},
	{regexp.MustCompile(`beginning of next`), days(30)},
	{regexp.MustCompile(`q([1-4])`), quarterStart},
}

// nMonths approximates a month as 30 days, matching the CRM convention the
// rest of the pipeline uses for "next month".
func nMonths(now time.Time, m []string) time.Time {
	n, _ := strconv.Atoi(m[1])
	return now.AddDate(0, 0, n*30)
}

func nWeeks(now time.Time, m []string) time.Time {
	n, _ := strconv.Atoi(m[1])
	return now.AddDate(0, 0, n*7)
}

func endOfYear(now time.Time, _ []string) time.Time {
	return time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}

// quarterStart maps Q1-Q4 to the first day of that quarter. A quarter at or
// before the one containing now rolls over to next year.
func quarterStart(now time.Time, m []string) time.Time {
	q, _ := strconv.Atoi(m[1])
	currentQuarter := (int(now.Month())-1)/3 + 1
	year := now.Year()
	if q <= currentQuarter {
		year++
	}
	month := time.Month((q-1)*3 + 1)
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// Resolve infers a follow-up date from a reply body. It is a total function:
// any text yields a date, defaulting to now + 2 weeks when no known time
// expression appears. All arithmetic is in UTC calendar days.
func Resolve(text string, now time.Time) time.Time {
	lower := strings.ToLower(text)
	now = now.UTC()

	for _, r := range rules {
		if m := r.re.FindStringSubmatch(lower); m != nil {
			return r.resolve(now, m)
		}
	}
	return now.Add(DefaultDelay)
}

// ResolveDate is Resolve formatted as a YYYY-MM-DD string.
func ResolveDate(text string, now time.Time) string {
	return Resolve(text, now).Format(DateLayout)
}
