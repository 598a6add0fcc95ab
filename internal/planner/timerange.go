package planner

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kioku-labs/kioku/internal/models"
)

var (
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	lastNPattern = regexp.MustCompile(`\blast (\d+) (day|week|month)s?\b`)
)

// fixedPeriods is checked in declaration order so that "last week" wins
// before the bare year or last-N patterns get a chance.
var fixedPeriods = []struct {
	phrase string
	period models.TimePeriod
}{
	{"today", models.PeriodToday},
	{"yesterday", models.PeriodYesterday},
	{"this week", models.PeriodThisWeek},
	{"last week", models.PeriodLastWeek},
	{"this month", models.PeriodThisMonth},
	{"last month", models.PeriodLastMonth},
	{"this year", models.PeriodThisYear},
}

// ParseTimeRange extracts a time window from an already lower-cased query.
// Fixed phrases take precedence over explicit years, which take precedence
// over "last N days/weeks/months". Returns nil when nothing matches.
func ParseTimeRange(lowered string) *models.TimeRange {
	return parseTimeRangeAt(lowered, time.Now())
}

func parseTimeRangeAt(lowered string, now time.Time) *models.TimeRange {
	for _, fp := range fixedPeriods {
		if !strings.Contains(lowered, fp.phrase) {
			continue
		}
		start, end := resolveFixed(fp.period, now)
		return &models.TimeRange{Period: fp.period, Start: start, End: end}
	}

	if m := yearPattern.FindString(lowered); m != "" {
		year, _ := strconv.Atoi(m)
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		return &models.TimeRange{
			Period: models.PeriodYear,
			Start:  start,
			End:    start.AddDate(1, 0, 0).Add(-time.Nanosecond),
		}
	}

	if m := lastNPattern.FindStringSubmatch(lowered); m != nil {
		n, _ := strconv.Atoi(m[1])
		var start time.Time
		switch m[2] {
		case "day":
			start = now.AddDate(0, 0, -n)
		case "week":
			start = now.AddDate(0, 0, -7*n)
		case "month":
			start = now.AddDate(0, -n, 0)
		}
		return &models.TimeRange{Period: models.PeriodLastN, Start: start, End: now}
	}

	return nil
}

func resolveFixed(period models.TimePeriod, now time.Time) (time.Time, time.Time) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case models.PeriodToday:
		return dayStart, now
	case models.PeriodYesterday:
		return dayStart.AddDate(0, 0, -1), dayStart.Add(-time.Nanosecond)
	case models.PeriodThisWeek:
		return startOfWeek(dayStart), now
	case models.PeriodLastWeek:
		thisWeek := startOfWeek(dayStart)
		return thisWeek.AddDate(0, 0, -7), thisWeek.Add(-time.Nanosecond)
	case models.PeriodThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	case models.PeriodLastMonth:
		thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return thisMonth.AddDate(0, -1, 0), thisMonth.Add(-time.Nanosecond)
	case models.PeriodThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), now
	}
	return now, now
}

// startOfWeek returns the Monday that begins the week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}
